package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler exposes ticket endpoints. Authorization decisions are made
// by the service; the handler only parses and renders.
type TicketsHandler struct {
	service   *service.TicketService
	validator *dto.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validator *dto.Validator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validator: validator}
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), principal.Actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketList(tickets)))
}

// ListAssigned GET /api/tickets/assigned.
func (h *TicketsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListAssigned(c.UserContext(), principal.Actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketList(tickets)))
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), principal.Actor, id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketDetailResponse(&detail.Ticket, detail.Remarks)))
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), principal.Actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewTicketResponse(ticket)))
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.UpdateTicket(c.UserContext(), principal.Actor, id, service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Severity:    req.Severity,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Assign POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), principal.Actor, id, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// Reassign POST /api/tickets/:id/reassign.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReassignTicketRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	ticket, err := h.service.ReassignTicket(c.UserContext(), principal.Actor, id, req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewTicketResponse(ticket)))
}

// ListRemarks GET /api/tickets/:id/remarks.
func (h *TicketsHandler) ListRemarks(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	remarks, err := h.service.ListRemarks(c.UserContext(), principal.Actor, id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewRemarkList(remarks)))
}

// AddRemark POST /api/tickets/:id/remarks.
func (h *TicketsHandler) AddRemark(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateRemarkRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	remark, err := h.service.AddRemark(c.UserContext(), principal.Actor, id, req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewRemarkResponse(remark)))
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		SearchTerm: queryString(c, "search"),
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	}
	for _, s := range queryList(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, s := range queryList(c, "severity") {
		filter.Severities = append(filter.Severities, domain.TicketSeverity(s))
	}
	return filter
}
