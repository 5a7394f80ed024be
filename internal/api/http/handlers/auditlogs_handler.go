package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AuditLogsHandler exposes audit trail queries.
type AuditLogsHandler struct {
	audit     *service.AuditService
	validator *dto.Validator
}

// NewAuditLogsHandler constructs handler.
func NewAuditLogsHandler(auditService *service.AuditService, validator *dto.Validator) *AuditLogsHandler {
	return &AuditLogsHandler{audit: auditService, validator: validator}
}

// Create handles POST /api/auditlogs.
func (h *AuditLogsHandler) Create(c *fiber.Ctx) error {
	principal, err := auth.MustPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateAuditLogRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	entry, err := h.audit.Create(c.UserContext(), principal.Actor, req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(data(dto.NewAuditLogResponse(entry)))
}

// List handles GET /api/auditlogs.
func (h *AuditLogsHandler) List(c *fiber.Ctx) error {
	filter, err := parseAuditQuery(c, false)
	if err != nil {
		return err
	}
	return h.render(c, filter)
}

// Filter handles GET /api/auditlogs/filter, which also matches on username.
func (h *AuditLogsHandler) Filter(c *fiber.Ctx) error {
	filter, err := parseAuditQuery(c, true)
	if err != nil {
		return err
	}
	return h.render(c, filter)
}

// Get handles GET /api/auditlogs/:id.
func (h *AuditLogsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	entry, err := h.audit.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewAuditLogResponse(entry)))
}

// ByUser handles GET /api/auditlogs/user/:userId.
func (h *AuditLogsHandler) ByUser(c *fiber.Ctx) error {
	id, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	logs, err := h.audit.ListByUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewAuditLogList(logs)))
}

// Recent handles GET /api/auditlogs/recent.
func (h *AuditLogsHandler) Recent(c *fiber.Ctx) error {
	logs, err := h.audit.Recent(c.UserContext(), c.QueryInt("count", service.DefaultRecentAuditCount))
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewAuditLogList(logs)))
}

func (h *AuditLogsHandler) render(c *fiber.Ctx, filter repository.AuditLogFilter) error {
	logs, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(data(dto.NewAuditLogList(logs)))
}

func parseAuditQuery(c *fiber.Ctx, withUsername bool) (repository.AuditLogFilter, error) {
	var (
		filter repository.AuditLogFilter
		err    error
	)
	if et := queryString(c, "eventType"); et != nil {
		eventType := domain.AuditEventType(*et)
		filter.EventType = &eventType
	}
	filter.EntityType = queryString(c, "entityType")
	if filter.UserID, err = queryInt64(c, "userId"); err != nil {
		return filter, err
	}
	if filter.EntityID, err = queryInt64(c, "entityId"); err != nil {
		return filter, err
	}
	if filter.StartDate, err = queryTime(c, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryTime(c, "endDate"); err != nil {
		return filter, err
	}
	if withUsername {
		filter.Username = queryString(c, "username")
	}
	filter.Limit = c.QueryInt("limit")
	return filter, nil
}
