package service

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/policy"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

func TestCreateTicketPinsActorIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ticket, err := env.tickets.CreateTicket(ctx, env.facilitiesOfficer, TicketCreateInput{
		Title:    "  Broken door  ",
		Severity: domain.SeverityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Broken door", ticket.Title)
	assert.Equal(t, env.facilities, ticket.DepartmentID)
	assert.Equal(t, env.facilitiesOfficer.ID, ticket.CreatedBy)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)

	detail, err := env.tickets.GetTicket(ctx, env.facilitiesOfficer, ticket.ID)
	require.NoError(t, err)
	require.Len(t, detail.Remarks, 1)
	assert.Equal(t, InitialRemark, detail.Remarks[0].Comment)

	created := domain.AuditEventTicketCreated
	logs, err := env.audit.List(ctx, repository.AuditLogFilter{EventType: &created})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ticket.ID, *logs[0].EntityID)
	assert.Contains(t, env.recorder.types(), events.EventTicketCreated)
}

func TestCreateTicketValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tickets.CreateTicket(context.Background(), env.officer, TicketCreateInput{Title: " "})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	_, err = env.tickets.CreateTicket(context.Background(), env.officer, TicketCreateInput{Title: "x", Severity: "Urgent"})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestCrossDepartmentAccessIsDenied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "VPN", Severity: domain.SeverityLow})
	require.NoError(t, err)

	_, err = env.tickets.GetTicket(ctx, env.facilitiesOfficer, ticket.ID)
	domainErr := requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")
	assert.Equal(t, string(policy.ReasonCrossDepartment), domainErr.Message)

	_, err = env.tickets.AddRemark(ctx, env.facilitiesOfficer, ticket.ID, "hello")
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")

	_, err = env.tickets.UpdateTicket(ctx, env.facilitiesOfficer, ticket.ID, TicketUpdateInput{
		Status: domain.TicketStatusInProgress, Severity: domain.SeverityLow,
	})
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")

	detail, err := env.tickets.GetTicket(ctx, env.admin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, detail.Ticket.ID)
}

func TestGetMissingTicket(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.tickets.GetTicket(context.Background(), env.admin, 999)
	requireDomainError(t, err, http.StatusNotFound, "NOT_FOUND")
}

func TestUpdateTicketAppendsRemark(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Mail", Severity: domain.SeverityLow})
	require.NoError(t, err)

	updated, err := env.tickets.UpdateTicket(ctx, env.supervisor, ticket.ID, TicketUpdateInput{
		Status:     domain.TicketStatusInProgress,
		Severity:   domain.SeverityHigh,
		AssignedTo: int64Ptr(env.officer.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Mail", updated.Title, "empty title keeps the current value")
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	remarks, err := env.tickets.ListRemarks(ctx, env.officer, ticket.ID)
	require.NoError(t, err)
	require.Len(t, remarks, 2)
	assert.Equal(t,
		"Ticket updated: Status=InProgress, Severity=High, AssignedTo="+itoa(env.officer.ID),
		remarks[1].Comment)

	updatedEvent := domain.AuditEventTicketUpdated
	logs, err := env.audit.List(ctx, repository.AuditLogFilter{EventType: &updatedEvent})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].OldValues)
	assert.Contains(t, *logs[0].OldValues, `"status":"Open"`)
	assert.Contains(t, *logs[0].NewValues, `"status":"InProgress"`)
}

func TestJuniorOfficerCriticalRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("cannot escalate", func(t *testing.T) {
		ticket, err := env.tickets.CreateTicket(ctx, env.junior, TicketCreateInput{Title: "Slow PC", Severity: domain.SeverityMedium})
		require.NoError(t, err)
		_, err = env.tickets.UpdateTicket(ctx, env.junior, ticket.ID, TicketUpdateInput{
			Status: domain.TicketStatusOpen, Severity: domain.SeverityCritical,
		})
		domainErr := requireDomainError(t, err, http.StatusBadRequest, "POLICY_DENIED")
		assert.Equal(t, string(policy.ReasonJuniorCritical), domainErr.Message)

		unchanged, err := env.tickets.GetTicket(ctx, env.junior, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.SeverityMedium, unchanged.Ticket.Severity)
		assert.Len(t, unchanged.Remarks, 1, "denied update must not leave a remark")
	})

	t.Run("continues owned critical ticket", func(t *testing.T) {
		ticket, err := env.tickets.CreateTicket(ctx, env.supervisor, TicketCreateInput{Title: "Outage", Severity: domain.SeverityCritical})
		require.NoError(t, err)
		_, err = env.tickets.UpdateTicket(ctx, env.supervisor, ticket.ID, TicketUpdateInput{
			Status: domain.TicketStatusOpen, Severity: domain.SeverityCritical, AssignedTo: int64Ptr(env.junior.ID),
		})
		require.NoError(t, err)

		updated, err := env.tickets.UpdateTicket(ctx, env.junior, ticket.ID, TicketUpdateInput{
			Status: domain.TicketStatusResolved, Severity: domain.SeverityCritical, AssignedTo: int64Ptr(env.junior.ID),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	})
}

func TestUpdateWithForeignAssignee(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Badge", Severity: domain.SeverityLow})
	require.NoError(t, err)

	_, err = env.tickets.UpdateTicket(ctx, env.admin, ticket.ID, TicketUpdateInput{
		Status: domain.TicketStatusOpen, Severity: domain.SeverityLow, AssignedTo: int64Ptr(env.facilitiesOfficer.ID),
	})
	domainErr := requireDomainError(t, err, http.StatusBadRequest, "POLICY_DENIED")
	assert.Equal(t, string(policy.ReasonAssigneeDepartment), domainErr.Message)

	_, err = env.tickets.UpdateTicket(ctx, env.admin, ticket.ID, TicketUpdateInput{
		Status: domain.TicketStatusOpen, Severity: domain.SeverityLow, AssignedTo: int64Ptr(12345),
	})
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestUpdateCannotEscalateAndAssignTogether(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "VPN drops", Severity: domain.SeverityLow})
	require.NoError(t, err)

	_, err = env.tickets.UpdateTicket(ctx, env.officer, ticket.ID, TicketUpdateInput{
		Status: domain.TicketStatusOpen, Severity: domain.SeverityCritical, AssignedTo: int64Ptr(env.junior.ID),
	})
	domainErr := requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")
	assert.Equal(t, string(policy.ReasonInsufficientRole), domainErr.Message)

	unchanged, err := env.tickets.GetTicket(ctx, env.officer, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityLow, unchanged.Ticket.Severity)
	assert.Nil(t, unchanged.Ticket.AssignedTo)
	assert.Len(t, unchanged.Remarks, 1)

	critical, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Core switch", Severity: domain.SeverityCritical})
	require.NoError(t, err)
	_, err = env.tickets.UpdateTicket(ctx, env.officer, critical.ID, TicketUpdateInput{
		Status: domain.TicketStatusOpen, Severity: domain.SeverityLow, AssignedTo: int64Ptr(env.junior.ID),
	})
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")
}

func TestAssignTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	low, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Toner", Severity: domain.SeverityLow})
	require.NoError(t, err)
	critical, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Server", Severity: domain.SeverityCritical})
	require.NoError(t, err)

	assigned, err := env.tickets.AssignTicket(ctx, env.officer, low.ID, env.junior.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, env.junior.ID, *assigned.AssignedTo)
	assert.Contains(t, env.recorder.types(), events.EventTicketAssigned)

	_, err = env.tickets.AssignTicket(ctx, env.officer, critical.ID, env.junior.ID)
	domainErr := requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")
	assert.Equal(t, string(policy.ReasonInsufficientRole), domainErr.Message)

	_, err = env.tickets.AssignTicket(ctx, env.junior, low.ID, env.officer.ID)
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")

	_, err = env.tickets.AssignTicket(ctx, env.supervisor, critical.ID, env.officer.ID)
	require.NoError(t, err)

	mine, err := env.tickets.ListAssigned(ctx, env.junior, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, low.ID, mine[0].ID)
}

func TestReassignTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Leak", Severity: domain.SeverityMedium})
	require.NoError(t, err)
	_, err = env.tickets.AssignTicket(ctx, env.supervisor, ticket.ID, env.officer.ID)
	require.NoError(t, err)

	_, err = env.tickets.ReassignTicket(ctx, env.officer, ticket.ID, env.facilities)
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")

	_, err = env.tickets.ReassignTicket(ctx, env.supervisor, ticket.ID, 777)
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")

	moved, err := env.tickets.ReassignTicket(ctx, env.supervisor, ticket.ID, env.facilities)
	require.NoError(t, err)
	assert.Equal(t, env.facilities, moved.DepartmentID)
	assert.Nil(t, moved.AssignedTo)

	_, err = env.tickets.GetTicket(ctx, env.officer, ticket.ID)
	requireDomainError(t, err, http.StatusForbidden, "POLICY_DENIED")
	_, err = env.tickets.GetTicket(ctx, env.facilitiesOfficer, ticket.ID)
	require.NoError(t, err)
}

func TestAddRemarkStampsAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ticket, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "Wifi", Severity: domain.SeverityLow})
	require.NoError(t, err)

	remark, err := env.tickets.AddRemark(ctx, env.junior, ticket.ID, "  looking into it ")
	require.NoError(t, err)
	assert.Equal(t, env.junior.ID, remark.AuthorID)
	assert.Equal(t, ticket.ID, remark.TicketID)
	assert.Equal(t, "looking into it", remark.Comment)

	_, err = env.tickets.AddRemark(ctx, env.junior, ticket.ID, "")
	requireDomainError(t, err, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestListTicketsScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.tickets.CreateTicket(ctx, env.officer, TicketCreateInput{Title: "A", Severity: domain.SeverityLow})
	require.NoError(t, err)
	_, err = env.tickets.CreateTicket(ctx, env.facilitiesOfficer, TicketCreateInput{Title: "B", Severity: domain.SeverityLow})
	require.NoError(t, err)

	all, err := env.tickets.ListTickets(ctx, env.admin, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := env.tickets.ListTickets(ctx, env.officer, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "A", own[0].Title)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestStringPreviewKeepsRunesIntact(t *testing.T) {
	body := "ab" + strings.Repeat("é", 60)

	preview := stringPreview(body, 40)
	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, 40, utf8.RuneCountInString(preview))
	assert.True(t, strings.HasSuffix(preview, "..."))

	assert.Equal(t, body, stringPreview("  "+body+"  ", 120))
	assert.Equal(t, "ab", stringPreview(body, 2))
}
