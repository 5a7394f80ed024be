package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// memoryStore keeps every record in process memory. InTx serializes
// transactional callers but does not roll back partial writes.
type memoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	now  func() time.Time

	lastID      map[string]int64
	tickets     map[int64]domain.Ticket
	remarks     []domain.Remark
	users       map[int64]domain.User
	departments map[int64]domain.Department
	employees   map[int64]domain.Employee
	auditLogs   []domain.AuditLog
}

// NewMemoryStore returns an empty Store held in memory.
func NewMemoryStore() Store {
	return &memoryStore{
		now:         func() time.Time { return time.Now().UTC() },
		lastID:      map[string]int64{},
		tickets:     map[int64]domain.Ticket{},
		users:       map[int64]domain.User{},
		departments: map[int64]domain.Department{},
		employees:   map[int64]domain.Employee{},
	}
}

func (s *memoryStore) Tickets() TicketRepository         { return memTickets{s} }
func (s *memoryStore) Remarks() RemarkRepository         { return memRemarks{s} }
func (s *memoryStore) Users() UserRepository             { return memUsers{s} }
func (s *memoryStore) Departments() DepartmentRepository { return memDepartments{s} }
func (s *memoryStore) Employees() EmployeeRepository     { return memEmployees{s} }
func (s *memoryStore) AuditLogs() AuditLogRepository     { return memAuditLogs{s} }

func (s *memoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(&memoryTx{memoryStore: s})
}

// memoryTx is handed to InTx callbacks so nested InTx calls do not deadlock.
type memoryTx struct {
	*memoryStore
}

func (t *memoryTx) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(t)
}

func (s *memoryStore) nextID(table string) int64 {
	s.lastID[table]++
	return s.lastID[table]
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

type memTickets struct{ s *memoryStore }

func (r memTickets) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	ticket.ID = r.s.nextID("tickets")
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	stored := *ticket
	stored.AssignedTo = copyID(ticket.AssignedTo)
	r.s.tickets[ticket.ID] = stored
	return nil
}

func (r memTickets) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	ticket.CreatedBy = existing.CreatedBy
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = r.s.now()
	stored := *ticket
	stored.AssignedTo = copyID(ticket.AssignedTo)
	r.s.tickets[ticket.ID] = stored
	return nil
}

func (r memTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	ticket.AssignedTo = copyID(ticket.AssignedTo)
	return &ticket, nil
}

// GetByIDForUpdate needs no row lock here; InTx already serializes transactions.
func (r memTickets) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r memTickets) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var term string
	if filter.SearchTerm != nil {
		term = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	matched := []domain.Ticket{}
	for _, ticket := range r.s.tickets {
		if filter.DepartmentID != nil && ticket.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.AssignedTo != nil && !ticket.IsAssignedTo(*filter.AssignedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Severities) > 0 && !containsSeverity(filter.Severities, ticket.Severity) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(ticket.Title), term) &&
			!strings.Contains(strings.ToLower(ticket.Description), term) {
			continue
		}
		ticket.AssignedTo = copyID(ticket.AssignedTo)
		matched = append(matched, ticket)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	limit, offset := normalizePage(filter.Limit, filter.Offset, defaultTicketLimit)
	if offset >= len(matched) {
		return []domain.Ticket{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func containsStatus(list []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func containsSeverity(list []domain.TicketSeverity, severity domain.TicketSeverity) bool {
	for _, s := range list {
		if s == severity {
			return true
		}
	}
	return false
}

type memRemarks struct{ s *memoryStore }

func (r memRemarks) Create(ctx context.Context, remark *domain.Remark) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	remark.ID = r.s.nextID("remarks")
	remark.CreatedAt = r.s.now()
	r.s.remarks = append(r.s.remarks, *remark)
	return nil
}

func (r memRemarks) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Remark, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Remark{}
	for _, remark := range r.s.remarks {
		if remark.TicketID == ticketID {
			result = append(result, remark)
		}
	}
	return result, nil
}

type memUsers struct{ s *memoryStore }

func (r memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrDuplicate
		}
		if user.EmployeeID != nil && existing.EmployeeID != nil && *existing.EmployeeID == *user.EmployeeID {
			return ErrDuplicate
		}
	}
	now := r.s.now()
	user.ID = r.s.nextID("users")
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	stored.EmployeeID = copyID(user.EmployeeID)
	r.s.users[user.ID] = stored
	return nil
}

func (r memUsers) Update(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	existing.PasswordHash = user.PasswordHash
	existing.Role = user.Role
	existing.DepartmentID = user.DepartmentID
	existing.FullName = user.FullName
	existing.Email = user.Email
	existing.UpdatedAt = r.s.now()
	r.s.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	user.EmployeeID = copyID(user.EmployeeID)
	return &user, nil
}

func (r memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r memUsers) GetByEmployeeID(ctx context.Context, employeeID int64) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.EmployeeID != nil && *u.EmployeeID == employeeID })
}

func (r memUsers) List(ctx context.Context) ([]domain.User, error) {
	return r.filter(func(domain.User) bool { return true }), nil
}

func (r memUsers) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.User, error) {
	return r.filter(func(u domain.User) bool { return u.DepartmentID == departmentID }), nil
}

func (r memUsers) find(match func(domain.User) bool) (*domain.User, error) {
	found := r.filter(match)
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return &found[0], nil
}

func (r memUsers) filter(match func(domain.User) bool) []domain.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.User{}
	for _, user := range r.s.users {
		if match(user) {
			user.EmployeeID = copyID(user.EmployeeID)
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

type memDepartments struct{ s *memoryStore }

func (r memDepartments) Create(ctx context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.departments {
		if strings.EqualFold(existing.Name, dept.Name) {
			return ErrDuplicate
		}
	}
	dept.ID = r.s.nextID("departments")
	dept.CreatedAt = r.s.now()
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r memDepartments) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	dept, ok := r.s.departments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &dept, nil
}

func (r memDepartments) List(ctx context.Context) ([]domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Department, 0, len(r.s.departments))
	for _, dept := range r.s.departments {
		result = append(result, dept)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type memEmployees struct{ s *memoryStore }

func (r memEmployees) Create(ctx context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.employees {
		if strings.EqualFold(existing.Email, emp.Email) {
			return ErrDuplicate
		}
	}
	emp.ID = r.s.nextID("employees")
	r.s.employees[emp.ID] = *emp
	return nil
}

func (r memEmployees) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	emp, ok := r.s.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &emp, nil
}

func (r memEmployees) GetByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, emp := range r.s.employees {
		if strings.EqualFold(emp.Email, email) {
			return &emp, nil
		}
	}
	return nil, ErrNotFound
}

func (r memEmployees) List(ctx context.Context) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Employee, 0, len(r.s.employees))
	for _, emp := range r.s.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type memAuditLogs struct{ s *memoryStore }

func (r memAuditLogs) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = r.s.nextID("audit_logs")
	entry.Timestamp = r.s.now()
	stored := *entry
	stored.Username = ""
	stored.UserRole = ""
	r.s.auditLogs = append(r.s.auditLogs, stored)
	return nil
}

func (r memAuditLogs) GetByID(ctx context.Context, id int64) (*domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, entry := range r.s.auditLogs {
		if entry.ID == id {
			r.joinUser(&entry)
			return &entry, nil
		}
	}
	return nil, ErrNotFound
}

func (r memAuditLogs) List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var username string
	if filter.Username != nil {
		username = strings.ToLower(strings.TrimSpace(*filter.Username))
	}
	result := []domain.AuditLog{}
	for i := len(r.s.auditLogs) - 1; i >= 0; i-- {
		entry := r.s.auditLogs[i]
		r.joinUser(&entry)
		switch {
		case filter.EventType != nil && entry.EventType != *filter.EventType:
			continue
		case filter.UserID != nil && entry.UserID != *filter.UserID:
			continue
		case filter.EntityType != nil && (entry.EntityType == nil || *entry.EntityType != *filter.EntityType):
			continue
		case filter.EntityID != nil && (entry.EntityID == nil || *entry.EntityID != *filter.EntityID):
			continue
		case filter.StartDate != nil && entry.Timestamp.Before(*filter.StartDate):
			continue
		case filter.EndDate != nil && entry.Timestamp.After(*filter.EndDate):
			continue
		case username != "" && !strings.Contains(strings.ToLower(entry.Username), username):
			continue
		}
		result = append(result, entry)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// joinUser must be called with the read lock held.
func (r memAuditLogs) joinUser(entry *domain.AuditLog) {
	if user, ok := r.s.users[entry.UserID]; ok {
		entry.Username = user.Username
		entry.UserRole = user.Role
	}
}
