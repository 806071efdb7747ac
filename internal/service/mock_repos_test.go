package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/it-helpdesk/internal/domain"
	"github.com/spec-kit/it-helpdesk/internal/repository"
)

// In-memory repository fakes. They mirror the Postgres implementations'
// observable behavior: pgx.ErrNoRows for misses, ErrStatusConflict for a
// conditional update that lost its race, and the same orderings.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]domain.User)}
}

func (r *memUserRepo) add(user domain.User) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	} else if user.ID >= r.nextID {
		r.nextID = user.ID + 1
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return user
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	stored := r.add(*user)
	*user = stored
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) ListAll(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memUserRepo) ListSubordinates(_ context.Context, departmentID int64, hierarchyCode int) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.DepartmentID != nil && *user.DepartmentID == departmentID && user.HierarchyCode < hierarchyCode {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HierarchyCode != out[j].HierarchyCode {
			return out[i].HierarchyCode > out[j].HierarchyCode
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

type memTicketRepo struct {
	mu            sync.Mutex
	nextID        int64
	tickets       map[int64]domain.Ticket
	notifications *memNotificationRepo // UpdateWithNotification target
}

func newMemTicketRepo(notifications *memNotificationRepo) *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: make(map[int64]domain.Ticket), notifications: notifications}
}

func (r *memTicketRepo) add(ticket domain.Ticket) domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == 0 {
		ticket.ID = r.nextID
		r.nextID++
	} else if ticket.ID >= r.nextID {
		r.nextID = ticket.ID + 1
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = ticket
	return ticket
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	stored := r.add(*ticket)
	*ticket = stored
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.CreatedByID != nil && ticket.CreatedByID != *filter.CreatedByID {
			continue
		}
		if filter.AssignedToID != nil && (ticket.AssignedToID == nil || *ticket.AssignedToID != *filter.AssignedToID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []domain.Ticket{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memTicketRepo) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, repository.TicketFilter{})
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(ticket, expected)
}

func (r *memTicketRepo) UpdateWithNotification(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateLocked(ticket, expected); err != nil {
		return err
	}
	if notification != nil {
		r.notifications.add(*notification)
	}
	return nil
}

func (r *memTicketRepo) updateLocked(ticket *domain.Ticket, expected domain.TicketStatus) error {
	current, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if current.Status != expected {
		return repository.ErrStatusConflict
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) CountActiveByTechnician(_ context.Context) (map[int64]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[int64]int)
	for _, ticket := range r.tickets {
		if ticket.AssignedToID == nil {
			continue
		}
		if ticket.Status == domain.TicketStatusOpen || ticket.Status == domain.TicketStatusInProgress {
			counts[*ticket.AssignedToID]++
		}
	}
	return counts, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

type memCommentRepo struct {
	mu       sync.Mutex
	nextID   int64
	comments []domain.Comment
}

func newMemCommentRepo() *memCommentRepo {
	return &memCommentRepo{nextID: 1}
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = r.nextID
	r.nextID++
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type memAttachmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	attachments []domain.Attachment
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{nextID: 1}
}

func (r *memAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = r.nextID
	r.nextID++
	attachment.AddedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *memAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

type memNotificationRepo struct {
	mu            sync.Mutex
	nextID        int64
	notifications []domain.Notification
}

func newMemNotificationRepo() *memNotificationRepo {
	return &memNotificationRepo{nextID: 1}
}

func (r *memNotificationRepo) add(notification domain.Notification) domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = r.nextID
	r.nextID++
	if notification.SentAt.IsZero() {
		notification.SentAt = time.Now()
	}
	r.notifications = append(r.notifications, notification)
	return notification
}

func (r *memNotificationRepo) ListByRecipient(_ context.Context, recipientID int64, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, notification := range r.notifications {
		if notification.RecipientUserID == recipientID {
			out = append(out, notification)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, recipientID int64, ids []int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.RecipientUserID != recipientID || n.IsRead {
			continue
		}
		for _, id := range ids {
			if n.ID == id {
				n.IsRead = true
				updated++
				break
			}
		}
	}
	return updated, nil
}

func (r *memNotificationRepo) MarkAllRead(_ context.Context, recipientID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for i := range r.notifications {
		n := &r.notifications[i]
		if n.RecipientUserID == recipientID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

type memDepartmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	departments []domain.Department
}

func newMemDepartmentRepo() *memDepartmentRepo {
	return &memDepartmentRepo{nextID: 1}
}

func (r *memDepartmentRepo) add(dept domain.Department) domain.Department {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dept.ID == 0 {
		dept.ID = r.nextID
		r.nextID++
	} else if dept.ID >= r.nextID {
		r.nextID = dept.ID + 1
	}
	if dept.CreatedAt.IsZero() {
		dept.CreatedAt = time.Now()
	}
	r.departments = append(r.departments, dept)
	return dept
}

func (r *memDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	stored := r.add(*dept)
	*dept = stored
	return nil
}

func (r *memDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dept := range r.departments {
		if dept.ID == id {
			d := dept
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Department, len(r.departments))
	copy(out, r.departments)
	return out, nil
}

type memApplicationRepo struct {
	mu     sync.Mutex
	nextID int64
	apps   []domain.Application
}

func newMemApplicationRepo() *memApplicationRepo {
	return &memApplicationRepo{nextID: 1}
}

func (r *memApplicationRepo) add(app domain.Application) domain.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app.ID == 0 {
		app.ID = r.nextID
		r.nextID++
	} else if app.ID >= r.nextID {
		r.nextID = app.ID + 1
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	r.apps = append(r.apps, app)
	return app
}

func (r *memApplicationRepo) Create(_ context.Context, app *domain.Application) error {
	stored := r.add(*app)
	*app = stored
	return nil
}

func (r *memApplicationRepo) List(_ context.Context) ([]domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Application, len(r.apps))
	copy(out, r.apps)
	return out, nil
}

type memMaterielRepo struct {
	mu        sync.Mutex
	nextID    int64
	materiels []domain.Materiel
}

func newMemMaterielRepo() *memMaterielRepo {
	return &memMaterielRepo{nextID: 1}
}

func (r *memMaterielRepo) add(materiel domain.Materiel) domain.Materiel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if materiel.ID == 0 {
		materiel.ID = r.nextID
		r.nextID++
	} else if materiel.ID >= r.nextID {
		r.nextID = materiel.ID + 1
	}
	if materiel.CreatedAt.IsZero() {
		materiel.CreatedAt = time.Now()
	}
	r.materiels = append(r.materiels, materiel)
	return materiel
}

func (r *memMaterielRepo) Create(_ context.Context, materiel *domain.Materiel) error {
	stored := r.add(*materiel)
	*materiel = stored
	return nil
}

func (r *memMaterielRepo) List(_ context.Context) ([]domain.Materiel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Materiel, len(r.materiels))
	copy(out, r.materiels)
	return out, nil
}
