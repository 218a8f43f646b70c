package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"teamtask/internal/domain"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]domain.User
	err  error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.byID {
		if x.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) List(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memUsers) add(id, name string, role domain.Role) domain.Principal {
	u := domain.User{ID: id, Name: name, Email: name + "@example.com", Role: role}
	m.byID[id] = u
	return u.Principal()
}

type memTasks struct {
	mu    sync.Mutex
	users *memUsers
	rows  map[string]domain.Task
	// beforeUpdate runs without the lock held, between read and write.
	beforeUpdate func()
}

func newMemTasks(users *memUsers) *memTasks {
	return &memTasks{users: users, rows: map[string]domain.Task{}}
}

func (m *memTasks) fill(t *domain.Task) {
	u := m.users.byID[t.AssignedTo]
	t.Assignee = domain.Assignee{ID: t.AssignedTo, Name: u.Name, Email: u.Email}
}

func (m *memTasks) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	m.fill(t)
	m.rows[t.ID] = *t
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *memTasks) match(t domain.Task, f domain.TaskFilter) bool {
	return (f.AssignedTo == "" || t.AssignedTo == f.AssignedTo) && (f.Status == "" || t.Status == f.Status)
}

func (m *memTasks) List(_ context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Task{}
	for _, t := range m.rows {
		if m.match(t, f) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTasks) Update(_ context.Context, t *domain.Task) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	t.CreatedAt = cur.CreatedAt
	t.UpdatedAt = time.Now()
	m.fill(t)
	m.rows[t.ID] = *t
	return nil
}

func (m *memTasks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memTasks) CountByStatus(ctx context.Context, f domain.TaskFilter) (domain.StatusCounts, error) {
	ts, _ := m.List(ctx, f)
	var out domain.StatusCounts
	for _, t := range ts {
		out.Total++
		switch t.Status {
		case domain.StatusTodo:
			out.Todo++
		case domain.StatusInProgress:
			out.InProgress++
		case domain.StatusCompleted:
			out.Completed++
		}
	}
	return out, nil
}
