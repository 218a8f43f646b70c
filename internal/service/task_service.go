package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"teamtask/internal/domain"
	"teamtask/pkg/utils"
)

var errTaskNotFound = fmt.Errorf("task %w", domain.ErrNotFound)

func taskNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return errTaskNotFound
	}
	return err
}

// UserLookup is the slice of the credential store the task policy needs.
type UserLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// TaskService applies the capability table to every task operation. No lock is
// held between the authorization read and the write; a task deleted in between
// surfaces as ErrNotFound from the store.
type TaskService struct {
	tasks  domain.TaskRepository
	users  UserLookup
	policy domain.Policy
	log    *zap.Logger
}

func NewTaskService(tasks domain.TaskRepository, users UserLookup, policy domain.Policy, log *zap.Logger) *TaskService {
	if policy == nil {
		policy = domain.DefaultPolicy
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskService{tasks: tasks, users: users, policy: policy, log: log}
}

func (s *TaskService) allow(op domain.Operation, caller domain.Principal, owned bool) error {
	ok := s.policy.Allow(op, caller.Role, owned)
	observeDecision(op, caller.Role, ok)
	if !ok {
		s.log.Debug("policy denied", zap.String("op", string(op)), zap.String("uid", caller.ID), zap.String("role", string(caller.Role)))
		return domain.ErrForbidden
	}
	return nil
}

// visibleFilter turns the list scope for the caller's role into a store filter.
func (s *TaskService) visibleFilter(caller domain.Principal) (domain.TaskFilter, error) {
	switch s.policy.Scope(domain.OpListTasks, caller.Role) {
	case domain.ScopeAny:
		observeDecision(domain.OpListTasks, caller.Role, true)
		return domain.TaskFilter{}, nil
	case domain.ScopeOwn:
		observeDecision(domain.OpListTasks, caller.Role, true)
		return domain.TaskFilter{AssignedTo: caller.ID}, nil
	}
	observeDecision(domain.OpListTasks, caller.Role, false)
	return domain.TaskFilter{}, domain.ErrForbidden
}

// List returns every task for managers and only the caller's tasks otherwise.
// status, when non-empty, narrows the result further.
func (s *TaskService) List(ctx context.Context, caller domain.Principal, status string) ([]domain.Task, error) {
	f, err := s.visibleFilter(caller)
	if err != nil {
		return nil, err
	}
	if status = strings.TrimSpace(status); status != "" {
		st := domain.Status(status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unsupported status %q", domain.ErrValidation, status)
		}
		f.Status = st
	}
	return s.tasks.List(ctx, f)
}

func (s *TaskService) Stats(ctx context.Context, caller domain.Principal) (domain.StatusCounts, error) {
	f, err := s.visibleFilter(caller)
	if err != nil {
		return domain.StatusCounts{}, err
	}
	return s.tasks.CountByStatus(ctx, f)
}

func (s *TaskService) find(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errTaskNotFound
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.Task, error) {
	t, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.allow(domain.OpReadTask, caller, t.AssignedTo == caller.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Create(ctx context.Context, caller domain.Principal, in domain.NewTask) (*domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	status, err := domain.ParseStatus(strings.TrimSpace(in.Status))
	if err != nil {
		return nil, err
	}
	assignee := strings.TrimSpace(in.AssignedTo)
	if assignee == "" {
		assignee = caller.ID
	}
	if err := s.allow(domain.OpCreateTask, caller, assignee == caller.ID); err != nil {
		return nil, err
	}
	if assignee != caller.ID {
		if err := s.mustExist(ctx, assignee); err != nil {
			return nil, err
		}
	}

	t := &domain.Task{
		ID:          utils.NewID(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		AssignedTo:  assignee,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("task created", zap.String("task", t.ID), zap.String("by", caller.ID), zap.String("assignee", t.AssignedTo))
	return t, nil
}

// Update merges patch into the stored task. Status-only patches are checked
// against OpUpdateTaskStatus, anything else against OpUpdateTaskFields.
func (s *TaskService) Update(ctx context.Context, caller domain.Principal, id string, patch domain.TaskPatch) (*domain.Task, error) {
	cur, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	op := domain.OpUpdateTaskFields
	if patch.OnlyStatus() {
		op = domain.OpUpdateTaskStatus
	}
	if err := s.allow(op, caller, cur.AssignedTo == caller.ID); err != nil {
		return nil, err
	}

	next := *cur
	if err := patch.Apply(&next); err != nil {
		return nil, err
	}
	if next.AssignedTo != cur.AssignedTo {
		if err := s.mustExist(ctx, next.AssignedTo); err != nil {
			return nil, err
		}
	}
	if err := s.tasks.Update(ctx, &next); err != nil {
		return nil, taskNotFound(err)
	}
	return &next, nil
}

// Delete is checked on role before existence, so non-managers learn nothing about ids.
func (s *TaskService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	switch s.policy.Scope(domain.OpDeleteTask, caller.Role) {
	case domain.ScopeAny:
		observeDecision(domain.OpDeleteTask, caller.Role, true)
	case domain.ScopeOwn:
		t, err := s.find(ctx, id)
		if err != nil {
			return err
		}
		if err := s.allow(domain.OpDeleteTask, caller, t.AssignedTo == caller.ID); err != nil {
			return err
		}
	default:
		observeDecision(domain.OpDeleteTask, caller.Role, false)
		return fmt.Errorf("%w: only managers can delete tasks", domain.ErrForbidden)
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return taskNotFound(err)
	}
	s.log.Info("task deleted", zap.String("task", id), zap.String("by", caller.ID))
	return nil
}

func (s *TaskService) mustExist(ctx context.Context, uid string) error {
	ok, err := s.users.Exists(ctx, uid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: assignedTo references unknown user %q", domain.ErrValidation, uid)
	}
	return nil
}
