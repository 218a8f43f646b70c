package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teamtask/internal/domain"
	"teamtask/internal/feature/task"
)

type TaskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) *TaskRepo { return &TaskRepo{db: db} }

// withAssignee 每次读都带上 assignee 的展示字段
func (r *TaskRepo) withAssignee(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Assignee", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "email")
	})
}

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	m := task.FromDomain(t)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error; err != nil {
		return err
	}
	return r.reload(ctx, t)
}

func (r *TaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var m task.TaskModel
	err := r.withAssignee(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

func (r *TaskRepo) scope(q *gorm.DB, f domain.TaskFilter) *gorm.DB {
	if f.AssignedTo != "" {
		q = q.Where("assigned_to = ?", f.AssignedTo)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	return q
}

// List 单条 SELECT，结果是一次快照
func (r *TaskRepo) List(ctx context.Context, f domain.TaskFilter) ([]domain.Task, error) {
	var ms []task.TaskModel
	q := r.scope(r.withAssignee(ctx).Model(&task.TaskModel{}), f)
	if err := q.Order("created_at DESC, id DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, nil
}

// Update 整体覆盖可变字段（后写覆盖先写），不存在返回 domain.ErrNotFound
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&task.TaskModel{}).Where("id = ?", t.ID).Updates(map[string]any{
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"assigned_to": t.AssignedTo,
		"updated_at":  now,
	})
	if res.Error != nil {
		return res.Error
	}
	// MySQL 默认返回"实际改变"的行数，值未变时为 0，需再确认一次是否存在
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&task.TaskModel{}).Where("id = ?", t.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}
	return r.reload(ctx, t)
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&task.TaskModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) CountByStatus(ctx context.Context, f domain.TaskFilter) (domain.StatusCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	q := r.scope(r.db.WithContext(ctx).Model(&task.TaskModel{}), f)
	if err := q.Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return domain.StatusCounts{}, err
	}
	var out domain.StatusCounts
	for _, row := range rows {
		out.Total += row.N
		switch domain.Status(row.Status) {
		case domain.StatusTodo:
			out.Todo = row.N
		case domain.StatusInProgress:
			out.InProgress = row.N
		case domain.StatusCompleted:
			out.Completed = row.N
		}
	}
	return out, nil
}

func (r *TaskRepo) reload(ctx context.Context, t *domain.Task) error {
	got, err := r.FindByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if got == nil {
		return domain.ErrNotFound
	}
	*t = *got
	return nil
}
