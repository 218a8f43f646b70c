package task

import (
	"time"

	"teamtask/internal/domain"
	"teamtask/internal/feature/user"
)

type TaskModel struct {
	ID          string `gorm:"primaryKey;type:varchar(32)"`
	Title       string `gorm:"type:text;not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:16;not null;default:todo;index"`
	AssignedTo  string `gorm:"type:varchar(32);not null;index"`

	// 每次读取都 Preload，返回 assignee 的 name/email
	Assignee user.UserModel `gorm:"foreignKey:AssignedTo;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TaskModel) TableName() string { return "tasks" }

func FromDomain(t *domain.Task) *TaskModel {
	return &TaskModel{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (m *TaskModel) ToDomain() *domain.Task {
	return &domain.Task{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      domain.Status(m.Status),
		AssignedTo:  m.AssignedTo,
		Assignee: domain.Assignee{
			ID:    m.AssignedTo,
			Name:  m.Assignee.Name,
			Email: m.Assignee.Email,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
