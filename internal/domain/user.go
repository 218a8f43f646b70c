package domain

import (
	"context"
	"time"
)

// 与 users 表的列宽一致，超长输入在写库前就报 ErrValidation
const (
	MaxNameLen  = 64
	MaxEmailLen = 254
)

type Role string

const (
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole maps an optional wire value onto the closed role set; empty means RoleUser.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleUser, nil
	case RoleManager, RoleUser:
		return Role(s), nil
	}
	return "", invalid("unsupported role %q", s)
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Principal is the caller resolved by the access gate for a single request.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (p Principal) IsManager() bool { return p.Role == RoleManager }

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserRepository returns (nil, nil) from the Find* methods when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
}
