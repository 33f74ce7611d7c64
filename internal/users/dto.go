package users

import (
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID                 int64            `json:"id"`
	StoreID            int64            `json:"store_id"`
	Name               string           `json:"name"`
	Login              string           `json:"login"`
	Role               enums.UserRole   `json:"role"`
	Permission         int              `json:"permission"`
	Status             enums.UserStatus `json:"status"`
	CPF                *string          `json:"cpf,omitempty"`
	Registration       *string          `json:"registration,omitempty"`
	Email              *string          `json:"email,omitempty"`
	HiredAt            *time.Time       `json:"hired_at,omitempty"`
	MustChangePassword bool             `json:"must_change_password"`
	LastLoginAt        *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ListFilter narrows the store user list. Empty fields match everything.
type ListFilter struct {
	Query  string
	Status string
	Role   string
}

// CreateUserInput is the body accepted when a manager adds a user.
type CreateUserInput struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Login        string  `json:"login" validate:"required,min=3,max=64"`
	Role         string  `json:"role" validate:"required,user_role"`
	Permission   int     `json:"permission" validate:"gte=0,lte=10"`
	CPF          *string `json:"cpf,omitempty" validate:"omitempty,max=14"`
	Registration *string `json:"registration,omitempty" validate:"omitempty,max=32"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	HiredAt      *string `json:"hired_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateUserInput patches a user. Nil fields are left untouched.
type UpdateUserInput struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Role         *string `json:"role,omitempty"`
	Permission   *int    `json:"permission,omitempty" validate:"omitempty,gte=0,lte=10"`
	Status       *string `json:"status,omitempty"`
	CPF          *string `json:"cpf,omitempty" validate:"omitempty,max=14"`
	Registration *string `json:"registration,omitempty" validate:"omitempty,max=32"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
}

// CreateUserResult carries the temporary password, which is only ever
// returned here.
type CreateUserResult struct {
	User              *UserDTO `json:"user"`
	TemporaryPassword string   `json:"temporary_password"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                 u.ID,
		StoreID:            u.StoreID,
		Name:               u.Name,
		Login:              u.Login,
		Role:               u.Role,
		Permission:         u.Permission,
		Status:             u.Status,
		CPF:                u.CPF,
		Registration:       u.Registration,
		Email:              u.Email,
		HiredAt:            u.HiredAt,
		MustChangePassword: u.MustChangePassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
}
