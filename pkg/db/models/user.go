package models

import (
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// User is a store employee that can sign in to the dashboard.
type User struct {
	ID                 int64            `gorm:"primaryKey;autoIncrement"`
	StoreID            int64            `gorm:"column:store_id;not null;index"`
	Name               string           `gorm:"column:name;not null"`
	Login              string           `gorm:"column:login;not null;uniqueIndex:users_login_key"`
	PasswordHash       string           `gorm:"column:password_hash;not null"`
	Role               enums.UserRole   `gorm:"column:role;not null"`
	Permission         int              `gorm:"column:permission;not null;default:0"`
	Status             enums.UserStatus `gorm:"column:status;not null;default:'ativo'"`
	CPF                *string          `gorm:"column:cpf"`
	Registration       *string          `gorm:"column:registration"`
	Email              *string          `gorm:"column:email"`
	HiredAt            *time.Time       `gorm:"column:hired_at"`
	MustChangePassword bool             `gorm:"column:must_change_password;not null;default:false"`
	LastLoginAt        *time.Time       `gorm:"column:last_login_at"`
	CreatedAt          time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
