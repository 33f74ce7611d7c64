package auth

import (
	"github.com/angelmondragon/storegoals-backend/internal/users"
	"github.com/angelmondragon/storegoals-backend/pkg/auth/session"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginResponse contains the tokens and profile produced by a successful login.
type LoginResponse struct {
	AccessToken        string          `json:"access_token"`
	RefreshToken       string          `json:"refresh_token"`
	ExpiresIn          int             `json:"expires_in"`
	Session            session.Profile `json:"session"`
	User               *users.UserDTO  `json:"user"`
	MustChangePassword bool            `json:"must_change_password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type RefreshResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"`
	Session      session.Profile `json:"session"`
}

type LogoutResponse struct {
	Status string `json:"status"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}
