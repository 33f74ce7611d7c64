package auth

import (
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     int64
	StoreID    int64
	Role       enums.UserRole
	Permission int
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     int64          `json:"user_id"`
	StoreID    int64          `json:"store_id"`
	Role       enums.UserRole `json:"role"`
	Permission int            `json:"permission"`
	jwt.RegisteredClaims
}

// AccessID returns the session identifier carried in the jti claim.
func (c *AccessTokenClaims) AccessID() string {
	return c.ID
}
