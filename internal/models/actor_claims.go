package models

import "github.com/golang-jwt/jwt/v5"

// Actor roles issued by the auth subsystem
const (
	RoleConsumer = "consumer"
	RoleAdmin    = "admin"
)

// ActorClaims are the JWT claims this service consumes from tokens issued
// by the external auth subsystem. Only verification happens here.
type ActorClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *ActorClaims) IsAdmin() bool {
	return c.Role == RoleAdmin
}
