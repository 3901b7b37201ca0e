package auth

import "time"

// UserClaims is what handlers learn about the caller.
type UserClaims interface {
	UserID() string
	IsSuperuser() bool
	TokenID() string
	ExpiresAt() time.Time
}

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// JWTClaims are the verified contents of a bearer token.
type JWTClaims struct {
	UserUUID  string
	Superuser bool
	JTI       string
	Expiry    time.Time
	Type      TokenType
}

func (c *JWTClaims) UserID() string       { return c.UserUUID }
func (c *JWTClaims) IsSuperuser() bool    { return c.Superuser }
func (c *JWTClaims) TokenID() string      { return c.JTI }
func (c *JWTClaims) ExpiresAt() time.Time { return c.Expiry }
