package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OwnerID uuid.UUID
	AgentID string
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	OwnerID uuid.UUID `json:"owner_id"`
	AgentID string    `json:"agent_id,omitempty"`
	jwt.RegisteredClaims
}
