package model

import "github.com/google/uuid"

// Actor is the verified identity of the caller, derived from the JWT
// by the auth middleware. Handlers never trust role or ownership
// fields supplied in request bodies.
type Actor struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type TokenClaims struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

type TokenResponse struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	UserSummary
	TokenResponse
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
