// AngelaMos | 2026
// dto.go

package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/unified"
)

type PlatformUserRequest struct {
	Name         string `json:"name"           validate:"required,min=1,max=255"`
	Email        string `json:"email"          validate:"required,email,max=255"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

type PlatformUserResponse struct {
	Status  string    `json:"status"`
	Created bool      `json:"created"`
	UUID    uuid.UUID `json:"uuid"`
}

type PlatformTokenRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SessionUser struct {
	UUID  uuid.UUID        `json:"uuid"`
	Name  string           `json:"name"`
	Email string           `json:"email"`
	Type  unified.UserType `json:"type"`
}

type SessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *SessionUser `json:"user,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}
