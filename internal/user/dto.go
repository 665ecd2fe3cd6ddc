// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/unified"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateUserRequest struct {
	Name          string            `json:"name"           validate:"required,min=1,max=255"`
	Email         string            `json:"email"          validate:"required,email,max=255"`
	Type          *unified.UserType `json:"type"           validate:"required"`
	WorkspaceUUID uuid.UUID         `json:"workspace_uuid" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UserResponse struct {
	UUID           uuid.UUID          `json:"uuid"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Username       string             `json:"username"`
	Status         unified.UserStatus `json:"status"`
	Type           unified.UserType   `json:"type"`
	DisplayPicture string             `json:"display_picture"`
	CreatedTS      time.Time          `json:"created_ts"`
	ModifiedTS     time.Time          `json:"modified_ts"`
}

// MeResponse adds the workspace of record to the principal's own view.
type MeResponse struct {
	UserResponse
	WorkspaceUUID uuid.UUID `json:"workspace_uuid"`
	WorkspaceName string    `json:"workspace_name"`
}

type ListUsersParams struct {
	Page        int
	PageSize    int
	Search      string
	Status      *unified.UserStatus
	Type        *unified.UserType
	WorkspaceID int64
}

func (p *ListUsersParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToUserResponse(u unified.User) UserResponse {
	return UserResponse{
		UUID:           u.GetUUID(),
		Name:           u.GetName(),
		Email:          u.GetEmail(),
		Username:       u.GetUsername(),
		Status:         u.GetStatus(),
		Type:           u.GetType(),
		DisplayPicture: u.DisplayPicture(),
		CreatedTS:      u.GetCreatedTS(),
		ModifiedTS:     u.GetModifiedTS(),
	}
}

func ToUserResponseList(users []unified.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, ToUserResponse(u))
	}
	return responses
}
