// AngelaMos | 2026
// dto.go

package workspace

import (
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/unified"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type WorkspaceResponse struct {
	UUID           uuid.UUID               `json:"uuid"`
	Name           string                  `json:"name"`
	Status         unified.WorkspaceStatus `json:"status"`
	DisplayPicture string                  `json:"display_picture"`
	CreatedTS      time.Time               `json:"created_ts"`
	ModifiedTS     time.Time               `json:"modified_ts"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Status   *unified.WorkspaceStatus
}

func (p *ListParams) Normalize() {
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

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ToWorkspaceResponse renders any bound workspace implementation.
func ToWorkspaceResponse(w unified.Workspace) WorkspaceResponse {
	return WorkspaceResponse{
		UUID:           w.GetUUID(),
		Name:           w.GetName(),
		Status:         w.GetStatus(),
		DisplayPicture: w.DisplayPicture(),
		CreatedTS:      w.GetCreatedTS(),
		ModifiedTS:     w.GetModifiedTS(),
	}
}

func ToWorkspaceResponseList(workspaces []unified.Workspace) []WorkspaceResponse {
	responses := make([]WorkspaceResponse, 0, len(workspaces))
	for _, w := range workspaces {
		responses = append(responses, ToWorkspaceResponse(w))
	}
	return responses
}
