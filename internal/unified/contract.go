// AngelaMos | 2026
// contract.go

// Package unified defines the contract every User and Workspace
// implementation satisfies and the registry that binds the active
// implementations at startup.
//
// Framework code (identity resolution, lifecycle checks, handlers) depends on
// this package only. Deployments that need richer entities implement
// UserModel/WorkspaceModel on top of their own types and bind them in place
// of the defaults.
package unified

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the minimal capability set of a user entity.
type User interface {
	GetID() int64
	GetUUID() uuid.UUID
	GetName() string
	GetEmail() string
	GetUsername() string
	GetStatus() UserStatus
	GetType() UserType
	GetWorkspaceID() int64
	GetCreatedTS() time.Time
	GetModifiedTS() time.Time

	// DisplayPicture derives a stable avatar URI from immutable identity data.
	DisplayPicture() string
}

// Workspace is the minimal capability set of a workspace entity.
type Workspace interface {
	GetID() int64
	GetUUID() uuid.UUID
	GetName() string
	GetStatus() WorkspaceStatus
	GetCreatedTS() time.Time
	GetModifiedTS() time.Time
	DisplayPicture() string
}

type CreateUserParams struct {
	Name        string `validate:"required,max=255"`
	Email       string `validate:"required,email,max=255"`
	Type        UserType
	WorkspaceID int64 `validate:"required,gt=0"`
}

type CreateWorkspaceParams struct {
	Name string `validate:"required,max=255"`
}

// UserModel is the type-level side of a User implementation: construction,
// lookup and persistence. Exactly one is bound per process.
type UserModel interface {
	Schema() Schema

	// Create always inserts a new row; there is no deduplication.
	Create(ctx context.Context, params CreateUserParams) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	SetStatus(ctx context.Context, id int64, status UserStatus) (User, error)

	// Delete is logical: the status becomes UserStatusDeleted.
	Delete(ctx context.Context, id int64) error
}

// WorkspaceModel is the type-level side of a Workspace implementation.
type WorkspaceModel interface {
	Schema() Schema

	Create(ctx context.Context, params CreateWorkspaceParams) (Workspace, error)
	GetByID(ctx context.Context, id int64) (Workspace, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (Workspace, error)
	SetStatus(
		ctx context.Context,
		id int64,
		status WorkspaceStatus,
	) (Workspace, error)
	Delete(ctx context.Context, id int64) error
}
