// AngelaMos | 2026
// models.go

// Package testutil provides in-memory unified model implementations for
// tests that exercise framework code without a database.
package testutil

import (
	"context"
	"crypto/md5" //nolint:gosec // avatar hash, not a security primitive
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/unified"
)

type User struct {
	ID          int64
	UUID        uuid.UUID
	Name        string
	Email       string
	Username    string
	Status      unified.UserStatus
	Type        unified.UserType
	WorkspaceID int64
	CreatedTS   time.Time
	ModifiedTS  time.Time
}

func (u *User) GetID() int64                  { return u.ID }
func (u *User) GetUUID() uuid.UUID            { return u.UUID }
func (u *User) GetName() string               { return u.Name }
func (u *User) GetEmail() string              { return u.Email }
func (u *User) GetUsername() string           { return u.Username }
func (u *User) GetStatus() unified.UserStatus { return u.Status }
func (u *User) GetType() unified.UserType     { return u.Type }
func (u *User) GetWorkspaceID() int64         { return u.WorkspaceID }
func (u *User) GetCreatedTS() time.Time       { return u.CreatedTS }
func (u *User) GetModifiedTS() time.Time      { return u.ModifiedTS }

func (u *User) DisplayPicture() string {
	sum := md5.Sum([]byte(u.Email)) //nolint:gosec // see import
	return "https://avatars.test/avatar/" + hex.EncodeToString(sum[:])
}

type Workspace struct {
	ID         int64
	UUID       uuid.UUID
	Name       string
	Status     unified.WorkspaceStatus
	CreatedTS  time.Time
	ModifiedTS time.Time
}

func (w *Workspace) GetID() int64                       { return w.ID }
func (w *Workspace) GetUUID() uuid.UUID                 { return w.UUID }
func (w *Workspace) GetName() string                    { return w.Name }
func (w *Workspace) GetStatus() unified.WorkspaceStatus { return w.Status }
func (w *Workspace) GetCreatedTS() time.Time            { return w.CreatedTS }
func (w *Workspace) GetModifiedTS() time.Time           { return w.ModifiedTS }
func (w *Workspace) DisplayPicture() string             { return "" }

// UserModel is a map-backed unified.UserModel enforcing the same
// uniqueness rules as the postgres implementation.
type UserModel struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User

	// CreateErr, when set, is returned by Create without storing anything.
	CreateErr error
}

func NewUserModel() *UserModel {
	return &UserModel{users: make(map[int64]*User)}
}

func (m *UserModel) Schema() unified.Schema {
	return unified.Schema{Table: "test_user", Columns: unified.RequiredUserColumns}
}

func (m *UserModel) Create(
	_ context.Context,
	params unified.CreateUserParams,
) (unified.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if params.Name == "" || params.Email == "" || params.WorkspaceID == 0 {
		return nil, fmt.Errorf("create user: %w", core.ErrInvalidInput)
	}

	for _, u := range m.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	m.nextID++
	now := time.Now().UTC()
	u := &User{
		ID:          m.nextID,
		UUID:        uuid.New(),
		Name:        params.Name,
		Email:       params.Email,
		Username:    params.Email,
		Status:      unified.UserStatusActive,
		Type:        params.Type,
		WorkspaceID: params.WorkspaceID,
		CreatedTS:   now,
		ModifiedTS:  now,
	}
	m.users[u.ID] = u

	cp := *u
	return &cp, nil
}

// Put stores u as-is, for tests that need a specific status or id.
func (m *UserModel) Put(u *User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if u.ID == 0 {
		m.nextID++
		u.ID = m.nextID
	}
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	m.users[u.ID] = u
}

func (m *UserModel) GetByID(_ context.Context, id int64) (unified.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *UserModel) GetByUUID(_ context.Context, id uuid.UUID) (unified.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.UUID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by uuid: %w", core.ErrNotFound)
}

func (m *UserModel) GetByEmail(_ context.Context, email string) (unified.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (m *UserModel) SetStatus(
	_ context.Context,
	id int64,
	status unified.UserStatus,
) (unified.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("set user status: %w", core.ErrNotFound)
	}
	u.Status = status
	u.ModifiedTS = time.Now().UTC()
	cp := *u
	return &cp, nil
}

func (m *UserModel) Delete(ctx context.Context, id int64) error {
	_, err := m.SetStatus(ctx, id, unified.UserStatusDeleted)
	return err
}

type WorkspaceModel struct {
	mu         sync.Mutex
	nextID     int64
	workspaces map[int64]*Workspace
}

func NewWorkspaceModel() *WorkspaceModel {
	return &WorkspaceModel{workspaces: make(map[int64]*Workspace)}
}

func (m *WorkspaceModel) Schema() unified.Schema {
	return unified.Schema{Table: "test_workspace", Columns: unified.RequiredWorkspaceColumns}
}

func (m *WorkspaceModel) Create(
	_ context.Context,
	params unified.CreateWorkspaceParams,
) (unified.Workspace, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("create workspace: %w", core.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now().UTC()
	w := &Workspace{
		ID:         m.nextID,
		UUID:       uuid.New(),
		Name:       params.Name,
		Status:     unified.WorkspaceStatusActive,
		CreatedTS:  now,
		ModifiedTS: now,
	}
	m.workspaces[w.ID] = w

	cp := *w
	return &cp, nil
}

func (m *WorkspaceModel) Put(w *Workspace) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if w.ID == 0 {
		m.nextID++
		w.ID = m.nextID
	}
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	m.workspaces[w.ID] = w
}

func (m *WorkspaceModel) GetByID(_ context.Context, id int64) (unified.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("get workspace: %w", core.ErrNotFound)
	}
	cp := *w
	return &cp, nil
}

func (m *WorkspaceModel) GetByUUID(_ context.Context, id uuid.UUID) (unified.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.workspaces {
		if w.UUID == id {
			cp := *w
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get workspace by uuid: %w", core.ErrNotFound)
}

func (m *WorkspaceModel) SetStatus(
	_ context.Context,
	id int64,
	status unified.WorkspaceStatus,
) (unified.Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("set workspace status: %w", core.ErrNotFound)
	}
	w.Status = status
	w.ModifiedTS = time.Now().UTC()
	cp := *w
	return &cp, nil
}

func (m *WorkspaceModel) Delete(ctx context.Context, id int64) error {
	_, err := m.SetStatus(ctx, id, unified.WorkspaceStatusDeleted)
	return err
}

// NewRegistry returns a sealed registry bound to fresh in-memory models.
func NewRegistry() (*unified.Registry, *UserModel, *WorkspaceModel) {
	users := NewUserModel()
	workspaces := NewWorkspaceModel()

	reg := unified.NewRegistry()
	if err := reg.Bind(users, workspaces); err != nil {
		panic(err)
	}
	if err := reg.Seal(); err != nil {
		panic(err)
	}

	return reg, users, workspaces
}

var (
	_ unified.UserModel      = (*UserModel)(nil)
	_ unified.WorkspaceModel = (*WorkspaceModel)(nil)
)
