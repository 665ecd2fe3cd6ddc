// AngelaMos | 2026
// registry.go

package unified

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	ErrNotConfigured         = errors.New("unified model not configured")
	ErrAlreadyBound          = errors.New("unified model slot already bound")
	ErrSealed                = errors.New("unified registry sealed")
	ErrInvalidImplementation = errors.New("invalid unified model implementation")
)

// Registry holds the active User and Workspace implementations.
//
// Each slot is bound at most once, during startup, by the goroutine that
// builds the application. Rebinding is rejected rather than overwritten.
// Seal is called before the server starts accepting requests; reads after
// that are lock-free.
type Registry struct {
	mu        sync.Mutex
	sealed    atomic.Bool
	user      atomic.Pointer[UserModel]
	workspace atomic.Pointer[WorkspaceModel]
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) BindUser(model UserModel) error {
	if model == nil {
		return fmt.Errorf("bind user: %w: nil model", ErrInvalidImplementation)
	}
	if err := model.Schema().Validate(RequiredUserColumns); err != nil {
		return fmt.Errorf("bind user: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("bind user: %w", ErrSealed)
	}
	if r.user.Load() != nil {
		return fmt.Errorf("bind user: %w", ErrAlreadyBound)
	}

	r.user.Store(&model)
	return nil
}

func (r *Registry) BindWorkspace(model WorkspaceModel) error {
	if model == nil {
		return fmt.Errorf("bind workspace: %w: nil model", ErrInvalidImplementation)
	}
	if err := model.Schema().Validate(RequiredWorkspaceColumns); err != nil {
		return fmt.Errorf("bind workspace: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("bind workspace: %w", ErrSealed)
	}
	if r.workspace.Load() != nil {
		return fmt.Errorf("bind workspace: %w", ErrAlreadyBound)
	}

	r.workspace.Store(&model)
	return nil
}

// Bind binds both slots. The workspace slot is bound first since users
// reference workspaces.
func (r *Registry) Bind(user UserModel, workspace WorkspaceModel) error {
	if err := r.BindWorkspace(workspace); err != nil {
		return err
	}
	return r.BindUser(user)
}

// Seal forbids any further binding. It fails if a slot is still unbound.
func (r *Registry) Seal() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.user.Load() == nil {
		return fmt.Errorf("seal: user: %w", ErrNotConfigured)
	}
	if r.workspace.Load() == nil {
		return fmt.Errorf("seal: workspace: %w", ErrNotConfigured)
	}

	r.sealed.Store(true)
	return nil
}

func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Bound reports whether both slots are bound.
func (r *Registry) Bound() bool {
	return r.user.Load() != nil && r.workspace.Load() != nil
}

func (r *Registry) User() (UserModel, error) {
	m := r.user.Load()
	if m == nil {
		return nil, fmt.Errorf("user: %w", ErrNotConfigured)
	}
	return *m, nil
}

func (r *Registry) Workspace() (WorkspaceModel, error) {
	m := r.workspace.Load()
	if m == nil {
		return nil, fmt.Errorf("workspace: %w", ErrNotConfigured)
	}
	return *m, nil
}

// MustUser is for bootstrap code that runs after Seal.
func (r *Registry) MustUser() UserModel {
	m, err := r.User()
	if err != nil {
		panic(err)
	}
	return m
}

func (r *Registry) MustWorkspace() WorkspaceModel {
	m, err := r.Workspace()
	if err != nil {
		panic(err)
	}
	return m
}
