// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/lifecycle"
	"github.com/clergo/steago/internal/middleware"
	"github.com/clergo/steago/internal/unified"
)

// ModelProvider hands out both bound models; *unified.Registry satisfies it.
type ModelProvider interface {
	User() (unified.UserModel, error)
	Workspace() (unified.WorkspaceModel, error)
}

type TokenIssuer interface {
	CreateAccessToken(subject uuid.UUID) (*IssuedToken, error)
}

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Service backs the server-to-server sign-in flow used by the web tier.
type Service struct {
	models      ModelProvider
	tokens      TokenIssuer
	revoker     Revoker
	superAdmins func(email string) bool
}

func NewService(
	models ModelProvider,
	tokens TokenIssuer,
	revoker Revoker,
	superAdmins func(email string) bool,
) *Service {
	if superAdmins == nil {
		superAdmins = func(string) bool { return false }
	}
	return &Service{
		models:      models,
		tokens:      tokens,
		revoker:     revoker,
		superAdmins: superAdmins,
	}
}

// EnsureUser returns the user registered under req.Email, creating it
// together with a personal workspace when absent.
func (s *Service) EnsureUser(
	ctx context.Context,
	req PlatformUserRequest,
) (unified.User, bool, error) {
	users, err := s.models.User()
	if err != nil {
		return nil, false, err
	}

	existing, err := users.GetByEmail(ctx, req.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	workspaces, err := s.models.Workspace()
	if err != nil {
		return nil, false, err
	}

	ws, err := workspaces.Create(ctx, unified.CreateWorkspaceParams{Name: req.Name})
	if err != nil {
		return nil, false, fmt.Errorf("create personal workspace: %w", err)
	}

	userType := unified.UserTypeHubUser
	if req.IsSuperAdmin || s.superAdmins(strings.ToLower(req.Email)) {
		userType = unified.UserTypeSuperAdmin
	}

	created, err := users.Create(ctx, unified.CreateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		Type:        userType,
		WorkspaceID: ws.GetID(),
	})
	if err != nil {
		s.discardWorkspace(ctx, workspaces, ws)

		// Lost a race with a concurrent sign-in for the same email.
		if errors.Is(err, core.ErrDuplicateKey) {
			existing, getErr := users.GetByEmail(ctx, req.Email)
			if getErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "platform user created",
		"user_uuid", created.GetUUID(),
		"workspace_uuid", ws.GetUUID(),
		"type", userType.String(),
	)

	return created, true, nil
}

// IssueToken signs an access token for the user with the given email after
// both lifecycle checks pass.
func (s *Service) IssueToken(
	ctx context.Context,
	email string,
) (*IssuedToken, error) {
	users, err := s.models.User()
	if err != nil {
		return nil, err
	}

	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	workspaces, err := s.models.Workspace()
	if err != nil {
		return nil, err
	}

	if err := lifecycle.CheckPrincipal(ctx, u, workspaces); err != nil {
		return nil, err
	}

	return s.tokens.CreateAccessToken(u.GetUUID())
}

func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}
	return s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *Service) discardWorkspace(
	ctx context.Context,
	workspaces unified.WorkspaceModel,
	ws unified.Workspace,
) {
	if err := workspaces.Delete(ctx, ws.GetID()); err != nil {
		slog.ErrorContext(ctx, "failed to discard orphaned workspace",
			"workspace_uuid", ws.GetUUID(),
			"error", err,
		)
	}
}
