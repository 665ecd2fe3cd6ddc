// AngelaMos | 2026
// resolver.go

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/metrics"
	"github.com/clergo/steago/internal/unified"
)

// UserModelProvider hands out the bound user model; *unified.Registry
// satisfies it.
type UserModelProvider interface {
	User() (unified.UserModel, error)
}

// Resolver maps a verified token subject to the principal it names.
type Resolver struct {
	models UserModelProvider
}

func NewResolver(models UserModelProvider) *Resolver {
	return &Resolver{models: models}
}

// ResolvePrincipal looks the subject up as a user uuid. A subject that is
// not a uuid, or names no user, yields core.ErrNotFound. An unbound
// registry yields core.ErrNotConfigured.
func (r *Resolver) ResolvePrincipal(
	ctx context.Context,
	subject string,
) (unified.User, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		metrics.ObservePrincipalResolution(metrics.ResultMiss)
		return nil, fmt.Errorf("resolve principal: malformed subject: %w", core.ErrNotFound)
	}

	model, err := r.models.User()
	if err != nil {
		metrics.ObservePrincipalResolution(metrics.ResultError)
		return nil, fmt.Errorf("resolve principal: %w: %w", core.ErrNotConfigured, err)
	}

	principal, err := model.GetByUUID(ctx, id)
	switch {
	case err == nil:
		metrics.ObservePrincipalResolution(metrics.ResultHit)
		return principal, nil
	case errors.Is(err, core.ErrNotFound):
		metrics.ObservePrincipalResolution(metrics.ResultMiss)
		return nil, fmt.Errorf("resolve principal: %w", err)
	default:
		metrics.ObservePrincipalResolution(metrics.ResultError)
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
}
