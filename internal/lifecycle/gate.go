// AngelaMos | 2026
// gate.go

// Package lifecycle turns entity status values into admission decisions.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/metrics"
	"github.com/clergo/steago/internal/unified"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// UserCanSignIn decides whether a user in the given status may sign in or act.
func UserCanSignIn(status unified.UserStatus) Decision {
	switch status {
	case unified.UserStatusActive:
		return allow()
	case unified.UserStatusUnverified:
		// No verification flow yet: unverified users pass.
		return allow()
	case unified.UserStatusSuspended:
		return deny("user is suspended")
	case unified.UserStatusDeleted:
		return deny("user is deleted")
	default:
		return deny(fmt.Sprintf("user status %s is not recognised", status))
	}
}

// WorkspaceCanReceiveTraffic decides whether a workspace may serve requests.
func WorkspaceCanReceiveTraffic(status unified.WorkspaceStatus) Decision {
	switch status {
	case unified.WorkspaceStatusActive:
		return allow()
	case unified.WorkspaceStatusNew, unified.WorkspaceStatusOnHold:
		// Placeholders for activation and restricted access; currently open.
		return allow()
	case unified.WorkspaceStatusSuspended:
		return deny("workspace is suspended")
	case unified.WorkspaceStatusDeleted:
		return deny("workspace is deleted")
	default:
		return deny(fmt.Sprintf("workspace status %s is not recognised", status))
	}
}

// CheckPrincipal applies both gates to a resolved principal. Denials are
// returned wrapped in core.ErrForbidden.
func CheckPrincipal(
	ctx context.Context,
	principal unified.User,
	workspaces unified.WorkspaceModel,
) error {
	if d := UserCanSignIn(principal.GetStatus()); !d.Allowed {
		metrics.ObserveLifecycleDenial("user", principal.GetStatus().String())
		return fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	ws, err := workspaces.GetByID(ctx, principal.GetWorkspaceID())
	if err != nil {
		return fmt.Errorf("load workspace of record: %w", err)
	}

	if d := WorkspaceCanReceiveTraffic(ws.GetStatus()); !d.Allowed {
		metrics.ObserveLifecycleDenial("workspace", ws.GetStatus().String())
		return fmt.Errorf("%s: %w", d.Reason, core.ErrForbidden)
	}

	return nil
}
