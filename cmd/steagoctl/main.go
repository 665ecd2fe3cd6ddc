// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"

	"github.com/clergo/steago/internal/auth"
	"github.com/clergo/steago/internal/bootstrap"
	"github.com/clergo/steago/internal/config"
	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/unified"
)

const usage = `usage: steagoctl [-config path] <command> [flags]

commands:
  keygen            write a new ES256 key pair
  create-workspace  create a workspace
  create-user       create a user inside an existing workspace
  issue-token       sign an access token for an existing user
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("steagoctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "path to YAML config file; env only when empty")
	global.Usage = func() { fmt.Fprint(stderr, usage) }

	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	cmd, rest := global.Arg(0), global.Args()[1:]

	if cmd == "keygen" {
		return keygen(rest, stdout, stderr)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	env, err := connect(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	defer env.close()

	switch cmd {
	case "create-workspace":
		return createWorkspace(ctx, env, rest, stdout, stderr)
	case "create-user":
		return createUser(ctx, env, rest, stdout, stderr)
	case "issue-token":
		return issueToken(ctx, env, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

type environment struct {
	cfg      *config.Config
	db       *core.Database
	registry *unified.Registry
}

func (e *environment) close() {
	if err := e.db.Close(); err != nil {
		slog.Error("database close error", "error", err)
	}
}

func connect(
	ctx context.Context,
	cfg *config.Config,
	stderr io.Writer,
) (*environment, error) {
	logger := bootstrap.NewLogger(cfg.Log, stderr)
	slog.SetDefault(logger)

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	registry, err := bootstrap.BindModels(ctx, db.DB, cfg.Models, logger)
	if err != nil {
		//nolint:errcheck // already failing
		_ = db.Close()
		return nil, err
	}

	return &environment{cfg: cfg, db: db, registry: registry}, nil
}

func keygen(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	private := fs.String("private", "keys/private.pem", "private key output path")
	public := fs.String("public", "keys/public.pem", "public key output path")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	for _, p := range []string{*private, *public} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}

	if err := auth.GenerateKeyPair(*private, *public); err != nil {
		return err
	}

	return printJSON(stdout, map[string]string{
		"private_key": *private,
		"public_key":  *public,
	})
}

func createWorkspace(
	ctx context.Context,
	env *environment,
	args []string,
	stdout, stderr io.Writer,
) error {
	fs := flag.NewFlagSet("create-workspace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "", "workspace name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	ws, err := env.registry.MustWorkspace().Create(ctx, unified.CreateWorkspaceParams{
		Name: *name,
	})
	if err != nil {
		return err
	}

	return printJSON(stdout, map[string]any{
		"uuid":   ws.GetUUID(),
		"name":   ws.GetName(),
		"status": ws.GetStatus(),
	})
}

func createUser(
	ctx context.Context,
	env *environment,
	args []string,
	stdout, stderr io.Writer,
) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(stderr)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address, also used as username")
	userType := fs.String("type", "", "HUB_USER or SUPER_ADMIN (required)")
	workspaceRef := fs.String("workspace", "", "uuid of the workspace of record")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *userType == "" {
		return fmt.Errorf("create-user: -type is required: %w", errUsage)
	}

	typ, err := unified.ParseUserType(*userType)
	if err != nil {
		return err
	}

	wsUUID, err := uuid.Parse(*workspaceRef)
	if err != nil {
		return fmt.Errorf("workspace %q: %w", *workspaceRef, core.ErrInvalidInput)
	}

	ws, err := env.registry.MustWorkspace().GetByUUID(ctx, wsUUID)
	if err != nil {
		return fmt.Errorf("workspace %s: %w", wsUUID, err)
	}

	u, err := env.registry.MustUser().Create(ctx, unified.CreateUserParams{
		Name:        *name,
		Email:       *email,
		Type:        typ,
		WorkspaceID: ws.GetID(),
	})
	if err != nil {
		return err
	}

	return printJSON(stdout, map[string]any{
		"uuid":           u.GetUUID(),
		"email":          u.GetEmail(),
		"type":           u.GetType(),
		"workspace_uuid": ws.GetUUID(),
	})
}

func issueToken(
	ctx context.Context,
	env *environment,
	args []string,
	stdout, stderr io.Writer,
) error {
	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "email of the user to sign a token for")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	jwtManager, err := auth.NewJWTManager(env.cfg.JWT, nil)
	if err != nil {
		return err
	}

	svc := auth.NewService(env.registry, jwtManager, nil, env.cfg.Platform.IsSuperAdminEmail)
	issued, err := svc.IssueToken(ctx, *email)
	if err != nil {
		return err
	}

	return printJSON(stdout, auth.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
