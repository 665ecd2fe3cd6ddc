// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/middleware"
	"github.com/clergo/steago/internal/unified"
)

// ModelProvider hands out the bound models; *unified.Registry satisfies it.
type ModelProvider interface {
	User() (unified.UserModel, error)
	Workspace() (unified.WorkspaceModel, error)
}

// Lister is implemented by user models that support paging.
type Lister interface {
	List(ctx context.Context, params ListUsersParams) ([]unified.User, int, error)
}

type Handler struct {
	models    ModelProvider
	validator *validator.Validate
}

func NewHandler(models ModelProvider) *Handler {
	return &Handler{
		models:    models,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/me", h.GetMe)
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	workspaces, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	ws, err := workspaces.GetByID(r.Context(), principal.GetWorkspaceID())
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, MeResponse{
		UserResponse:  ToUserResponse(principal),
		WorkspaceUUID: ws.GetUUID(),
		WorkspaceName: ws.GetName(),
	})
}

// RegisterAdminRoutes registers super-admin user management endpoints.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{userUUID}", h.GetUser)
		r.Put("/{userUUID}/status", h.UpdateUserStatus)
		r.Delete("/{userUUID}", h.DeleteUser)
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	model, err := h.models.User()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	lister, ok := model.(Lister)
	if !ok {
		core.JSONError(w, core.NewAppError(
			nil,
			"listing is not supported by the bound user model",
			http.StatusNotImplemented,
			"NOT_IMPLEMENTED",
		))
		return
	}

	params, err := h.listParams(r)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	users, total, err := lister.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) listParams(r *http.Request) (ListUsersParams, error) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", defaultPageSize),
		Search:   q.Get("search"),
	}

	if raw := q.Get("status"); raw != "" {
		status, err := unified.ParseUserStatus(raw)
		if err != nil {
			return params, core.ValidationError(err.Error())
		}
		params.Status = &status
	}

	if raw := q.Get("type"); raw != "" {
		typ, err := unified.ParseUserType(raw)
		if err != nil {
			return params, core.ValidationError(err.Error())
		}
		params.Type = &typ
	}

	if raw := q.Get("workspace"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return params, core.ValidationError("invalid workspace uuid")
		}
		ws, err := h.workspaceByUUID(r.Context(), id)
		if err != nil {
			return params, err
		}
		params.WorkspaceID = ws.GetID()
	}

	params.Normalize()
	return params, nil
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ws, err := h.workspaceByUUID(r.Context(), req.WorkspaceUUID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	model, err := h.models.User()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	u, err := model.Create(r.Context(), unified.CreateUserParams{
		Name:        req.Name,
		Email:       req.Email,
		Type:        *req.Type,
		WorkspaceID: ws.GetID(),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("email"))
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToUserResponse(u))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, ok := h.lookup(w, r)
	if !ok {
		return
	}

	core.OK(w, ToUserResponse(u))
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	status, err := unified.ParseUserStatus(req.Status)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	target, ok := h.lookup(w, r)
	if !ok {
		return
	}

	model, err := h.models.User()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	updated, err := model.SetStatus(r.Context(), target.GetID(), status)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToUserResponse(updated))
}

// DeleteUser marks a user DELETED. Super admins cannot delete themselves.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	target, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if principal, ok := middleware.GetPrincipal(r.Context()); ok &&
		principal.GetUUID() == target.GetUUID() {
		core.Forbidden(w, "cannot delete your own account")
		return
	}

	model, err := h.models.User()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if err := model.Delete(r.Context(), target.GetID()); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (unified.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userUUID"))
	if err != nil {
		core.BadRequest(w, "invalid user uuid")
		return nil, false
	}

	model, err := h.models.User()
	if err != nil {
		core.InternalServerError(w, err)
		return nil, false
	}

	u, err := model.GetByUUID(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return nil, false
		}
		core.JSONError(w, err)
		return nil, false
	}

	return u, true
}

func (h *Handler) workspaceByUUID(
	ctx context.Context,
	id uuid.UUID,
) (unified.Workspace, error) {
	model, err := h.models.Workspace()
	if err != nil {
		return nil, err
	}

	ws, err := model.GetByUUID(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("workspace")
	}
	return ws, err
}
