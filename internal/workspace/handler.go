// AngelaMos | 2026
// handler.go

package workspace

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

// ModelProvider hands out the bound workspace model; *unified.Registry
// satisfies it.
type ModelProvider interface {
	Workspace() (unified.WorkspaceModel, error)
}

// Lister is implemented by workspace models that support paging.
type Lister interface {
	List(ctx context.Context, params ListParams) ([]unified.Workspace, int, error)
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
	r.With(authenticator).Get("/workspace", h.GetCurrent)
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/workspaces", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{workspaceUUID}", h.Get)
		r.Put("/{workspaceUUID}/status", h.UpdateStatus)
		r.Delete("/{workspaceUUID}", h.Delete)
	})
}

// GetCurrent returns the principal's workspace of record.
func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		core.Unauthorized(w, "")
		return
	}

	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	ws, err := model.GetByID(r.Context(), principal.GetWorkspaceID())
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToWorkspaceResponse(ws))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	lister, ok := model.(Lister)
	if !ok {
		core.JSONError(w, core.NewAppError(
			nil,
			"listing is not supported by the bound workspace model",
			http.StatusNotImplemented,
			"NOT_IMPLEMENTED",
		))
		return
	}

	params := ListParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", defaultPageSize),
		Search:   r.URL.Query().Get("search"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := unified.ParseWorkspaceStatus(raw)
		if err != nil {
			core.BadRequest(w, err.Error())
			return
		}
		params.Status = &status
	}
	params.Normalize()

	workspaces, total, err := lister.List(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(
		w,
		ToWorkspaceResponseList(workspaces),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	ws, err := model.Create(r.Context(), unified.CreateWorkspaceParams{Name: req.Name})
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToWorkspaceResponse(ws))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.lookup(w, r)
	if !ok {
		return
	}

	core.OK(w, ToWorkspaceResponse(ws))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	status, err := unified.ParseWorkspaceStatus(req.Status)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	ws, ok := h.lookup(w, r)
	if !ok {
		return
	}

	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	updated, err := model.SetStatus(r.Context(), ws.GetID(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToWorkspaceResponse(updated))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := h.lookup(w, r)
	if !ok {
		return
	}

	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if err := model.Delete(r.Context(), ws.GetID()); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (unified.Workspace, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "workspaceUUID"))
	if err != nil {
		core.BadRequest(w, "invalid workspace uuid")
		return nil, false
	}

	model, err := h.models.Workspace()
	if err != nil {
		core.InternalServerError(w, err)
		return nil, false
	}

	ws, err := model.GetByUUID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	return ws, true
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "workspace")
		return
	}
	core.JSONError(w, err)
}
