// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/clergo/steago/internal/core"
	"github.com/clergo/steago/internal/middleware"
)

const statusSuccess = "success"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.With(authenticator).Post("/logout", h.Logout)
		r.With(optionalAuth).Get("/session", h.Session)
	})
}

// RegisterPlatformRoutes mounts the server-to-server sign-in endpoints.
func (h *Handler) RegisterPlatformRoutes(
	r chi.Router,
	platformKey func(http.Handler) http.Handler,
) {
	r.Route("/platform/auth", func(r chi.Router) {
		r.Use(platformKey)
		r.Post("/user", h.PlatformUser)
		r.Post("/token", h.PlatformToken)
	})
}

func (h *Handler) PlatformUser(w http.ResponseWriter, r *http.Request) {
	var req PlatformUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	u, created, err := h.service.EnsureUser(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	resp := PlatformUserResponse{
		Status:  statusSuccess,
		Created: created,
		UUID:    u.GetUUID(),
	}
	if created {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) PlatformToken(w http.ResponseWriter, r *http.Request) {
	var req PlatformTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	issued, err := h.service.IssueToken(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
	})
}

// Session reports whether the presented token resolves to a principal. It
// never fails on a missing or bad token.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		core.OK(w, SessionResponse{Authenticated: false})
		return
	}

	resp := SessionResponse{
		Authenticated: true,
		User: &SessionUser{
			UUID:  principal.GetUUID(),
			Name:  principal.GetName(),
			Email: principal.GetEmail(),
			Type:  principal.GetType(),
		},
	}
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		resp.ExpiresAt = &claims.ExpiresAt
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())

	if err := h.service.Logout(r.Context(), claims); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
