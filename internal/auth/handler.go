package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rosterhub/rosterhub/internal/platform/httpx"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/shared"
)

// Handler wires HTTP endpoints for the authentication and session
// lifecycle flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	engine         *security.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, engine *security.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		engine:         engine,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth and session routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/session", h.sessionStatus)
	r.Post("/session/activity", h.sessionActivity)
	r.Post("/session/extend", h.sessionExtend)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	UserID    string                 `json:"user_id"`
	Email     string                 `json:"email"`
	Name      string                 `json:"name"`
	Role      security.Role          `json:"role"`
	Session   security.SessionInfo   `json:"session"`
	CSRFToken string                 `json:"csrf_token"`
	Access    security.DataAccess    `json:"data_access"`
	Status    security.SessionStatus `json:"status"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	info := h.engine.SignIn(user.Principal())

	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if sess != nil {
		sess.SetUser(user.ID)
		csrfToken, _ = h.csrfManager.EnsureToken(r.Context(), sess)
		expiresAt := time.Now().Add(h.sessionManager.TTL())
		if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
			h.logger.Warn("register session", slog.Any("error", err))
		}
	} else {
		h.logger.Error("portal session missing during login")
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Session:   info,
		CSRFToken: csrfToken,
		Access:    h.engine.DataAccess(),
		Status:    h.engine.SessionStatus(),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.engine.SignOut()
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionStatusResponse struct {
	Status    security.SessionStatus `json:"status"`
	CSRFToken string                 `json:"csrf_token,omitempty"`
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	resp := sessionStatusResponse{Status: h.engine.SessionStatus()}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		resp.CSRFToken, _ = h.csrfManager.EnsureToken(r.Context(), sess)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// sessionActivity is called by the UI on pointer, key, scroll, touch
// and click events; each call rolls the expiry window forward.
func (h *Handler) sessionActivity(w http.ResponseWriter, r *http.Request) {
	h.engine.Touch()
	httpx.JSON(w, http.StatusOK, sessionStatusResponse{Status: h.engine.SessionStatus()})
}

// sessionExtend is the explicit "stay signed in" choice offered by the
// timeout warning dialog.
func (h *Handler) sessionExtend(w http.ResponseWriter, r *http.Request) {
	if !h.engine.ExtendSession() {
		httpx.Problem(w, http.StatusConflict, "No Session", "no active session to extend")
		return
	}
	httpx.JSON(w, http.StatusOK, sessionStatusResponse{Status: h.engine.SessionStatus()})
}
