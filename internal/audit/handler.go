package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rosterhub/rosterhub/internal/platform/httpx"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/shared"
)

// Handler serves the security event log. Access control happens inside
// the engine: a caller without the audit permission gets an empty page
// and their attempt is itself recorded, so no route guard is mounted
// here.
type Handler struct {
	logger *slog.Logger
	engine *security.Engine
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, engine *security.Engine) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, engine: engine}
}

// MountRoutes registers audit log routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/events", h.listEvents)
	r.Get("/events/export", h.exportEvents)
}

type eventListResponse struct {
	Events     []security.SecurityEvent `json:"events"`
	Pagination shared.Pagination        `json:"pagination"`
}

func filterFromQuery(r *http.Request) security.EventFilter {
	q := r.URL.Query()
	return security.EventFilter{
		UserID:   q.Get("user_id"),
		Type:     security.EventType(q.Get("type")),
		Severity: security.Severity(q.Get("severity")),
		Resource: q.Get("resource"),
		Action:   q.Get("action"),
	}
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	events := h.engine.Query(filterFromQuery(r))
	start, end := shared.PageSlice(page, perPage, len(events))

	httpx.JSON(w, http.StatusOK, eventListResponse{
		Events:     events[start:end],
		Pagination: shared.NewPagination(page, perPage, len(events)),
	})
}

// exportEvents renders the filtered log as plain text, one formatted
// line per event, newest first.
func (h *Handler) exportEvents(w http.ResponseWriter, r *http.Request) {
	events := h.engine.Query(filterFromQuery(r))

	var b strings.Builder
	for _, event := range events {
		b.WriteString(security.FormatEvent(event))
		b.WriteByte('\n')
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="security-events.log"`)
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, b.String()); err != nil {
		h.logger.Warn("write export", slog.Any("error", err))
	}
}
