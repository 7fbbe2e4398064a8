package security

import (
	"log/slog"
	"net/http"
)

// Guard wires the enforcement helpers into chi route middleware. Denied
// requests receive 403; there is no fallback rendering on an API
// surface.
type Guard struct {
	Engine *Engine
	Logger *slog.Logger
}

// RequirePermission denies the request unless the principal holds the
// permission.
func (g Guard) RequirePermission(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Engine.EnforcePermission(perm); err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny denies the request unless the principal holds at least one
// of the permissions.
func (g Guard) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if err := g.Engine.EnforceAnyPermission(perms...); err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireResource denies the request unless the resource/action
// decision allows it. Ownership carve-outs are per-request and handled
// in handlers; route-level guards pass no owner.
func (g Guard) RequireResource(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.Engine.EnforceResourceAccess(resource, action, ""); err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g Guard) deny(w http.ResponseWriter, r *http.Request, err error) {
	if g.Logger != nil {
		g.Logger.Warn("request denied", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
