package admin_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/rosterhub/rosterhub/internal/admin"
	"github.com/rosterhub/rosterhub/internal/security"
	_ "github.com/rosterhub/rosterhub/testing"
)

const validSettingsBody = `{
	"session_timeout_minutes": 45,
	"max_login_attempts": 3,
	"lockout_duration_minutes": 20,
	"password_policy": {"min_length": 10, "require_uppercase": true, "require_numbers": true, "require_special_chars": false},
	"audit_retention_days": 120
}`

func newAdminRouter(t *testing.T) (http.Handler, *security.Engine) {
	t.Helper()
	engine := security.NewEngine(security.Config{})
	r := chi.NewRouter()
	admin.NewHandler(nil, engine).MountRoutes(r)
	return r, engine
}

func TestGetSettingsRequiresPermission(t *testing.T) {
	r, engine := newAdminRouter(t)
	engine.SignIn(security.Principal{ID: "user-1", Email: "emp@rosterhub.test", Role: security.RoleEmployee})

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusForbidden, res.Code)
}

func TestGetSettingsAsAdmin(t *testing.T) {
	r, engine := newAdminRouter(t)
	engine.SignIn(security.Principal{ID: "user-1", Email: "admin@rosterhub.test", Role: security.RoleAdmin})

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/settings", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"session_timeout_minutes":30`)
}

func TestUpdateSettings(t *testing.T) {
	r, engine := newAdminRouter(t)
	engine.SignIn(security.Principal{ID: "user-1", Email: "admin@rosterhub.test", Role: security.RoleAdmin})

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(validSettingsBody))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	settings := engine.Settings()
	require.Equal(t, 45, settings.SessionTimeoutMinutes)
	require.Equal(t, 3, settings.MaxLoginAttempts)
	require.Equal(t, 10, settings.PasswordPolicy.MinLength)
	require.Equal(t, 120, settings.AuditRetentionDays)
}

func TestUpdateSettingsDeniedForEmployee(t *testing.T) {
	r, engine := newAdminRouter(t)
	engine.SignIn(security.Principal{ID: "user-1", Email: "emp@rosterhub.test", Role: security.RoleEmployee})

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(validSettingsBody))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	require.Equal(t, 30, engine.Settings().SessionTimeoutMinutes)
}

func TestUpdateSettingsValidation(t *testing.T) {
	r, engine := newAdminRouter(t)
	engine.SignIn(security.Principal{ID: "user-1", Email: "admin@rosterhub.test", Role: security.RoleAdmin})

	req := httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"session_timeout_minutes": 0}`))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)

	require.Equal(t, http.StatusBadRequest, res.Code)
}
