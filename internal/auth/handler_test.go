package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rosterhub/rosterhub/internal/auth"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/shared"
	_ "github.com/rosterhub/rosterhub/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func testUser(t *testing.T, password string) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &auth.User{
		ID:           "user-1",
		Email:        "alex@rosterhub.test",
		Name:         "Alex",
		PasswordHash: string(hash),
		Role:         security.RoleEmployee,
		IsActive:     true,
	}
}

type authFixture struct {
	router  http.Handler
	engine  *security.Engine
	manager *shared.SessionManager
}

func newAuthFixture(t *testing.T, repo auth.Repository) *authFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	engine := security.NewEngine(security.Config{})
	service := auth.NewService(repo, auth.NewLockout(client), engine)
	handler := auth.NewHandler(nil, service, engine, manager, csrf)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := manager.Load(req.Context(), req)
			if err != nil {
				t.Fatalf("load session: %v", err)
			}
			ctx := shared.ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
			if err := manager.Commit(ctx, w, sess); err != nil {
				t.Fatalf("commit session: %v", err)
			}
		})
	})
	handler.MountRoutes(r)

	return &authFixture{router: r, engine: engine, manager: manager}
}

func (f *authFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func TestLoginSuccess(t *testing.T) {
	user := testUser(t, "password123")
	f := newAuthFixture(t, &stubRepo{user: user})

	res := f.do(http.MethodPost, "/login", `{"email":"alex@rosterhub.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"csrf_token"`)
	require.Contains(t, res.Body.String(), `"employee"`)

	principal, ok := f.engine.Principal()
	require.True(t, ok)
	require.Equal(t, "user-1", principal.ID)
	require.Equal(t, security.RoleEmployee, principal.Role)

	status := f.engine.SessionStatus()
	require.Equal(t, security.SessionActive, status.State)
}

func TestLoginWrongPassword(t *testing.T) {
	user := testUser(t, "password123")
	f := newAuthFixture(t, &stubRepo{user: user})

	res := f.do(http.MethodPost, "/login", `{"email":"alex@rosterhub.test","password":"wrongpassword"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	_, ok := f.engine.Principal()
	require.False(t, ok)
}

func TestLoginUnknownAccount(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res := f.do(http.MethodPost, "/login", `{"email":"ghost@rosterhub.test","password":"password123"}`)
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLoginValidation(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res := f.do(http.MethodPost, "/login", `{"email":"not-an-email","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutClearsPrincipal(t *testing.T) {
	user := testUser(t, "password123")
	f := newAuthFixture(t, &stubRepo{user: user})

	res := f.do(http.MethodPost, "/login", `{"email":"alex@rosterhub.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	_, ok := f.engine.Principal()
	require.False(t, ok)
	require.Equal(t, security.SessionNone, f.engine.SessionStatus().State)
}

func TestSessionStatusWithoutLogin(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res := f.do(http.MethodGet, "/session", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"none"`)
}

func TestSessionActivityRollsWindow(t *testing.T) {
	user := testUser(t, "password123")
	f := newAuthFixture(t, &stubRepo{user: user})

	res := f.do(http.MethodPost, "/login", `{"email":"alex@rosterhub.test","password":"password123"}`)
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodPost, "/session/activity", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"active"`)
}

func TestSessionExtendWithoutSession(t *testing.T) {
	f := newAuthFixture(t, &stubRepo{})

	res := f.do(http.MethodPost, "/session/extend", "")
	require.Equal(t, http.StatusConflict, res.Code)
}
