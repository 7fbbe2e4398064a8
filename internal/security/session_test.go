package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInOpensSession(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	session := engine.SignIn(principalFor(RoleEmployee))

	require.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.UserID)
	assert.True(t, session.IsActive)
	assert.Equal(t, clock.Now(), session.CreatedAt)
	assert.Equal(t, clock.Now().Add(30*time.Minute), session.ExpiresAt)

	events := queryAsPresident(engine)
	require.NotEmpty(t, events)
	assert.Equal(t, EventLogin, events[0].Type)
}

func TestSessionValidUntilTimeout(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))
	engine.ExtendSession()

	clock.Advance(30*time.Minute - time.Second)
	assert.True(t, engine.CheckSessionValidity())

	clock.Advance(time.Second)
	assert.False(t, engine.CheckSessionValidity(), "first check at t0+T must expire the session")
}

func TestTouchRollsExpiryForward(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))

	clock.Advance(20 * time.Minute)
	engine.Touch()
	session, ok := engine.Session()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), session.LastActivity)
	assert.Equal(t, clock.Now().Add(30*time.Minute), session.ExpiresAt)

	// Without the touch the session would have expired here.
	clock.Advance(25 * time.Minute)
	assert.True(t, engine.CheckSessionValidity())
}

func TestWarningThreshold(t *testing.T) {
	var warnings []time.Duration
	engine, clock := newTestEngine(t, Config{
		OnWarning: func(remaining time.Duration) {
			warnings = append(warnings, remaining)
		},
	})
	engine.SignIn(principalFor(RoleEmployee))

	// One second before the warning window opens: no warning.
	clock.Advance(25*time.Minute - time.Second)
	require.True(t, engine.CheckSessionValidity())
	assert.Empty(t, warnings)
	assert.Equal(t, SessionActive, engine.SessionStatus().State)

	// One second into the window: warning fires with the remainder.
	clock.Advance(2 * time.Second)
	require.True(t, engine.CheckSessionValidity())
	require.Len(t, warnings, 1)
	assert.Equal(t, 5*time.Minute-time.Second, warnings[0])

	status := engine.SessionStatus()
	assert.Equal(t, SessionWarning, status.State)
	assert.True(t, status.Warning)

	// The warning is raised once per window, not on every tick.
	clock.Advance(30 * time.Second)
	require.True(t, engine.CheckSessionValidity())
	assert.Len(t, warnings, 1)
}

func TestExtendReturnsToActive(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))

	clock.Advance(26 * time.Minute)
	require.True(t, engine.CheckSessionValidity())
	require.Equal(t, SessionWarning, engine.SessionStatus().State)

	require.True(t, engine.ExtendSession())
	status := engine.SessionStatus()
	assert.Equal(t, SessionActive, status.State)
	assert.Equal(t, int(30*time.Minute/time.Second), status.RemainingSeconds)
}

func TestInactivityExpiryRunsInParallel(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))

	// Stretch ExpiresAt past the inactivity horizon, then let activity
	// go stale: the inactivity test expires the session on its own.
	engine.mu.Lock()
	engine.session.ExpiresAt = clock.Now().Add(2 * time.Hour)
	engine.mu.Unlock()

	clock.Advance(31 * time.Minute)
	assert.False(t, engine.CheckSessionValidity())
}

func TestForcedExpiryLogsViolationAndSignals(t *testing.T) {
	var reasons []string
	engine, clock := newTestEngine(t, Config{
		OnForcedLogout: func(reason string) {
			reasons = append(reasons, reason)
		},
	})
	engine.SignIn(principalFor(RoleEmployee))

	clock.Advance(31 * time.Minute)
	require.False(t, engine.CheckSessionValidity())
	require.Equal(t, []string{"session expired"}, reasons)

	// The principal is gone; the expired record remains for status.
	_, authenticated := engine.Principal()
	assert.False(t, authenticated)
	session, ok := engine.Session()
	require.True(t, ok)
	assert.False(t, session.IsActive)
	assert.Equal(t, SessionExpired, engine.SessionStatus().State)

	events := queryAsPresident(engine)
	require.NotEmpty(t, events)
	assert.Equal(t, EventSecurityViolation, events[0].Type)
	assert.Equal(t, SeverityMedium, events[0].Severity)
	assert.Equal(t, "session_expired", events[0].Action)
}

func TestExpiredSessionIsTerminal(t *testing.T) {
	engine, clock := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))

	clock.Advance(31 * time.Minute)
	require.False(t, engine.CheckSessionValidity())

	// Neither activity nor extension revives an expired session.
	engine.Touch()
	assert.False(t, engine.ExtendSession())
	assert.False(t, engine.CheckSessionValidity())

	// Re-authentication opens a brand new session.
	first, _ := engine.Session()
	second := engine.SignIn(principalFor(RoleEmployee))
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.IsActive)
}

func TestSignOutDestroysSession(t *testing.T) {
	engine, _ := newTestEngine(t, Config{})
	engine.SignIn(principalFor(RoleEmployee))
	engine.SignOut()

	_, ok := engine.Session()
	assert.False(t, ok)
	assert.Equal(t, SessionNone, engine.SessionStatus().State)
}

func TestSessionTimeoutFollowsSettings(t *testing.T) {
	settings := DefaultSettings()
	settings.SessionTimeoutMinutes = 10
	engine, clock := newTestEngine(t, Config{Settings: settings})
	engine.SignIn(principalFor(RoleEmployee))

	clock.Advance(10*time.Minute - time.Second)
	assert.True(t, engine.CheckSessionValidity())
	clock.Advance(time.Second)
	assert.False(t, engine.CheckSessionValidity())
}
