package security

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionState labels the lifecycle state of the security session.
type SessionState string

const (
	SessionNone    SessionState = "none"
	SessionActive  SessionState = "active"
	SessionWarning SessionState = "warning"
	SessionExpired SessionState = "expired"
)

// SessionInfo tracks the single security session opened per login. The
// ID is an opaque label derived at creation; it is never validated
// against a store and carries no cryptographic weight. The lifecycle
// drives timeout warnings and forced logout only; resource access is
// always decided by the permission checks, never by session state.
type SessionInfo struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsActive     bool      `json:"is_active"`
}

// SessionStatus is the snapshot surfaced to the UI layer.
type SessionStatus struct {
	State            SessionState `json:"state"`
	RemainingSeconds int          `json:"remaining_seconds"`
	Warning          bool         `json:"warning"`
}

func (e *Engine) newSessionLocked(userID string) *SessionInfo {
	now := e.now()
	return &SessionInfo{
		ID:           uuid.NewString(),
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(e.settings.SessionTimeout()),
		IsActive:     true,
	}
}

// Touch records user activity. Activity rolls the expiry window
// forward: both LastActivity and ExpiresAt are recomputed from now.
func (e *Engine) Touch() {
	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session
	if session == nil || !session.IsActive {
		return
	}
	now := e.now()
	session.LastActivity = now
	session.ExpiresAt = now.Add(e.settings.SessionTimeout())
	e.warned = false
}

// ExtendSession grants a fresh timeout window, returning the session
// from Warning to Active. It is the "stay signed in" choice offered by
// the timeout warning.
func (e *Engine) ExtendSession() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session
	if session == nil || !session.IsActive {
		return false
	}
	now := e.now()
	session.LastActivity = now
	session.ExpiresAt = now.Add(e.settings.SessionTimeout())
	e.warned = false
	return true
}

// Session returns a copy of the current session record, if any.
func (e *Engine) Session() (SessionInfo, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return SessionInfo{}, false
	}
	return *e.session, true
}

// CheckSessionValidity runs the periodic validity check. It expires the
// session when the absolute deadline has passed or when inactivity has
// exceeded the timeout, and raises the warning signal inside the
// warning window. It returns whether the session is still valid.
func (e *Engine) CheckSessionValidity() bool {
	e.mu.Lock()
	session := e.session
	if session == nil || !session.IsActive {
		e.mu.Unlock()
		return false
	}

	now := e.now()
	timeout := e.settings.SessionTimeout()
	var reason string
	switch {
	case !now.Before(session.ExpiresAt):
		reason = "session expired"
	case now.Sub(session.LastActivity) >= timeout:
		reason = "session inactive too long"
	}

	if reason != "" {
		session.IsActive = false
		published := e.appendLocked(EventInput{
			Type:     EventSecurityViolation,
			Action:   "session_expired",
			Severity: SeverityMedium,
			Details:  reason,
		})
		// The expired session is terminal; the principal must
		// re-authenticate to obtain a new one. The record is kept with
		// IsActive=false so the status endpoint can report the forced
		// logout to the UI.
		e.principal = nil
		e.warned = false
		forced := e.onForcedLogout
		e.mu.Unlock()

		e.publish(published)
		if forced != nil {
			forced(reason)
		}
		return false
	}

	remaining := session.ExpiresAt.Sub(now)
	var warn func(time.Duration)
	if remaining <= e.warningWindow && !e.warned {
		e.warned = true
		warn = e.onWarning
	}
	e.mu.Unlock()

	if warn != nil {
		warn(remaining)
	}
	return true
}

// SessionStatus reports the current state without side effects.
func (e *Engine) SessionStatus() SessionStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	session := e.session
	if session == nil {
		return SessionStatus{State: SessionNone}
	}
	if !session.IsActive {
		return SessionStatus{State: SessionExpired}
	}
	now := e.now()
	remaining := session.ExpiresAt.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	status := SessionStatus{
		State:            SessionActive,
		RemainingSeconds: int(remaining / time.Second),
	}
	if remaining <= e.warningWindow {
		status.State = SessionWarning
		status.Warning = true
	}
	return status
}

// Run drives the periodic session check and audit retention sweep until
// the context is cancelled. The interval keeps ticking across sessions;
// an expired session simply stops being affected by it.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.CheckSessionValidity()
			e.pruneExpiredEvents()
		}
	}
}

// pruneExpiredEvents enforces the audit retention window.
func (e *Engine) pruneExpiredEvents() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.settings.AuditRetentionDays <= 0 {
		return
	}
	e.log.prune(e.now().Add(-e.settings.AuditRetention()))
}
