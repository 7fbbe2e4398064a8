package security

import (
	"log/slog"
	"sync"
	"time"
)

// Resources understood by CanAccessResource.
const (
	ResourceUser         = "user"
	ResourceSchedule     = "schedule"
	ResourceLeaveRequest = "leave_request"
	ResourceGroup        = "group"
	ResourceEquipment    = "equipment"
	ResourceAuditLog     = "audit_log"
	ResourceSettings     = "security_settings"
)

// Actions understood by CanAccessResource.
const (
	ActionRead        = "read"
	ActionWrite       = "write"
	ActionDelete      = "delete"
	ActionManageRoles = "manage_roles"
	ActionApprove     = "approve"
)

// Principal is the authenticated user record supplied by the identity
// collaborator. The engine never produces one itself.
type Principal struct {
	ID    string
	Email string
	Role  Role
}

// Config collects dependencies for constructing an Engine.
type Config struct {
	Settings      Settings
	AuditCapacity int
	// WarningWindow is how long before expiry the session enters the
	// warning state. Defaults to 5 minutes.
	WarningWindow time.Duration
	// CheckInterval is the cadence of the periodic validity check run by
	// Run. Defaults to 30 seconds.
	CheckInterval time.Duration
	Logger        *slog.Logger
	// Clock overrides time.Now, used by tests.
	Clock func() time.Time
	Sinks []EventSink
	// OnWarning receives the remaining session lifetime when the warning
	// window is entered.
	OnWarning func(remaining time.Duration)
	// OnForcedLogout receives a human-readable reason whenever a session
	// is forcibly expired.
	OnForcedLogout func(reason string)
}

// Engine is the authorization and session-trust subsystem. It owns the
// role-permission registry view, the current principal, the security
// settings, the session record and the bounded event log.
//
// The engine serves the single signed-in principal of the portal
// process; concurrent HTTP handlers serialize on its lock, which also
// guarantees that activity tracking wins over a periodic expiry check
// scheduled for the same instant.
type Engine struct {
	mu             sync.Mutex
	settings       Settings
	principal      *Principal
	session        *SessionInfo
	warned         bool
	log            *eventLog
	warningWindow  time.Duration
	checkInterval  time.Duration
	logger         *slog.Logger
	now            func() time.Time
	sinks          []EventSink
	onWarning      func(remaining time.Duration)
	onForcedLogout func(reason string)
}

// NewEngine constructs an Engine seeded with the given configuration.
func NewEngine(cfg Config) *Engine {
	settings := cfg.Settings
	if settings == (Settings{}) {
		settings = DefaultSettings()
	}
	warningWindow := cfg.WarningWindow
	if warningWindow <= 0 {
		warningWindow = 5 * time.Minute
	}
	checkInterval := cfg.CheckInterval
	if checkInterval <= 0 {
		checkInterval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Engine{
		settings:       settings,
		log:            newEventLog(cfg.AuditCapacity),
		warningWindow:  warningWindow,
		checkInterval:  checkInterval,
		logger:         logger,
		now:            now,
		sinks:          cfg.Sinks,
		onWarning:      cfg.OnWarning,
		onForcedLogout: cfg.OnForcedLogout,
	}
}

// SignIn binds the authenticated principal to the engine and opens a
// fresh session. A previous session, if any, is discarded.
func (e *Engine) SignIn(principal Principal) SessionInfo {
	e.mu.Lock()
	e.principal = &principal
	e.session = e.newSessionLocked(principal.ID)
	e.warned = false
	published := e.appendLocked(EventInput{
		Type:     EventLogin,
		Action:   "login",
		Severity: SeverityLow,
	})
	session := *e.session
	e.mu.Unlock()

	e.publish(published)
	return session
}

// SignOut records the logout and clears the principal and session.
func (e *Engine) SignOut() {
	e.mu.Lock()
	published := e.appendLocked(EventInput{
		Type:     EventLogout,
		Action:   "logout",
		Severity: SeverityLow,
	})
	e.principal = nil
	e.session = nil
	e.warned = false
	e.mu.Unlock()

	e.publish(published)
}

// Principal returns the currently authenticated principal, if any.
func (e *Engine) Principal() (Principal, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.principal == nil {
		return Principal{}, false
	}
	return *e.principal, true
}

// HasPermission reports whether the current principal holds the
// permission. It is false for every permission when unauthenticated.
func (e *Engine) HasPermission(perm string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasPermissionLocked(perm)
}

// HasAnyPermission reports whether the principal holds at least one of
// the permissions.
func (e *Engine) HasAnyPermission(perms ...string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, perm := range perms {
		if e.hasPermissionLocked(perm) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the principal holds every one of
// the permissions.
func (e *Engine) HasAllPermissions(perms ...string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.principal == nil {
		return false
	}
	for _, perm := range perms {
		if !e.hasPermissionLocked(perm) {
			return false
		}
	}
	return true
}

func (e *Engine) hasPermissionLocked(perm string) bool {
	if e.principal == nil {
		return false
	}
	return Resolve(e.principal.Role).Has(perm)
}

// CanAccessResource is the central access dispatcher. The president
// role short-circuits to true; every other decision goes through the
// per-resource rule table. Unknown resources and actions are denied.
// The decision itself has no side effects; callers log denials.
func (e *Engine) CanAccessResource(resource, action, ownerID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canAccessLocked(resource, action, ownerID)
}

func (e *Engine) canAccessLocked(resource, action, ownerID string) bool {
	principal := e.principal
	if principal == nil {
		return false
	}
	if principal.Role == RolePresident {
		return true
	}
	granted := Resolve(principal.Role)
	owner := ownerID != "" && ownerID == principal.ID

	switch resource {
	case ResourceUser:
		switch action {
		case ActionRead:
			return granted.Has(PermUsersRead)
		case ActionWrite:
			// Users may edit their own record without users:write.
			return granted.Has(PermUsersWrite) || owner
		case ActionDelete:
			return granted.Has(PermUsersDelete)
		case ActionManageRoles:
			return granted.Has(PermUsersManageRoles)
		}
	case ResourceSchedule:
		switch action {
		case ActionRead:
			return granted.Has(PermSchedulesRead) && (granted.Has(PermSchedulesReadAll) || owner)
		case ActionWrite:
			// Owning a schedule does not grant write access; the flat
			// schedule model requires manage_others for any mutation.
			return granted.Has(PermSchedulesWrite) && granted.Has(PermSchedulesManageOthers)
		case ActionDelete:
			return granted.Has(PermSchedulesDelete) && granted.Has(PermSchedulesManageOthers)
		}
	case ResourceLeaveRequest:
		switch action {
		case ActionRead:
			return granted.Has(PermLeaveRead) && (granted.Has(PermLeaveReadAll) || owner)
		case ActionWrite:
			return granted.Has(PermLeaveWrite) || owner
		case ActionApprove:
			return granted.Has(PermLeaveApprove)
		}
	case ResourceGroup:
		switch action {
		case ActionRead:
			return granted.Has(PermGroupsRead)
		case ActionWrite:
			return granted.Has(PermGroupsWrite)
		case ActionDelete:
			return granted.Has(PermGroupsDelete)
		}
	case ResourceEquipment:
		switch action {
		case ActionRead:
			return granted.Has(PermEquipmentRead)
		case ActionWrite:
			return granted.Has(PermEquipmentWrite)
		case ActionDelete:
			return granted.Has(PermEquipmentDelete)
		}
	}
	return false
}

// DataAccess returns the data visibility profile of the current
// principal. The zero profile is returned when unauthenticated.
func (e *Engine) DataAccess() DataAccess {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.principal == nil {
		return DataAccess{}
	}
	return Resolve(e.principal.Role).DataAccess
}

// Append records a security event attributed to the current principal.
// Without an authenticated principal the call is a no-op: events cannot
// be attributed to nobody. Logging is best-effort and never fails the
// triggering operation.
func (e *Engine) Append(input EventInput) {
	e.mu.Lock()
	published := e.appendLocked(input)
	e.mu.Unlock()

	e.publish(published)
}

// appendLocked builds and stores the event. It returns the stored event
// for sink notification after the lock is released, or nil when the
// append was skipped.
func (e *Engine) appendLocked(input EventInput) *SecurityEvent {
	if e.principal == nil {
		return nil
	}
	now := e.now()
	event := SecurityEvent{
		ID:         newEventID(now),
		Timestamp:  now,
		UserID:     e.principal.ID,
		UserEmail:  e.principal.Email,
		UserRole:   e.principal.Role,
		Type:       input.Type,
		Action:     input.Action,
		Resource:   input.Resource,
		ResourceID: input.ResourceID,
		Severity:   input.Severity,
		Details:    input.Details,
	}
	e.log.append(event)
	return &event
}

func (e *Engine) publish(event *SecurityEvent) {
	if event == nil {
		return
	}
	for _, sink := range e.sinks {
		sink.ObserveEvent(*event)
	}
}

// Query returns events matching the filter, newest first. Reading the
// log requires admin:audit_logs; a denied read is itself logged and
// yields an empty result rather than an error.
func (e *Engine) Query(filter EventFilter) []SecurityEvent {
	e.mu.Lock()
	if !e.hasPermissionLocked(PermAdminAuditLogs) {
		published := e.appendLocked(EventInput{
			Type:     EventPermissionDenied,
			Action:   "read_audit_logs",
			Resource: ResourceAuditLog,
			Severity: SeverityLow,
			Details:  "missing permission " + PermAdminAuditLogs,
		})
		e.mu.Unlock()
		e.publish(published)
		return []SecurityEvent{}
	}
	events := e.log.snapshot(filter)
	e.mu.Unlock()
	return events
}

// EventCount returns the number of retained events.
func (e *Engine) EventCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.len()
}

// Settings returns the current security settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UpdateSettings replaces the security settings wholesale. The caller
// must hold admin:system_settings; a rejected update leaves the
// settings untouched and records a permission_denied event.
func (e *Engine) UpdateSettings(next Settings) error {
	e.mu.Lock()
	if !e.hasPermissionLocked(PermAdminSystemSettings) {
		published := e.appendLocked(EventInput{
			Type:     EventPermissionDenied,
			Action:   "update_security_settings",
			Resource: ResourceSettings,
			Severity: SeverityMedium,
			Details:  "missing permission " + PermAdminSystemSettings,
		})
		e.mu.Unlock()
		e.publish(published)
		return &DeniedError{Permission: PermAdminSystemSettings, Resource: ResourceSettings, Action: ActionWrite}
	}
	e.settings = next
	published := e.appendLocked(EventInput{
		Type:     EventAdminAction,
		Action:   "update_security_settings",
		Resource: ResourceSettings,
		Severity: SeverityMedium,
	})
	e.mu.Unlock()
	e.publish(published)
	return nil
}
