package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType classifies a security event.
type EventType string

const (
	EventLogin             EventType = "login"
	EventLogout            EventType = "logout"
	EventPermissionDenied  EventType = "permission_denied"
	EventDataAccess        EventType = "data_access"
	EventDataModification  EventType = "data_modification"
	EventAdminAction       EventType = "admin_action"
	EventSecurityViolation EventType = "security_violation"
)

// Severity grades how serious a security event is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DefaultAuditCapacity bounds the in-memory event log.
const DefaultAuditCapacity = 1000

// EventInput carries the caller-supplied portion of a security event.
// Identity and timing are filled in by the engine on append.
type EventInput struct {
	Type       EventType
	Action     string
	Resource   string
	ResourceID string
	Severity   Severity
	Details    string
}

// SecurityEvent is an immutable audit record. Events are never updated
// after creation and are only evicted by the capacity bound.
type SecurityEvent struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	UserRole   Role      `json:"user_role"`
	Type       EventType `json:"type"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Severity   Severity  `json:"severity"`
	Details    string    `json:"details,omitempty"`
}

// EventFilter selects events by exact field match. Zero-valued fields
// are ignored; all supplied fields must match (logical AND).
type EventFilter struct {
	UserID   string
	Type     EventType
	Severity Severity
	Resource string
	Action   string
}

// EventSink observes appended events, e.g. for metrics or alerting.
// Sinks are notified best-effort and must not call back into the engine.
type EventSink interface {
	ObserveEvent(event SecurityEvent)
}

// eventLog is the bounded, newest-first event store. Callers hold the
// engine lock; the log itself does no locking.
type eventLog struct {
	capacity int
	events   []SecurityEvent
}

func newEventLog(capacity int) *eventLog {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &eventLog{capacity: capacity}
}

// append inserts at the head, evicting the oldest entry past capacity.
func (l *eventLog) append(event SecurityEvent) {
	l.events = append([]SecurityEvent{event}, l.events...)
	if len(l.events) > l.capacity {
		l.events = l.events[:l.capacity]
	}
}

// match reports whether the event satisfies every non-zero filter field.
func (f EventFilter) match(event SecurityEvent) bool {
	if f.UserID != "" && event.UserID != f.UserID {
		return false
	}
	if f.Type != "" && event.Type != f.Type {
		return false
	}
	if f.Severity != "" && event.Severity != f.Severity {
		return false
	}
	if f.Resource != "" && event.Resource != f.Resource {
		return false
	}
	if f.Action != "" && event.Action != f.Action {
		return false
	}
	return true
}

// snapshot returns matching events, newest first.
func (l *eventLog) snapshot(filter EventFilter) []SecurityEvent {
	result := make([]SecurityEvent, 0, len(l.events))
	for _, event := range l.events {
		if filter.match(event) {
			result = append(result, event)
		}
	}
	return result
}

// prune drops events older than the cutoff.
func (l *eventLog) prune(cutoff time.Time) {
	kept := l.events[:0]
	for _, event := range l.events {
		if !event.Timestamp.Before(cutoff) {
			kept = append(kept, event)
		}
	}
	l.events = kept
}

func (l *eventLog) len() int {
	return len(l.events)
}

// newEventID derives an identifier from creation time plus a random
// suffix. It is a display label, not a secret.
func newEventID(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", at.UnixMilli(), suffix)
}

// FormatEvent renders the one-line display form used by the audit view:
// "[ISO-timestamp] SEVERITY: email (role) - action on resource (ID: x)".
func FormatEvent(event SecurityEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s (%s) - %s",
		event.Timestamp.UTC().Format(time.RFC3339),
		strings.ToUpper(string(event.Severity)),
		event.UserEmail,
		event.UserRole,
		event.Action,
	)
	if event.Resource != "" {
		b.WriteString(" on " + event.Resource)
		if event.ResourceID != "" {
			fmt.Fprintf(&b, " (ID: %s)", event.ResourceID)
		}
	}
	return b.String()
}
