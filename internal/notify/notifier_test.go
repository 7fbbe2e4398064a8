package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/rosterhub/rosterhub/internal/notify"
	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/jobs"
	_ "github.com/rosterhub/rosterhub/testing"
)

type captureEnqueuer struct {
	payloads []jobs.SendEmailPayload
}

func (c *captureEnqueuer) EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error) {
	c.payloads = append(c.payloads, payload)
	return &asynq.TaskInfo{}, nil
}

func sampleEvent(severity security.Severity) security.SecurityEvent {
	return security.SecurityEvent{
		ID:        "1718000000000-abcd1234",
		Timestamp: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
		UserID:    "user-1",
		UserEmail: "admin@rosterhub.test",
		UserRole:  security.RoleAdmin,
		Type:      security.EventSecurityViolation,
		Action:    "session_timeout",
		Severity:  severity,
	}
}

func TestHighSeverityEnqueuesAlert(t *testing.T) {
	enq := &captureEnqueuer{}
	n := notify.NewNotifier(enq, nil, "security@rosterhub.test")

	n.ObserveEvent(sampleEvent(security.SeverityHigh))
	n.ObserveEvent(sampleEvent(security.SeverityCritical))

	require.Len(t, enq.payloads, 2)
	require.Equal(t, "security@rosterhub.test", enq.payloads[0].To)
	require.Contains(t, enq.payloads[0].Subject, "high")
	require.Contains(t, enq.payloads[0].Body, "admin@rosterhub.test (admin)")
}

func TestLowSeverityIgnored(t *testing.T) {
	enq := &captureEnqueuer{}
	n := notify.NewNotifier(enq, nil, "security@rosterhub.test")

	n.ObserveEvent(sampleEvent(security.SeverityLow))
	n.ObserveEvent(sampleEvent(security.SeverityMedium))

	require.Empty(t, enq.payloads)
}

func TestMissingRecipientSkipsEnqueue(t *testing.T) {
	enq := &captureEnqueuer{}
	n := notify.NewNotifier(enq, nil, "")

	n.ObserveEvent(sampleEvent(security.SeverityCritical))

	require.Empty(t, enq.payloads)
}
