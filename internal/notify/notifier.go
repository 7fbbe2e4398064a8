package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/jobs"
)

// Enqueuer submits alert emails to the background queue.
type Enqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// Notifier forwards high and critical security events to the alert
// mailbox via the job queue. It implements security.EventSink.
type Notifier struct {
	enqueuer Enqueuer
	logger   *slog.Logger
	to       string
	timeout  time.Duration
}

// NewNotifier constructs a Notifier that mails alerts to the given
// address.
func NewNotifier(enqueuer Enqueuer, logger *slog.Logger, to string) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{enqueuer: enqueuer, logger: logger, to: to, timeout: 5 * time.Second}
}

// ObserveEvent enqueues an alert email for severe events. Low and
// medium events stay in the log only.
func (n *Notifier) ObserveEvent(event security.SecurityEvent) {
	if event.Severity != security.SeverityHigh && event.Severity != security.SeverityCritical {
		return
	}
	if n.to == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	payload := jobs.SendEmailPayload{
		To:      n.to,
		Subject: fmt.Sprintf("[RosterHub] %s security event: %s", event.Severity, event.Type),
		Body:    security.FormatEvent(event),
	}
	if _, err := n.enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
		n.logger.Warn("enqueue security alert",
			slog.String("event_id", event.ID),
			slog.Any("error", err),
		)
	}
}

var _ security.EventSink = (*Notifier)(nil)
