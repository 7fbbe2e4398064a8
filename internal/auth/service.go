package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rosterhub/rosterhub/internal/security"
	"github.com/rosterhub/rosterhub/internal/shared"
)

// Service wraps authentication business rules. It is the identity
// collaborator of the security engine: it produces the authenticated
// principal but makes no access decisions itself.
type Service struct {
	repo    Repository
	lockout *Lockout
	engine  *security.Engine
}

// NewService constructs a new Service.
func NewService(repo Repository, lockout *Lockout, engine *security.Engine) *Service {
	return &Service{repo: repo, lockout: lockout, engine: engine}
}

// Authenticate validates email/password credentials, enforcing the
// configured lockout policy.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if s.lockout != nil {
		locked, err := s.lockout.Locked(ctx, email)
		if err == nil && locked {
			return nil, shared.ErrAccountLocked
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		s.recordFailure(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.recordFailure(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, email)
		return nil, shared.ErrInvalidCredentials
	}

	if s.lockout != nil {
		_ = s.lockout.Reset(ctx, email)
	}
	return user, nil
}

func (s *Service) recordFailure(ctx context.Context, email string) {
	if s.lockout == nil {
		return
	}
	settings := s.engine.Settings()
	_, _ = s.lockout.RecordFailure(ctx, email, settings.MaxLoginAttempts, settings.LockoutDuration())
}

// RegisterSession persists the portal session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a portal session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
