package security

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// PasswordPolicy describes password composition requirements.
type PasswordPolicy struct {
	MinLength           int  `json:"min_length"`
	RequireUppercase    bool `json:"require_uppercase"`
	RequireNumbers      bool `json:"require_numbers"`
	RequireSpecialChars bool `json:"require_special_chars"`
}

// Settings holds process-wide security configuration. It is replaced
// wholesale through Engine.UpdateSettings, never mutated field by field.
type Settings struct {
	SessionTimeoutMinutes  int            `json:"session_timeout_minutes"`
	MaxLoginAttempts       int            `json:"max_login_attempts"`
	LockoutDurationMinutes int            `json:"lockout_duration_minutes"`
	PasswordPolicy         PasswordPolicy `json:"password_policy"`
	AuditRetentionDays     int            `json:"audit_retention_days"`
}

// DefaultSettings returns the settings seeded at startup.
func DefaultSettings() Settings {
	return Settings{
		SessionTimeoutMinutes:  30,
		MaxLoginAttempts:       5,
		LockoutDurationMinutes: 15,
		PasswordPolicy: PasswordPolicy{
			MinLength:        8,
			RequireUppercase: true,
			RequireNumbers:   true,
		},
		AuditRetentionDays: 90,
	}
}

// SessionTimeout returns the session timeout as a duration.
func (s Settings) SessionTimeout() time.Duration {
	return time.Duration(s.SessionTimeoutMinutes) * time.Minute
}

// LockoutDuration returns the login lockout window as a duration.
func (s Settings) LockoutDuration() time.Duration {
	return time.Duration(s.LockoutDurationMinutes) * time.Minute
}

// AuditRetention returns the audit retention window as a duration.
func (s Settings) AuditRetention() time.Duration {
	return time.Duration(s.AuditRetentionDays) * 24 * time.Hour
}

// ValidatePassword checks a candidate password against the policy.
func (s Settings) ValidatePassword(password string) error {
	policy := s.PasswordPolicy
	if len(password) < policy.MinLength {
		return fmt.Errorf("password must be at least %d characters", policy.MinLength)
	}
	if policy.RequireUppercase && !strings.ContainsFunc(password, unicode.IsUpper) {
		return fmt.Errorf("password must contain an uppercase letter")
	}
	if policy.RequireNumbers && !strings.ContainsFunc(password, unicode.IsDigit) {
		return fmt.Errorf("password must contain a number")
	}
	if policy.RequireSpecialChars && !strings.ContainsFunc(password, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) {
		return fmt.Errorf("password must contain a special character")
	}
	return nil
}
