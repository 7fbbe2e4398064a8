package security

import (
	"fmt"
	"strings"
)

// DeniedError is returned by the imperative enforcement helpers. It
// carries the unmet requirement so callers can surface it.
type DeniedError struct {
	Permission string
	Resource   string
	Action     string
	Reason     string
}

func (e *DeniedError) Error() string {
	if e.Reason != "" {
		return "access denied: " + e.Reason
	}
	if e.Resource != "" {
		return fmt.Sprintf("access denied: %s on %s", e.Action, e.Resource)
	}
	return "access denied: missing permission " + e.Permission
}

// Criteria selects one way of deciding access for the declarative gate.
// Exactly one criterion is evaluated, in the order the fields are
// declared: custom check, single permission, permission list, single
// role, role list, minimum role, then resource/action. Supplying no
// criterion at all allows access.
type Criteria struct {
	// Check is an arbitrary predicate over the authenticated principal.
	Check func(principal Principal) bool
	// Permission requires a single permission.
	Permission string
	// Permissions requires any of the listed permissions, or all of
	// them when RequireAll is set.
	Permissions []string
	RequireAll  bool
	// Role requires an exact role.
	Role Role
	// Roles requires any of the listed roles.
	Roles []Role
	// MinRole requires at least the given role rank.
	MinRole Role
	// Resource/Action (with optional OwnerID) route the decision
	// through CanAccessResource.
	Resource string
	Action   string
	OwnerID  string
}

// Allow evaluates the gate criteria against the current principal.
// Every denial is recorded as a low-severity permission_denied event
// naming the unmet requirement.
func (e *Engine) Allow(criteria Criteria) bool {
	allowed, reason := e.evaluate(criteria)
	if !allowed {
		e.Append(EventInput{
			Type:     EventPermissionDenied,
			Action:   "gate_denied",
			Severity: SeverityLow,
			Details:  reason,
		})
	}
	return allowed
}

func (e *Engine) evaluate(criteria Criteria) (bool, string) {
	switch {
	case criteria.Check != nil:
		principal, ok := e.Principal()
		if !ok {
			return false, "custom check requires authentication"
		}
		if !criteria.Check(principal) {
			return false, "custom check failed"
		}
		return true, ""
	case criteria.Permission != "":
		if !e.HasPermission(criteria.Permission) {
			return false, "missing permission " + criteria.Permission
		}
		return true, ""
	case len(criteria.Permissions) > 0:
		if criteria.RequireAll {
			if !e.HasAllPermissions(criteria.Permissions...) {
				return false, "missing one of required permissions " + strings.Join(criteria.Permissions, ", ")
			}
			return true, ""
		}
		if !e.HasAnyPermission(criteria.Permissions...) {
			return false, "missing any of permissions " + strings.Join(criteria.Permissions, ", ")
		}
		return true, ""
	case criteria.Role != "":
		principal, ok := e.Principal()
		if !ok || principal.Role != criteria.Role {
			return false, fmt.Sprintf("requires role %s", criteria.Role)
		}
		return true, ""
	case len(criteria.Roles) > 0:
		principal, ok := e.Principal()
		if ok {
			for _, role := range criteria.Roles {
				if principal.Role == role {
					return true, ""
				}
			}
		}
		return false, fmt.Sprintf("requires one of roles %v", criteria.Roles)
	case criteria.MinRole != "":
		principal, ok := e.Principal()
		if !ok || !RoleAtLeast(principal.Role, criteria.MinRole) {
			return false, fmt.Sprintf("requires at least role %s", criteria.MinRole)
		}
		return true, ""
	case criteria.Resource != "":
		if !e.CanAccessResource(criteria.Resource, criteria.Action, criteria.OwnerID) {
			return false, fmt.Sprintf("cannot %s %s", criteria.Action, criteria.Resource)
		}
		return true, ""
	default:
		// No criterion supplied: allow.
		return true, ""
	}
}

// EnforcePermission returns a DeniedError when the principal lacks the
// permission. The denial is logged like any other.
func (e *Engine) EnforcePermission(perm string) error {
	if e.HasPermission(perm) {
		return nil
	}
	e.Append(EventInput{
		Type:     EventPermissionDenied,
		Action:   "enforce_permission",
		Severity: SeverityLow,
		Details:  "missing permission " + perm,
	})
	return &DeniedError{Permission: perm}
}

// EnforceAnyPermission returns a DeniedError when the principal holds
// none of the permissions.
func (e *Engine) EnforceAnyPermission(perms ...string) error {
	if e.HasAnyPermission(perms...) {
		return nil
	}
	joined := strings.Join(perms, ", ")
	e.Append(EventInput{
		Type:     EventPermissionDenied,
		Action:   "enforce_permission",
		Severity: SeverityLow,
		Details:  "missing any of permissions " + joined,
	})
	return &DeniedError{Permission: joined}
}

// EnforceResourceAccess returns a DeniedError when the resource/action
// decision denies access.
func (e *Engine) EnforceResourceAccess(resource, action, ownerID string) error {
	if e.CanAccessResource(resource, action, ownerID) {
		return nil
	}
	e.Append(EventInput{
		Type:       EventPermissionDenied,
		Action:     "enforce_resource_access",
		Resource:   resource,
		ResourceID: ownerID,
		Severity:   SeverityLow,
		Details:    fmt.Sprintf("cannot %s %s", action, resource),
	})
	return &DeniedError{Resource: resource, Action: action}
}
