// Package access decides who may read, write and delete what in the archive.
//
// The decision functions are pure and fail closed: a missing principal,
// department, owner or an unknown role always denies. Resolver wraps them
// with audit logging and metrics for enforcing call sites.
package access

import (
	"github.com/mwantia/docarchive/pkg/apperror"
	"github.com/mwantia/docarchive/pkg/db/models"
	"github.com/mwantia/docarchive/pkg/log"
	"github.com/mwantia/docarchive/pkg/metrics"
)

type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"

	// ActionProvision creates the folder structure of a professor.
	ActionProvision Action = "provision"
)

// Decision holds the three independent flags for one target.
type Decision struct {
	CanRead   bool `json:"canRead"`
	CanWrite  bool `json:"canWrite"`
	CanDelete bool `json:"canDelete"`
}

// Evaluate computes all flags for user on t without logging.
func Evaluate(user *models.User, t Target) Decision {
	read, _ := CanRead(user, t)
	write, _ := CanWrite(user, t)
	del, _ := CanDelete(user, t)
	return Decision{CanRead: read, CanWrite: write, CanDelete: del}
}

// CanRead reports whether user may see t, with the reason for a denial.
func CanRead(user *models.User, t Target) (bool, string) {
	if user == nil {
		return false, "no principal"
	}

	switch user.Role {
	case models.RoleAdmin, models.RoleDeanship:
		return true, ""
	case models.RoleHOD, models.RoleProfessor:
	default:
		return false, "unrecognized role"
	}

	if user.DepartmentID == nil {
		return false, "user has no department"
	}

	// Above professor level the caller filters listings by department.
	if t.Level < LevelProfessor {
		return true, ""
	}

	if t.Owner == nil {
		return false, "target has no owner"
	}
	if t.Owner.DepartmentID == nil {
		return false, "target owner has no department"
	}
	if *t.Owner.DepartmentID != *user.DepartmentID {
		return false, "target belongs to another department"
	}

	return true, ""
}

// CanWrite requires read access, the PROFESSOR role, course granularity or
// finer and ownership of the target.
func CanWrite(user *models.User, t Target) (bool, string) {
	if ok, reason := CanRead(user, t); !ok {
		return false, reason
	}
	if user.Role != models.RoleProfessor {
		return false, "role " + string(user.Role) + " is read-only"
	}
	if t.Level < LevelCourse {
		return false, "target is above course level"
	}
	if t.Owner == nil || t.Owner.ID != user.ID {
		return false, "target is owned by another professor"
	}
	return true, ""
}

// CanDelete additionally requires the target to be a single file.
func CanDelete(user *models.User, t Target) (bool, string) {
	if ok, reason := CanWrite(user, t); !ok {
		return false, reason
	}
	if t.Level != LevelFile {
		return false, "only files can be deleted"
	}
	return true, ""
}

// CanProvision allows admins to provision any professor and professors to
// provision themselves. t.Owner is the professor being provisioned.
func CanProvision(user *models.User, t Target) (bool, string) {
	if user == nil {
		return false, "no principal"
	}
	if t.Owner == nil {
		return false, "target has no owner"
	}
	switch user.Role {
	case models.RoleAdmin:
		return true, ""
	case models.RoleProfessor:
		if t.Owner.ID == user.ID {
			return true, ""
		}
		return false, "professors may only provision their own folders"
	}
	return false, "role " + string(user.Role) + " may not provision folders"
}

// Resolver enforces decisions, logging and counting every denial.
type Resolver struct {
	log     log.LoggerService
	metrics *metrics.Metrics
}

func NewResolver(logger log.LoggerService, m *metrics.Metrics) *Resolver {
	return &Resolver{
		log:     logger,
		metrics: m,
	}
}

// Authorize returns an *apperror.UnauthorizedError when user may not
// perform action on t.
func (r *Resolver) Authorize(action Action, user *models.User, t Target) error {
	var (
		ok     bool
		reason string
	)

	switch action {
	case ActionRead:
		ok, reason = CanRead(user, t)
	case ActionWrite:
		ok, reason = CanWrite(user, t)
	case ActionDelete:
		ok, reason = CanDelete(user, t)
	case ActionProvision:
		ok, reason = CanProvision(user, t)
	default:
		reason = "unknown action"
	}

	if ok {
		return nil
	}

	r.deny(action, user, t, reason)
	return apperror.Unauthorized(string(action), t.String(), reason)
}

func (r *Resolver) deny(action Action, user *models.User, t Target, reason string) {
	r.metrics.RecordDenial(string(action))

	if user == nil {
		r.log.Warn("Denied %s on %s for anonymous principal: %s", action, t, reason)
		return
	}
	r.log.Warn("Denied %s on %s for user #%d (%s, %s): %s",
		action, t, user.ID, user.ExternalID, user.Role, reason)
}
