// Package access holds every role decision. Handlers and services ask the
// Policy instead of comparing roles themselves.
package access

import (
	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"
)

type Policy struct{}

func NewPolicy() Policy { return Policy{} }

// CheckWrite: admin/manager may write anywhere, a counter user only to its
// own floor+counter.
func (Policy) CheckWrite(u *models.User, floorID, counterID string) error {
	if u == nil {
		return apperr.PermissionDenied("not signed in")
	}
	if u.Role.Unscoped() {
		return nil
	}
	if u.Role != models.RoleCounter {
		return apperr.PermissionDenied("role %q may not write entries", u.Role)
	}
	ref, ok := u.Assignment()
	if !ok || ref.FloorID != floorID || ref.CounterID != counterID {
		return apperr.PermissionDenied("counter users may only write to their assigned counter")
	}
	return nil
}

// CheckGlobalRead guards the cross-counter views.
func (Policy) CheckGlobalRead(u *models.User) error {
	if u == nil {
		return apperr.PermissionDenied("not signed in")
	}
	if !u.Role.Unscoped() {
		return apperr.PermissionDenied("only managers and admins may view all entries")
	}
	return nil
}

func (Policy) CheckAdmin(u *models.User) error {
	if u == nil || u.Role != models.RoleAdmin {
		return apperr.PermissionDenied("admin access required")
	}
	return nil
}

// OwnHistoryScope is the "createdBy == user" predicate.
type OwnHistoryScope struct {
	CreatedBy string
}

func (s OwnHistoryScope) Matches(e *models.Entry) bool {
	return e != nil && e.CreatedBy == s.CreatedBy
}

// ScopeForOwnHistory applies to every role.
func (Policy) ScopeForOwnHistory(u *models.User) (OwnHistoryScope, error) {
	if u == nil || u.ID == "" {
		return OwnHistoryScope{}, apperr.PermissionDenied("not signed in")
	}
	return OwnHistoryScope{CreatedBy: u.ID}, nil
}

// CheckEntryRead: authors always read their own entries, anything else
// needs global read.
func (p Policy) CheckEntryRead(u *models.User, e *models.Entry) error {
	if scope, err := p.ScopeForOwnHistory(u); err == nil && scope.Matches(e) {
		return nil
	}
	return p.CheckGlobalRead(u)
}

// ValidateAssignment enforces the counter-role invariant: both ids set and
// the counter living on the assigned floor. Other roles must carry no scope.
func (Policy) ValidateAssignment(u *models.User, counter *models.Counter) error {
	if u == nil {
		return apperr.Validation("user is required")
	}
	if u.Role != models.RoleCounter {
		if u.FloorID != nil || u.CounterID != nil {
			return apperr.Validation("role %q carries no floor or counter", u.Role)
		}
		return nil
	}
	ref, ok := u.Assignment()
	if !ok || ref.FloorID == "" || ref.CounterID == "" {
		return apperr.Validation("counter users need a floor and a counter")
	}
	if counter == nil || counter.ID != ref.CounterID {
		return apperr.Validation("assigned counter %q not found", ref.CounterID)
	}
	if counter.FloorID != ref.FloorID {
		return apperr.Validation("counter %q does not belong to the assigned floor", counter.Name)
	}
	return nil
}
