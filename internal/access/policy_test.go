package access

import (
	"testing"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func counterUser(id, floorID, counterID string) *models.User {
	return &models.User{ID: id, Role: models.RoleCounter, FloorID: strPtr(floorID), CounterID: strPtr(counterID)}
}

func TestCheckWrite(t *testing.T) {
	p := NewPolicy()
	u := counterUser("u1", "f1", "c1")

	assert.NoError(t, p.CheckWrite(u, "f1", "c1"))
	assert.ErrorIs(t, p.CheckWrite(u, "f6", "c1"), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, p.CheckWrite(u, "f1", "c2"), apperr.ErrPermissionDenied)
	assert.ErrorIs(t, p.CheckWrite(nil, "f1", "c1"), apperr.ErrPermissionDenied)

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleManager} {
		assert.NoError(t, p.CheckWrite(&models.User{ID: "a", Role: role}, "f6", "c9"), role)
	}
}

func TestCheckWrite_CounterWithoutAssignment(t *testing.T) {
	u := &models.User{ID: "u1", Role: models.RoleCounter}
	assert.ErrorIs(t, NewPolicy().CheckWrite(u, "", ""), apperr.ErrPermissionDenied)
}

func TestCheckGlobalRead(t *testing.T) {
	p := NewPolicy()
	assert.NoError(t, p.CheckGlobalRead(&models.User{Role: models.RoleManager}))
	assert.NoError(t, p.CheckGlobalRead(&models.User{Role: models.RoleAdmin}))
	assert.ErrorIs(t, p.CheckGlobalRead(counterUser("u1", "f1", "c1")), apperr.ErrPermissionDenied)
}

func TestCheckAdmin(t *testing.T) {
	p := NewPolicy()
	assert.NoError(t, p.CheckAdmin(&models.User{Role: models.RoleAdmin}))
	assert.ErrorIs(t, p.CheckAdmin(&models.User{Role: models.RoleManager}), apperr.ErrPermissionDenied)
}

func TestScopeForOwnHistory(t *testing.T) {
	p := NewPolicy()
	for _, u := range []*models.User{
		counterUser("u1", "f1", "c1"),
		{ID: "u1", Role: models.RoleManager},
	} {
		scope, err := p.ScopeForOwnHistory(u)
		assert.NoError(t, err)
		assert.True(t, scope.Matches(&models.Entry{CreatedBy: "u1"}))
		assert.False(t, scope.Matches(&models.Entry{CreatedBy: "u2"}))
	}

	_, err := p.ScopeForOwnHistory(&models.User{})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestCheckEntryRead(t *testing.T) {
	p := NewPolicy()
	u := counterUser("u1", "f1", "c1")

	assert.NoError(t, p.CheckEntryRead(u, &models.Entry{CreatedBy: "u1"}))
	assert.ErrorIs(t, p.CheckEntryRead(u, &models.Entry{CreatedBy: "u2", FloorID: "f1", CounterID: "c1"}), apperr.ErrPermissionDenied)
	assert.NoError(t, p.CheckEntryRead(&models.User{ID: "m", Role: models.RoleManager}, &models.Entry{CreatedBy: "u2"}))
}

func TestValidateAssignment(t *testing.T) {
	p := NewPolicy()
	kitchen := &models.Counter{ID: "c1", FloorID: "f1", Name: "Kitchen"}

	assert.NoError(t, p.ValidateAssignment(counterUser("u1", "f1", "c1"), kitchen))
	assert.ErrorIs(t, p.ValidateAssignment(counterUser("u1", "f6", "c1"), kitchen), apperr.ErrValidation)
	assert.ErrorIs(t, p.ValidateAssignment(counterUser("u1", "f1", "c1"), nil), apperr.ErrValidation)
	assert.ErrorIs(t, p.ValidateAssignment(&models.User{Role: models.RoleCounter, FloorID: strPtr("f1")}, kitchen), apperr.ErrValidation)

	assert.NoError(t, p.ValidateAssignment(&models.User{Role: models.RoleManager}, nil))
	assert.ErrorIs(t, p.ValidateAssignment(&models.User{Role: models.RoleAdmin, FloorID: strPtr("f1")}, nil), apperr.ErrValidation)
}
