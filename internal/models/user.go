package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleCounter UserRole = "counter"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleCounter:
		return true
	}
	return false
}

// Unscoped roles read and write across the whole hierarchy.
func (r UserRole) Unscoped() bool {
	return r == RoleAdmin || r == RoleManager
}

// User: role=counter always carries both FloorID and CounterID.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"size:20;not null;index" json:"role"`
	FloorID      *string   `gorm:"size:36;index" json:"floorId,omitempty"`
	CounterID    *string   `gorm:"size:36;index" json:"counterId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// Assignment returns the floor/counter a counter-role user is bound to.
func (u *User) Assignment() (CounterRef, bool) {
	if u.FloorID == nil || u.CounterID == nil {
		return CounterRef{}, false
	}
	return CounterRef{FloorID: *u.FloorID, CounterID: *u.CounterID}, true
}
