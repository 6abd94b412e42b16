package models

import "time"

// Counter names are unique per floor only. FloorName mirrors the floor's
// name so counters can still be looked up by (floor name, counter name).
type Counter struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FloorID   string    `gorm:"size:36;not null;uniqueIndex:idx_counters_floor_name,priority:1" json:"floorId"`
	FloorName string    `gorm:"column:floor;size:100;not null" json:"floor"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_counters_floor_name,priority:2" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Counter) Ref() CounterRef {
	return CounterRef{FloorID: c.FloorID, CounterID: c.ID}
}

// CounterRef identifies a counter together with the floor it was selected
// under. Counter ids are never carried alone.
type CounterRef struct {
	FloorID   string `json:"floorId"`
	CounterID string `json:"counterId"`
}

func (r CounterRef) IsZero() bool { return r.FloorID == "" && r.CounterID == "" }
