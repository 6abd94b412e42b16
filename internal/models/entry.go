package models

import (
	"strings"
	"time"
)

// DateLayout is the fixed-width calendar date format used for Entry.Date.
// Lexicographic order on it equals chronological order.
const DateLayout = "2006-01-02"

// Entry: one submitted stock record for a floor+counter+date. Append-only.
type Entry struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedBy    string    `gorm:"size:36;index;not null" json:"createdBy"`
	CreatorEmail string    `gorm:"size:100" json:"creatorEmail"`
	FloorID      string    `gorm:"size:36;index;not null" json:"floorId"`
	FloorName    string    `gorm:"column:floor;size:100" json:"floor"`
	CounterID    string    `gorm:"size:36;index;not null" json:"counterId"`
	CounterName  string    `gorm:"column:counter;size:100" json:"counter"`
	Date         string    `gorm:"size:10;index;not null" json:"date"`
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`

	Rows []Row `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE" json:"rows"`
}

// Row: a single stock line. Fields are free text; blanks are allowed.
type Row struct {
	EntryID       string `gorm:"primaryKey;size:36" json:"-"`
	Position      int    `gorm:"primaryKey;autoIncrement:false" json:"-"`
	Item          string `gorm:"size:255" json:"item"`
	Batch         string `gorm:"size:100" json:"batch"`
	ReceivingDate string `gorm:"size:20" json:"receivingDate"`
	MfgDate       string `gorm:"size:20" json:"mfgDate"`
	ExpiryDate    string `gorm:"size:20" json:"expiryDate"`
	ShelfLife     string `gorm:"size:50" json:"shelfLife"`
	Qty           string `gorm:"size:50" json:"qty"`
	Remarks       string `gorm:"size:255" json:"remarks"`
}

func (Row) TableName() string { return "entry_rows" }

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Row) Trimmed() Row {
	r.Item = strings.TrimSpace(r.Item)
	r.Batch = strings.TrimSpace(r.Batch)
	r.ReceivingDate = strings.TrimSpace(r.ReceivingDate)
	r.MfgDate = strings.TrimSpace(r.MfgDate)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
	r.ShelfLife = strings.TrimSpace(r.ShelfLife)
	r.Qty = strings.TrimSpace(r.Qty)
	r.Remarks = strings.TrimSpace(r.Remarks)
	return r
}

func (r Row) IsBlank() bool {
	return r.Item == "" && r.Batch == "" && r.ReceivingDate == "" && r.MfgDate == "" &&
		r.ExpiryDate == "" && r.ShelfLife == "" && r.Qty == "" && r.Remarks == ""
}
