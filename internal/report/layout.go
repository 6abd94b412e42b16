// Package report renders a filtered entry set as a paginated PDF document
// and as a flat XLSX sheet. Both go through Layout so they number rows the
// same way.
package report

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"drystore-backend/internal/models"
)

// ErrNoRecords: nothing to export. No file is produced.
var ErrNoRecords = errors.New("no records to export")

const Title = "Dry Store Stock Record"

var DocumentColumns = []string{
	"S.No", "Item", "Batch No", "Receiving Date", "Mfg Date",
	"Expiry Date", "Shelf Life", "Stock Qty", "Remarks",
}

var SheetColumns = []string{
	"Entry Date", "Floor", "Counter", "S.No", "Item", "Batch No",
	"Receiving Date", "Mfg Date", "Expiry Date", "Shelf Life", "Qty",
	"Remarks", "Created By",
}

// Line is a Row with its serial number inside its entry.
type Line struct {
	SNo int
	Row models.Row
}

func (l Line) Cells() []string {
	r := l.Row
	return []string{
		strconv.Itoa(l.SNo), r.Item, r.Batch, r.ReceivingDate, r.MfgDate,
		r.ExpiryDate, r.ShelfLife, r.Qty, r.Remarks,
	}
}

// Unit is one entry as laid out for export.
type Unit struct {
	Entry models.Entry
	Lines []Line
}

// Layout numbers every entry's rows 1..N in row order, keeping entry order.
func Layout(list []models.Entry) ([]Unit, error) {
	if len(list) == 0 {
		return nil, ErrNoRecords
	}
	units := make([]Unit, 0, len(list))
	for _, e := range list {
		u := Unit{Entry: e, Lines: make([]Line, 0, len(e.Rows))}
		for i, r := range e.Rows {
			u.Lines = append(u.Lines, Line{SNo: i + 1, Row: r})
		}
		units = append(units, u)
	}
	return units, nil
}

func TotalLines(units []Unit) int {
	n := 0
	for _, u := range units {
		n += len(u.Lines)
	}
	return n
}

// Filename is <prefix>_<counter without whitespace>_<date>.<ext>, taken
// from the first entry.
func Filename(prefix string, first models.Entry, ext string) string {
	counter := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, first.CounterName)
	return prefix + "_" + counter + "_" + first.Date + "." + ext
}
