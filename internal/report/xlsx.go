package report

import (
	"fmt"

	"drystore-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Entries"

var sheetWidths = []float64{12, 14, 18, 6, 28, 14, 14, 12, 12, 12, 10, 24, 28}

// XLSX flattens the set to one sheet row per entry row, entry order then
// row order.
func (r *Renderer) XLSX(list []models.Entry) (*Artifact, error) {
	units, err := Layout(list)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(SheetColumns))
	for i, h := range SheetColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(SheetColumns))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range sheetWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	rowNum := 2
	for _, u := range units {
		e := u.Entry
		createdBy := e.CreatorEmail
		if createdBy == "" {
			createdBy = e.CreatedBy
		}
		for _, l := range u.Lines {
			row := l.Row
			values := []any{
				e.Date, e.FloorName, e.CounterName, l.SNo, row.Item, row.Batch,
				row.ReceivingDate, row.MfgDate, row.ExpiryDate, row.ShelfLife, row.Qty,
				row.Remarks, createdBy,
			}
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowNum, err)
			}
			rowNum++
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return &Artifact{
		Filename:    Filename(r.prefix, units[0].Entry, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
		Rows:        TotalLines(units),
		Pages:       1,
	}, nil
}
