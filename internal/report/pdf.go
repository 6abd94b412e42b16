package report

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"drystore-backend/internal/models"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

const (
	margin     = 40.0
	infoLine   = 14.0
	cellLine   = 11.0
	cellPad    = 3.0
	footerBand = 30.0
	footerGap  = 10.0
	logoWidth  = 60.0
	logoName   = "logo"
)

// tableTop leaves room for the title, org line and four info lines.
const tableTop = margin + 45 + 4*infoLine + 10

// Column widths in points; they add up to the A4 content width.
var documentWidths = []float64{30, 95, 55, 55, 50, 55, 45, 45, 85}

type pdfLogo struct {
	imageType string
}

// pdfRow is a table row wrapped to the column widths. A row taller than a
// page is split into several pdfRows; only the first one carries the serial
// number and counts against RowsPerPage.
type pdfRow struct {
	cells  [][]string
	height float64
	first  bool
}

// pdfPage is what got drawn on one page. Bottom is the y where the last
// table row ended.
type pdfPage struct {
	entry  models.Entry
	rows   []pdfRow
	bottom float64
}

// PDF renders one entry per page, in input order. Entries whose rows do not
// fit continue on extra pages that repeat the header band.
func (r *Renderer) PDF(ctx context.Context, list []models.Entry) (*Artifact, error) {
	pdf, units, _, err := r.document(ctx, list)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Artifact{
		Filename:    Filename(r.prefix, units[0].Entry, "pdf"),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
		Rows:        TotalLines(units),
		Pages:       pdf.PageCount(),
	}, nil
}

func (r *Renderer) document(ctx context.Context, list []models.Entry) (*fpdf.Fpdf, []Unit, []pdfPage, error) {
	units, err := Layout(list)
	if err != nil {
		return nil, nil, nil, err
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	logo := r.registerLogo(ctx, pdf)

	pdf.SetFont("Helvetica", "B", 9)
	header := wrapRow(pdf, tr, DocumentColumns)
	_, pageH := pdf.GetPageSize()
	avail := pageH - margin - footerBand - footerGap - tableTop - header.height

	var drawn []pdfPage
	for _, u := range units {
		pdf.SetFont("Helvetica", "", 9)
		var rows []pdfRow
		for _, l := range u.Lines {
			rows = append(rows, splitTall(wrapRow(pdf, tr, l.Cells()), avail)...)
		}

		pages := paginateRows(rows, avail, r.rowsPerPage)
		for i, pr := range pages {
			pdf.AddPage()
			r.drawHeader(pdf, tr, logo, u.Entry, i+1, len(pages))
			bottom := drawTable(pdf, header, pr)
			drawFooter(pdf, tr)
			drawn = append(drawn, pdfPage{entry: u.Entry, rows: pr, bottom: bottom})
		}
	}
	return pdf, units, drawn, nil
}

// wrapRow breaks every cell onto as many lines as its column needs, using
// the current font. Cells are translated to the core font encoding first.
func wrapRow(pdf *fpdf.Fpdf, tr func(string) string, cells []string) pdfRow {
	row := pdfRow{cells: make([][]string, len(cells)), first: true}
	for i, cell := range cells {
		for _, line := range pdf.SplitLines([]byte(tr(cell)), documentWidths[i]) {
			row.cells[i] = append(row.cells[i], string(line))
		}
	}
	row.height = rowHeight(row.cells)
	return row
}

func rowHeight(cells [][]string) float64 {
	n := 1
	for _, c := range cells {
		n = max(n, len(c))
	}
	return float64(n)*cellLine + 2*cellPad
}

// splitTall cuts a row that is taller than avail into pieces that each fit.
func splitTall(row pdfRow, avail float64) []pdfRow {
	if row.height <= avail {
		return []pdfRow{row}
	}
	perPiece := max(1, int((avail-2*cellPad)/cellLine))
	tallest := 0
	for _, c := range row.cells {
		tallest = max(tallest, len(c))
	}

	var pieces []pdfRow
	for start := 0; start < tallest; start += perPiece {
		end := start + perPiece
		piece := pdfRow{cells: make([][]string, len(row.cells)), first: start == 0}
		for i, c := range row.cells {
			if start < len(c) {
				piece.cells[i] = c[start:min(end, len(c))]
			}
		}
		piece.height = rowHeight(piece.cells)
		pieces = append(pieces, piece)
	}
	return pieces
}

// paginateRows fills pages up to avail points and at most perPage rows. An
// entry without rows still gets one (empty) page.
func paginateRows(rows []pdfRow, avail float64, perPage int) [][]pdfRow {
	var (
		pages [][]pdfRow
		cur   []pdfRow
		used  float64
		count int
	)
	for _, row := range rows {
		full := used+row.height > avail || (perPage > 0 && row.first && count >= perPage)
		if len(cur) > 0 && full {
			pages = append(pages, cur)
			cur, used, count = nil, 0, 0
		}
		cur = append(cur, row)
		used += row.height
		if row.first {
			count++
		}
	}
	if len(cur) > 0 || len(pages) == 0 {
		pages = append(pages, cur)
	}
	return pages
}

// registerLogo loads the logo once per export. Any failure leaves the
// header text-only.
func (r *Renderer) registerLogo(ctx context.Context, pdf *fpdf.Fpdf) *pdfLogo {
	if r.logo == nil {
		return nil
	}
	b, err := r.logo.Load(ctx)
	if err != nil {
		r.logoFallback("load", err)
		return nil
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		r.logoFallback("decode", err)
		return nil
	}
	imageType := map[string]string{"png": "PNG", "jpeg": "JPG", "gif": "GIF"}[format]
	if imageType == "" {
		r.logoFallback("decode", fmt.Errorf("unsupported image format %q", format))
		return nil
	}

	pdf.RegisterImageOptionsReader(logoName, fpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(b))
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		r.logoFallback("register", err)
		return nil
	}
	return &pdfLogo{imageType: imageType}
}

func (r *Renderer) logoFallback(stage string, err error) {
	r.metrics.LogoFallback()
	r.log.Warn("logo unavailable, rendering text-only header",
		zap.String("stage", stage), zap.Error(err))
}

func (r *Renderer) drawHeader(pdf *fpdf.Fpdf, tr func(string) string, logo *pdfLogo, e models.Entry, page, pages int) {
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margin

	if logo != nil {
		pdf.ImageOptions(logoName, margin, margin, logoWidth, 0, false,
			fpdf.ImageOptions{ImageType: logo.imageType}, 0, "")
	}

	pdf.SetXY(margin, margin)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 20, tr(Title), "", 1, "C", false, 0, "")
	if r.orgLine != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(contentW, 16, tr(r.orgLine), "", 1, "C", false, 0, "")
	}

	pdf.SetY(margin + 45)
	pdf.SetFont("Helvetica", "", 10)
	info := []string{
		"Floor: " + e.FloorName,
		"Counter: " + e.CounterName,
		"Date: " + e.Date,
	}
	if pages > 1 {
		info = append(info, fmt.Sprintf("Page %d of %d", page, pages))
	}
	for _, s := range info {
		pdf.CellFormat(contentW, infoLine, tr(s), "", 1, "R", false, 0, "")
	}
}

// drawTable draws the column header and rows from tableTop and returns the
// y where the last row ends.
func drawTable(pdf *fpdf.Fpdf, header pdfRow, rows []pdfRow) float64 {
	y := tableTop
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	y = drawRow(pdf, header, y, true)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		y = drawRow(pdf, row, y, false)
	}
	return y
}

func drawRow(pdf *fpdf.Fpdf, row pdfRow, y float64, header bool) float64 {
	style := "D"
	if header {
		style = "FD"
	}
	x := margin
	for i, lines := range row.cells {
		w := documentWidths[i]
		pdf.Rect(x, y, w, row.height, style)
		align := "L"
		if header || i == 0 {
			align = "C"
		}
		for k, line := range lines {
			pdf.SetXY(x, y+cellPad+float64(k)*cellLine)
			pdf.CellFormat(w, cellLine, line, "", 0, align, false, 0, "")
		}
		x += w
	}
	return y + row.height
}

func drawFooter(pdf *fpdf.Fpdf, tr func(string) string) {
	pageW, pageH := pdf.GetPageSize()
	w := (pageW - 2*margin) / 3

	pdf.SetXY(margin, pageH-margin-footerBand)
	pdf.SetFont("Helvetica", "", 10)
	for _, label := range []string{"Prepared by", "Checked by", "Approved by"} {
		pdf.CellFormat(w, 14, tr(label+": ____________"), "", 0, "L", false, 0, "")
	}
}
