package report

import (
	"context"
	"errors"
	"fmt"

	"drystore-backend/internal/apperr"
	"drystore-backend/internal/assets"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/models"

	"go.uber.org/zap"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat reads the format segment of an export route.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPDF, FormatXLSX:
		return Format(s), nil
	}
	return "", apperr.Validation("unknown export format %q", s)
}

// Artifact is a rendered file ready for download.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
	Pages       int
}

type Options struct {
	Prefix      string
	OrgLine     string
	RowsPerPage int
	Logo        *assets.Logo
	Metrics     *metrics.Metrics
}

type Renderer struct {
	prefix      string
	orgLine     string
	rowsPerPage int
	logo        *assets.Logo
	log         *zap.Logger
	metrics     *metrics.Metrics
}

func NewRenderer(log *zap.Logger, opts Options) *Renderer {
	if opts.Prefix == "" {
		opts.Prefix = "DryStore"
	}
	if opts.RowsPerPage <= 0 {
		opts.RowsPerPage = 30
	}
	return &Renderer{
		prefix:      opts.Prefix,
		orgLine:     opts.OrgLine,
		rowsPerPage: opts.RowsPerPage,
		logo:        opts.Logo,
		log:         log,
		metrics:     opts.Metrics,
	}
}

// Render dispatches on format and records the outcome.
func (r *Renderer) Render(ctx context.Context, format Format, list []models.Entry) (*Artifact, error) {
	var (
		a   *Artifact
		err error
	)
	switch format {
	case FormatPDF:
		a, err = r.PDF(ctx, list)
	case FormatXLSX:
		a, err = r.XLSX(list)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	switch {
	case errors.Is(err, ErrNoRecords):
		r.metrics.Export(string(format), "empty")
	case err != nil:
		r.metrics.Export(string(format), "error")
		r.log.Error("export failed", zap.String("format", string(format)), zap.Error(err))
	default:
		r.metrics.Export(string(format), "ok")
		r.log.Info("export rendered",
			zap.String("format", string(format)),
			zap.String("filename", a.Filename),
			zap.Int("entries", len(list)),
			zap.Int("rows", a.Rows),
			zap.Int("pages", a.Pages))
	}
	return a, err
}
