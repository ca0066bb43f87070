// Package pdftext supplies page text and positioned glyphs from PDF files.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/layout"
)

var (
	// ErrUnreadablePDF is returned for files that are not a PDF we can parse.
	ErrUnreadablePDF = errors.New("unreadable pdf")
	// ErrTooManyPages is returned when a document exceeds the configured page limit.
	ErrTooManyPages = errors.New("too many pages")
)

// Config configures a Reader.
type Config struct {
	// Validate runs pdfcpu validation (relaxed mode) before extraction.
	Validate bool
	// MaxPages rejects longer documents; 0 disables the limit.
	MaxPages int
	// LineTolerance is the baseline drift tolerated when rebuilding text lines.
	LineTolerance float64
}

// DefaultConfig returns the reader settings used in production.
func DefaultConfig() Config {
	return Config{
		Validate:      true,
		MaxPages:      500,
		LineTolerance: layout.DefaultTolerance,
	}
}

// Reader loads every page of a PDF.
type Reader struct {
	cfg    Config
	logger *slog.Logger
}

// NewReader creates a PDF reader.
func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if cfg.Validate {
		// Keep pdfcpu from creating its user configuration directory.
		api.DisableConfigDir()
	}
	return &Reader{cfg: cfg, logger: logger}
}

// Pages returns the content of every page of the PDF at path, in order.
func (r *Reader) Pages(ctx context.Context, path string) ([]document.Page, error) {
	if r.cfg.Validate {
		if err := r.validate(path); err != nil {
			return nil, err
		}
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer f.Close()

	n := reader.NumPage()
	if r.cfg.MaxPages > 0 && n > r.cfg.MaxPages {
		return nil, fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, n, r.cfg.MaxPages)
	}

	pages := make([]document.Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			pages = append(pages, document.Page{Number: i})
			continue
		}

		page, err := r.readPage(p, i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrUnreadablePDF, i, err)
		}
		pages = append(pages, page)
	}

	r.logger.Debug("pdf pages loaded",
		slog.String("path", path),
		slog.Int("pages", len(pages)),
	)
	return pages, nil
}

func (r *Reader) validate(path string) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(path, conf); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	if r.cfg.MaxPages > 0 && count > r.cfg.MaxPages {
		return fmt.Errorf("%w: %d pages, limit is %d", ErrTooManyPages, count, r.cfg.MaxPages)
	}
	return nil
}

// readPage decodes one page. The content stream decoder panics on some
// malformed streams, so the panic is turned into an error.
func (r *Reader) readPage(p pdf.Page, number int) (page document.Page, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed content stream: %v", rec)
		}
	}()

	content := p.Content()
	glyphs := make([]document.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, document.Glyph{
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: t.FontSize,
			S:        t.S,
		})
	}

	text := layout.PageText(glyphs, r.cfg.LineTolerance)
	if text == "" {
		// Some producers emit text the positional decoder cannot place.
		if plain, perr := p.GetPlainText(nil); perr == nil {
			text = plain
		}
	}

	return document.Page{Number: number, Text: text, Glyphs: glyphs}, nil
}
