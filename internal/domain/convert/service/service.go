// Package service provides the conversion orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/classifier"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/extractor"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/header"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/postprocess"
	"github.com/FACorreiaa/invoice-converter/pkg/metrics"
)

var tracer = otel.Tracer("convert/service")

// PageSource turns a stored PDF into pages.
type PageSource interface {
	Pages(ctx context.Context, path string) ([]document.Page, error)
}

// Upload is a file received from a client and spooled to disk.
type Upload struct {
	Filename string
	Path     string
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	Filename string
	Kind     document.Kind
	Supplier string
	Pages    int
	Rows     []document.Row
	Failures []extractor.Failure
}

// Result is the outcome of a conversion request.
type Result struct {
	ID    uuid.UUID
	Rows  []document.Row
	Files []*FileResult
	// Errors lists the files that could not be converted when others could.
	Errors []error
}

// ConvertService orchestrates classification, extraction and cleanup
type ConvertService struct {
	pages      PageSource
	classifier *classifier.Classifier
	suppliers  *classifier.SupplierDetector
	header     *header.Extractor
	registry   *extractor.Registry
	metrics    *metrics.Metrics // Optional: nil disables metrics
	logger     *slog.Logger
}

// NewConvertService creates a new conversion service
func NewConvertService(
	pages PageSource,
	registry *extractor.Registry,
	hdr *header.Extractor,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ConvertService {
	return &ConvertService{
		pages:      pages,
		classifier: classifier.New(),
		suppliers:  classifier.NewSupplierDetector(classifier.DefaultSuppliers),
		header:     hdr,
		registry:   registry,
		metrics:    m,
		logger:     logger,
	}
}

// Convert processes every upload and merges their rows.
//
// A file that fails does not stop the others. The request fails only when no
// rows were extracted at all: with the file errors when there were any, and
// with document.ErrNoRowsExtracted otherwise.
func (s *ConvertService) Convert(ctx context.Context, uploads []Upload) (*Result, error) {
	if len(uploads) == 0 {
		return nil, document.ErrNoFileUploaded
	}

	start := time.Now()
	defer s.metrics.Duration(start)

	result := &Result{ID: uuid.New()}
	ctx, span := tracer.Start(ctx, "convert.request", trace.WithAttributes(
		attribute.String("request.id", result.ID.String()),
		attribute.Int("files", len(uploads)),
	))
	defer span.End()

	var rows []document.Row
	for _, up := range uploads {
		fr, err := s.ConvertFile(ctx, up)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("failed to convert file",
				slog.String("request_id", result.ID.String()),
				slog.String("file", up.Filename),
				slog.Any("error", err))
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", up.Filename, err))
			continue
		}
		result.Files = append(result.Files, fr)
		rows = append(rows, fr.Rows...)
	}

	result.Rows = postprocess.Dedupe(rows)
	span.SetAttributes(attribute.Int("rows", len(result.Rows)))

	if len(result.Rows) == 0 {
		err := document.ErrNoRowsExtracted
		if len(result.Errors) > 0 {
			err = errors.Join(result.Errors...)
		}
		span.SetStatus(codes.Error, "no rows")
		return nil, err
	}

	s.logger.Info("conversion completed",
		slog.String("request_id", result.ID.String()),
		slog.Int("files", len(result.Files)),
		slog.Int("failed_files", len(result.Errors)),
		slog.Int("rows", len(result.Rows)),
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// ConvertFile runs the pipeline on one file.
func (s *ConvertService) ConvertFile(ctx context.Context, up Upload) (*FileResult, error) {
	ctx, span := tracer.Start(ctx, "convert.file", trace.WithAttributes(
		attribute.String("file.name", up.Filename),
	))
	defer span.End()

	fr, err := s.convertFile(ctx, up)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "conversion failed")
		kind := ""
		if fr != nil {
			kind = string(fr.Kind)
		}
		s.metrics.Document(kind, outcome(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("document.kind", string(fr.Kind)),
		attribute.String("document.supplier", fr.Supplier),
		attribute.Int("rows", len(fr.Rows)),
	)
	s.metrics.Document(string(fr.Kind), "ok")
	return fr, nil
}

func (s *ConvertService) convertFile(ctx context.Context, up Upload) (*FileResult, error) {
	pages, err := s.pages.Pages(ctx, up.Path)
	if err != nil {
		return nil, err
	}

	var first string
	if len(pages) > 0 {
		first = pages[0].Text
	}
	kind, err := s.classifier.Classify(first)
	if err != nil {
		return nil, err
	}

	fr := &FileResult{
		Filename: up.Filename,
		Kind:     kind,
		Supplier: s.suppliers.Detect(first),
		Pages:    len(pages),
	}

	seed := document.NewContext(kind)
	seed.Supplier = fr.Supplier
	if number, ok := header.FromFilename(up.Filename); ok {
		seed.InvoiceBase = number
	}

	texts := make([]string, len(pages))
	for i, p := range pages {
		texts[i] = p.Text
	}
	contexts := s.header.Fold(seed, texts)

	extracted, err := s.registry.Run(ctx, pages, contexts)
	if err != nil {
		return fr, err
	}
	fr.Failures = extracted.Failures
	for _, f := range extracted.Failures {
		s.metrics.StrategyFailure(f.Strategy)
	}
	for name, n := range extracted.Counts {
		s.metrics.Rows(name, n)
	}

	rows := postprocess.BackfillCodes(extracted.Rows, pages)
	rows = postprocess.Dedupe(rows)
	fr.Rows = postprocess.BackfillOrigin(rows)

	s.logger.Debug("file converted",
		slog.String("file", up.Filename),
		slog.String("kind", string(kind)),
		slog.String("supplier", fr.Supplier),
		slog.Int("pages", len(pages)),
		slog.Int("rows", len(fr.Rows)),
		slog.Int("strategy_failures", len(fr.Failures)))
	return fr, nil
}

func outcome(err error) string {
	var ce *document.ClassificationError
	switch {
	case errors.As(err, &ce):
		return "unclassified"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
