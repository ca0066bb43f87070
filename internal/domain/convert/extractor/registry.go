package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
)

// PanicError wraps a panic raised inside a strategy.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Failure records a strategy that was abandoned for a document.
type Failure struct {
	Strategy string
	Page     int
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("strategy %s failed on page %d: %v", f.Strategy, f.Page, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of running every strategy over a document.
type Result struct {
	Rows     []document.Row
	Failures []Failure
	// Counts is the number of rows each surviving strategy contributed.
	Counts map[string]int
}

// Registry runs a fixed list of strategies.
type Registry struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewRegistry creates a registry. Strategies run in the order given, which is
// also the order their rows appear in within a page.
func NewRegistry(logger *slog.Logger, strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies, logger: logger}
}

// NewDefaultRegistry builds the standard strategy set.
func NewDefaultRegistry(logger *slog.Logger, templates Templates) (*Registry, error) {
	coordinate, err := NewCoordinate(templates)
	if err != nil {
		return nil, fmt.Errorf("failed to compile templates: %w", err)
	}

	return NewRegistry(logger,
		InvoiceLine{},
		ProformaLine{},
		NewMultiLine("stacked", StackedLayout),
		coordinate,
	), nil
}

// Names lists the registered strategies.
func (r *Registry) Names() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Run applies every strategy supporting the document kind to every page.
// contexts[i] is the header context of pages[i].
//
// A strategy that returns an error or panics on any page is dropped for the
// whole document: it contributes no rows and is reported in Failures. Rows of
// the remaining strategies are returned page by page, in registry order.
func (r *Registry) Run(ctx context.Context, pages []document.Page, contexts []document.Context) (*Result, error) {
	if len(pages) != len(contexts) {
		return nil, fmt.Errorf("got %d pages but %d contexts", len(pages), len(contexts))
	}

	result := &Result{Counts: make(map[string]int)}
	if len(pages) == 0 {
		return result, nil
	}
	kind := contexts[0].Kind

	perPage := make([][][]document.Row, len(r.strategies))
	for si, s := range r.strategies {
		if !s.Supports(kind) {
			continue
		}

		rows, failure, err := r.runStrategy(ctx, s, pages, contexts)
		if err != nil {
			return nil, err
		}
		if failure != nil {
			result.Failures = append(result.Failures, *failure)
			continue
		}
		perPage[si] = rows
	}

	for pi := range pages {
		for si, s := range r.strategies {
			if perPage[si] == nil {
				continue
			}
			result.Rows = append(result.Rows, perPage[si][pi]...)
			result.Counts[s.Name()] += len(perPage[si][pi])
		}
	}
	return result, nil
}

func (r *Registry) runStrategy(ctx context.Context, s Strategy, pages []document.Page, contexts []document.Context) ([][]document.Row, *Failure, error) {
	_, span := otel.Tracer("convert/extractor").Start(ctx, "extractor."+s.Name())
	defer span.End()

	rows := make([][]document.Row, len(pages))
	total := 0
	for pi, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		pageRows, err := safeExtract(s, page, contexts[pi])
		if err != nil {
			failure := &Failure{Strategy: s.Name(), Page: page.Number, Err: err}
			span.RecordError(err)
			span.SetStatus(codes.Error, "strategy failed")

			attrs := []any{
				slog.String("strategy", s.Name()),
				slog.Int("page", page.Number),
				slog.Any("error", err),
			}
			if pe, ok := err.(*PanicError); ok {
				attrs = append(attrs, slog.String("stack", string(pe.Stack)))
			}
			r.logger.Warn("extraction strategy failed, discarding its rows", attrs...)
			return nil, failure, nil
		}
		rows[pi] = pageRows
		total += len(pageRows)
	}

	span.SetAttributes(attribute.Int("rows", total))
	return rows, nil, nil
}

func safeExtract(s Strategy, page document.Page, ctx document.Context) (rows []document.Row, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			rows = nil
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return s.Extract(page, ctx)
}
