// Package handler exposes the conversion pipeline over HTTP.
package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/pdftext"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/service"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/sheet"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

const (
	// FormField is the multipart field carrying the PDFs.
	FormField = "file"

	msgNoFile = "No file uploaded"
	msgNoRows = "No rows extracted; check the PDF."

	// Parts above this size are buffered to disk by the multipart reader.
	maxMemory = 32 << 20
)

// Converter runs the extraction pipeline.
type Converter interface {
	Convert(ctx context.Context, uploads []service.Upload) (*service.Result, error)
}

// ConvertHandler accepts PDF uploads and answers with a spreadsheet.
type ConvertHandler struct {
	converter Converter
	spool     storage.Storage
	writer    *sheet.Writer
	maxUpload int64
	logger    *slog.Logger
}

// NewConvertHandler creates a new conversion handler
func NewConvertHandler(converter Converter, spool storage.Storage, writer *sheet.Writer, maxUpload int64, logger *slog.Logger) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		spool:     spool,
		writer:    writer,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// ServeHTTP handles POST requests carrying one or more "file" parts.
// The optional query parameter format=csv selects CSV output.
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
		case errors.Is(err, http.ErrNotMultipart):
			h.writeError(w, document.ErrNoFileUploaded)
		default:
			http.Error(w, "could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[FormField]
	if len(files) == 0 {
		h.writeError(w, document.ErrNoFileUploaded)
		return
	}

	ctx := r.Context()
	uploads, cleanup, err := h.spoolFiles(ctx, files)
	defer cleanup()
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.converter.Convert(ctx, uploads)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		filename    string
	)
	switch r.URL.Query().Get("format") {
	case "csv":
		contentType, filename = sheet.CSVContentType, "extracted_data.csv"
		err = h.writer.WriteCSV(&buf, result.Rows)
	default:
		contentType, filename = sheet.XLSXContentType, "extracted_data.xlsx"
		err = h.writer.WriteXLSX(&buf, result.Rows)
	}
	if err != nil {
		h.writeError(w, fmt.Errorf("failed to write spreadsheet: %w", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Request-ID", result.ID.String())
	if len(result.Errors) > 0 {
		w.Header().Set("X-Skipped-Files", fmt.Sprint(len(result.Errors)))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write response", slog.Any("error", err))
	}
}

// spoolFiles copies every part to the spool. The returned cleanup deletes them.
func (h *ConvertHandler) spoolFiles(ctx context.Context, files []*multipart.FileHeader) ([]service.Upload, func(), error) {
	var saved []*storage.FileInfo
	cleanup := func() {
		for _, info := range saved {
			if err := h.spool.Delete(context.WithoutCancel(ctx), info.ID); err != nil {
				h.logger.Warn("failed to delete spooled upload",
					slog.String("file_id", info.ID.String()),
					slog.Any("error", err))
			}
		}
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		info, err := h.saveOne(ctx, fh)
		if err != nil {
			return nil, cleanup, err
		}
		saved = append(saved, info)
		uploads = append(uploads, service.Upload{
			Filename: fh.Filename,
			Path:     h.spool.LocalPath(info),
		})
	}
	return uploads, cleanup, nil
}

func (h *ConvertHandler) saveOne(ctx context.Context, fh *multipart.FileHeader) (*storage.FileInfo, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	info, err := h.spool.Save(ctx, fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return nil, fmt.Errorf("failed to spool upload %s: %w", fh.Filename, err)
	}
	return info, nil
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, err error) {
	status, body := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("conversion failed", slog.Any("error", err))
		body = fmt.Sprintf("%s\n\n%s", body, errorChain(err))
	} else {
		h.logger.Info("conversion rejected", slog.Int("status", status), slog.Any("error", err))
	}
	http.Error(w, body, status)
}

// errorChain renders err and every error it wraps, one per line, indented by depth.
func errorChain(err error) string {
	var b strings.Builder
	var walk func(err error, depth int)
	walk = func(err error, depth int) {
		fmt.Fprintf(&b, "%s%T: %v\n", strings.Repeat("  ", depth), err, err)
		switch x := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner, depth+1)
			}
		case interface{ Unwrap() error }:
			if inner := x.Unwrap(); inner != nil {
				walk(inner, depth+1)
			}
		}
	}
	walk(err, 0)
	return b.String()
}

// StatusFor maps a conversion error to a status code and plain-text body.
// A joined error is a client error only when every file failed for a client reason.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, document.ErrNoFileUploaded):
		return http.StatusBadRequest, msgNoFile
	case errors.Is(err, document.ErrNoRowsExtracted):
		return http.StatusBadRequest, msgNoRows
	case isClientError(err):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func isClientError(err error) bool {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		if len(errs) == 0 {
			return false
		}
		for _, e := range errs {
			if !isClientError(e) {
				return false
			}
		}
		return true
	}

	var ce *document.ClassificationError
	return errors.As(err, &ce) ||
		errors.Is(err, pdftext.ErrUnreadablePDF) ||
		errors.Is(err, pdftext.ErrTooManyPages) ||
		errors.Is(err, document.ErrNoRowsExtracted)
}
