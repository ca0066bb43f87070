package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/document"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/pdftext"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/service"
	"github.com/FACorreiaa/invoice-converter/internal/domain/convert/sheet"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// fakeConverter records the uploads it saw and answers with a fixed result.
type fakeConverter struct {
	rows     []document.Row
	err      error
	uploads  []service.Upload
	contents []string
}

func (f *fakeConverter) Convert(ctx context.Context, uploads []service.Upload) (*service.Result, error) {
	f.uploads = uploads
	for _, up := range uploads {
		data, err := os.ReadFile(up.Path)
		if err != nil {
			return nil, err
		}
		f.contents = append(f.contents, string(data))
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.Result{ID: uuid.New(), Rows: f.rows}, nil
}

func sampleRows() []document.Row {
	return []document.Row{{
		Reference: "ABC123", CodeEAN: "1234567890123", CustomCode: "12345678",
		Description: "EAU DE PARFUM", Quantity: 10,
		UnitPrice: decimal.RequireFromString("12.5"), TotalPrice: decimal.RequireFromString("125"),
		InvoiceNumber: "123456",
	}}
}

func newTestHandler(t *testing.T, conv Converter, maxUpload int64) (*ConvertHandler, storage.Storage) {
	t.Helper()
	spool, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewConvertHandler(conv, spool, sheet.NewWriter("EUR"), maxUpload, logger), spool
}

func multipartRequest(t *testing.T, target string, files map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range files {
		part, err := mw.CreateFormFile(FormField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestConvertHandler_XLSX(t *testing.T) {
	conv := &fakeConverter{rows: sampleRows()}
	h, spool := newTestHandler(t, conv, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/convert", map[string]string{"facture.pdf": "%PDF-1.4 one"}))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sheet.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="extracted_data.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.Len(t, conv.uploads, 1)
	assert.Equal(t, "facture.pdf", conv.uploads[0].Filename)
	assert.Equal(t, []string{"%PDF-1.4 one"}, conv.contents)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet.DataSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sheet.InvoiceColumns, rows[0])
	assert.Equal(t, "ABC123", rows[1][0])

	// Spooled uploads are removed once the response is written.
	files, err := spool.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestConvertHandler_CSV(t *testing.T) {
	conv := &fakeConverter{rows: sampleRows()}
	h, _ := newTestHandler(t, conv, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/?format=csv", map[string]string{"a.pdf": "x", "b.pdf": "y"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sheet.CSVContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="extracted_data.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Reference,"), rec.Body.String())
	assert.Len(t, conv.uploads, 2)
}

func TestConvertHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no rows",
			err:        document.ErrNoRowsExtracted,
			wantStatus: http.StatusBadRequest,
			wantBody:   "No rows extracted; check the PDF.",
		},
		{
			name:       "unclassified",
			err:        errors.Join(fmt.Errorf("scan.pdf: %w", &document.ClassificationError{Snippet: "DELIVERY NOTE"})),
			wantStatus: http.StatusBadRequest,
			wantBody:   "DELIVERY NOTE",
		},
		{
			name:       "unreadable",
			err:        fmt.Errorf("a.pdf: %w", pdftext.ErrUnreadablePDF),
			wantStatus: http.StatusBadRequest,
			wantBody:   "unreadable pdf",
		},
		{
			name: "mixed causes",
			err: errors.Join(
				fmt.Errorf("a.pdf: %w", &document.ClassificationError{Snippet: "X"}),
				errors.New("b.pdf: disk on fire"),
			),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "disk on fire",
		},
		{
			name:       "internal",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "*errors.errorString: disk on fire",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, &fakeConverter{err: tt.err}, 1<<20)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, multipartRequest(t, "/api/convert", map[string]string{"a.pdf": "x"}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestConvertHandler_InternalErrorChain(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "/spool/a.pdf", Err: fs.ErrPermission}
	h, _ := newTestHandler(t, &fakeConverter{err: fmt.Errorf("a.pdf: %w", cause)}, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/convert", map[string]string{"a.pdf": "x"}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "a.pdf: open /spool/a.pdf: permission denied\n\n"), body)
	assert.Contains(t, body, "*fmt.wrapError: a.pdf: open /spool/a.pdf: permission denied\n")
	assert.Contains(t, body, "  *fs.PathError: open /spool/a.pdf: permission denied\n")
	assert.Contains(t, body, "    *errors.errorString: permission denied\n")
	assert.NotContains(t, body, "goroutine")
}

func TestConvertHandler_NoFile(t *testing.T) {
	h, _ := newTestHandler(t, &fakeConverter{}, 1<<20)

	t.Run("empty form", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, multipartRequest(t, "/api/convert", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded\n", rec.Body.String())
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file uploaded\n", rec.Body.String())
	})
}

func TestConvertHandler_TooLarge(t *testing.T) {
	h, _ := newTestHandler(t, &fakeConverter{rows: sampleRows()}, 64)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, "/api/convert", map[string]string{"big.pdf": strings.Repeat("x", 4096)}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestConvertHandler_MethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, &fakeConverter{}, 1<<20)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestStatusFor(t *testing.T) {
	status, body := StatusFor(document.ErrNoFileUploaded)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "No file uploaded", body)

	status, _ = StatusFor(errors.Join(pdftext.ErrTooManyPages, document.ErrNoRowsExtracted))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = StatusFor(context.Canceled)
	assert.Equal(t, http.StatusInternalServerError, status)
}
