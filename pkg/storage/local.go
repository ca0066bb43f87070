package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const metaDir = ".meta"

// LocalStorage implements Storage using the local filesystem
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates a new local filesystem spool
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(basePath, metaDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save stores a file and returns its metadata
func (s *LocalStorage) Save(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileID := uuid.New()

	// Sanitize filename and add UUID prefix for uniqueness
	storedFilename := fmt.Sprintf("%s_%s", fileID.String()[:8], sanitizeFilename(filename))
	filePath := filepath.Join(s.basePath, storedFilename)

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	info := &FileInfo{
		ID:          fileID,
		Name:        filename,
		Size:        size,
		ContentType: contentType,
		Path:        storedFilename,
		CreatedAt:   s.now(),
	}

	if err := s.saveMetadata(info); err != nil {
		os.Remove(filePath) // Cleanup on error
		return nil, err
	}

	return info, nil
}

// LocalPath returns the on-disk path of a stored file
func (s *LocalStorage) LocalPath(info *FileInfo) string {
	return filepath.Join(s.basePath, info.Path)
}

// Delete removes a file and its metadata
func (s *LocalStorage) Delete(ctx context.Context, fileID uuid.UUID) error {
	info, err := s.getInfo(fileID)
	if err != nil {
		return err
	}

	if err := os.Remove(s.LocalPath(info)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if err := os.Remove(s.metaPath(fileID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	return nil
}

// List returns every spooled file
func (s *LocalStorage) List(ctx context.Context) ([]*FileInfo, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, metaDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	files := make([]*FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id, err := uuid.Parse(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}

		info, err := s.getInfo(id)
		if err != nil {
			continue
		}
		files = append(files, info)
	}

	return files, nil
}

// Sweep deletes files created before the cutoff
func (s *LocalStorage) Sweep(ctx context.Context, before time.Time) (int, error) {
	files, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, info := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !info.CreatedAt.Before(before) {
			continue
		}
		if err := s.Delete(ctx, info.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}

func (s *LocalStorage) getInfo(fileID uuid.UUID) (*FileInfo, error) {
	data, err := os.ReadFile(s.metaPath(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fileID)
		}
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	return &info, nil
}

func (s *LocalStorage) metaPath(fileID uuid.UUID) string {
	return filepath.Join(s.basePath, metaDir, fileID.String()+".json")
}

// saveMetadata saves file metadata to a JSON file
func (s *LocalStorage) saveMetadata(info *FileInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(s.metaPath(info.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	return nil
}

// sanitizeFilename removes unsafe characters from filenames
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(
		"/", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)
	if name == "" || name == "." {
		return "upload.pdf"
	}
	return name
}
