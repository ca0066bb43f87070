// Package storage spools uploaded files to disk while they are converted.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown file ID.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Path relative to the spool directory
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for spool operations
type Storage interface {
	// Save stores a file and returns its metadata
	Save(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// LocalPath returns the on-disk path of a stored file
	LocalPath(info *FileInfo) string

	// Delete removes a file and its metadata
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns every spooled file
	List(ctx context.Context) ([]*FileInfo, error)

	// Sweep deletes files created before the cutoff and returns how many were removed
	Sweep(ctx context.Context, before time.Time) (int, error)
}

// Config holds spool configuration
type Config struct {
	LocalPath string
}

// New creates the spool described by cfg.
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
