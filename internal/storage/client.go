// Package storage stores book assets (cover images and PDFs).
//
// Client is the provider contract; providers/local implements it on the
// filesystem. Assets builds on a Client to name uploads and to schedule
// the removal of files a book no longer references.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("storage: file not found")

	// ErrInvalidPath is returned for paths escaping the storage root.
	ErrInvalidPath = errors.New("storage: invalid path")
)

// FileInfo describes a stored file or directory.
type FileInfo struct {
	Name       string
	Path       string
	IsDir      bool
	Size       int64
	ModifiedAt time.Time
}

// Client defines the storage operations assets rely on. Paths are
// slash-separated and relative to the provider root.
type Client interface {
	// List returns entries in the specified directory path
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Download retrieves the contents of a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Upload writes content to a file path, creating parent directories
	Upload(ctx context.Context, path string, content io.Reader) error

	// Delete removes a file; deleting a missing file is not an error
	Delete(ctx context.Context, path string) error

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata retrieves file info without downloading content
	GetMetadata(ctx context.Context, path string) (*FileInfo, error)
}

// ListRecursive lists all files below path. A missing directory yields no
// files.
func ListRecursive(ctx context.Context, client Client, path string) ([]FileInfo, error) {
	var allFiles []FileInfo

	entries, err := client.List(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir {
			subFiles, err := ListRecursive(ctx, client, entry.Path)
			if err != nil {
				return nil, err
			}
			allFiles = append(allFiles, subFiles...)
		} else {
			allFiles = append(allFiles, entry)
		}
	}

	return allFiles, nil
}

// FilterFiles filters file list by a predicate function
func FilterFiles(files []FileInfo, predicate func(FileInfo) bool) []FileInfo {
	var filtered []FileInfo
	for _, f := range files {
		if predicate(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
