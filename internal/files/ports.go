package files

import (
	"context"
	"io"

	"kontor/internal/core"
)

// Ports for the document store.
type (
	Lister interface {
		// ListFolder returns the non-trashed files of one folder, newest
		// modification first.
		ListFolder(ctx context.Context, folderID string) ([]core.FileRef, error)
		// ListRecent returns the most recently modified files across the
		// accessible drive, capped at limit.
		ListRecent(ctx context.Context, limit int) ([]core.FileRef, error)
	}

	Uploader interface {
		Upload(ctx context.Context, folderID, name, mimeType string, r io.Reader) (core.FileRef, error)
	}

	Deleter interface {
		Delete(ctx context.Context, fileID string) error
	}
)
