// Package memory provides an in-memory document store for tests and local
// development.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"kontor/internal/core"
	ports "kontor/internal/files"
)

type stored struct {
	ref      core.FileRef
	folderID string
	data     []byte
}

type Store struct {
	mu     sync.Mutex
	files  map[string]stored
	nextID int

	FailWith error
}

var (
	_ ports.Lister   = (*Store)(nil)
	_ ports.Uploader = (*Store)(nil)
	_ ports.Deleter  = (*Store)(nil)
)

func New() *Store {
	return &Store{files: make(map[string]stored)}
}

func (s *Store) ListFolder(_ context.Context, folderID string) ([]core.FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	var out []core.FileRef
	for _, f := range s.files {
		if f.folderID == folderID {
			out = append(out, f.ref)
		}
	}
	sortByModifiedDesc(out)
	return out, nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]core.FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	out := make([]core.FileRef, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f.ref)
	}
	sortByModifiedDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Upload(_ context.Context, folderID, name, mimeType string, r io.Reader) (core.FileRef, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.FileRef{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return core.FileRef{}, s.FailWith
	}
	s.nextID++
	ref := core.FileRef{
		ID:           fmt.Sprintf("mem-%d", s.nextID),
		Name:         name,
		MIMEType:     mimeType,
		ViewLink:     fmt.Sprintf("memory://%s/%s", folderID, name),
		ModifiedTime: time.Now().UTC().Format(time.RFC3339),
		Size:         int64(len(data)),
	}
	s.files[ref.ID] = stored{ref: ref, folderID: folderID, data: data}
	return ref, nil
}

func (s *Store) Delete(_ context.Context, fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.files[fileID]; !ok {
		return fmt.Errorf("file %s: %w", fileID, core.ErrNotFound)
	}
	delete(s.files, fileID)
	return nil
}

// Bytes returns the stored content, for test assertions.
func (s *Store) Bytes(fileID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

func sortByModifiedDesc(refs []core.FileRef) {
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].ModifiedTime == refs[j].ModifiedTime {
			return refs[i].ID > refs[j].ID
		}
		return refs[i].ModifiedTime > refs[j].ModifiedTime
	})
}
