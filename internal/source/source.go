// Package source supplies raw content and parsed ASTs per file path. It backs
// the structure builder's Source contract: a non-blocking cache with explicit
// refresh, plus live-document overrides for unsaved editor buffers.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgallion1/texstruct/internal/texast"
	"github.com/dgallion1/texstruct/internal/texparser"
	"golang.org/x/sync/errgroup"
)

type entry struct {
	content string
	doc     *texast.Document
}

// Store is a thread-safe per-path content/AST cache.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	overrides map[string]string
	pending   map[string]bool
	log       *slog.Logger
}

func NewStore(log *slog.Logger) *Store {
	return &Store{
		entries:   make(map[string]*entry),
		overrides: make(map[string]string),
		pending:   make(map[string]bool),
		log:       log,
	}
}

// Get returns the cached content and AST for a path. It never blocks and
// never touches the file system; a miss means the caller should refresh.
func (s *Store) Get(path string) (string, *texast.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[path]
	if !ok {
		return "", nil, false
	}
	return e.content, e.doc, true
}

// HasPending reports whether a load for the path is in flight.
func (s *Store) HasPending(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending[path]
}

// ForceRefresh synchronously (re)loads and reparses a path. A live-document
// override takes precedence over the file on disk.
func (s *Store) ForceRefresh(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	override, hasOverride := s.overrides[path]
	s.pending[path] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, path)
		s.mu.Unlock()
	}()

	content := override
	if !hasOverride {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		content = string(data)
	}

	e := &entry{content: content}
	if isTeX(path) {
		e.doc = texparser.Parse(path, content)
	}

	s.mu.Lock()
	s.entries[path] = e
	s.mu.Unlock()
	return nil
}

// SetOverride installs live content for a path with unsaved edits. The
// override is parsed immediately so the next construction run sees it.
func (s *Store) SetOverride(path, content string) {
	e := &entry{content: content}
	if isTeX(path) {
		e.doc = texparser.Parse(path, content)
	}
	s.mu.Lock()
	s.overrides[path] = content
	s.entries[path] = e
	s.mu.Unlock()
}

// RemoveOverride drops the live content for a path and invalidates the cached
// entry so the on-disk version is reloaded on demand.
func (s *Store) RemoveOverride(path string) {
	s.mu.Lock()
	delete(s.overrides, path)
	delete(s.entries, path)
	s.mu.Unlock()
}

// Invalidate drops the cached entry for a path.
func (s *Store) Invalidate(path string) {
	s.mu.Lock()
	delete(s.entries, path)
	s.mu.Unlock()
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// WarmUp loads a set of paths with bounded parallelism. Individual failures
// are logged and skipped.
func (s *Store) WarmUp(ctx context.Context, paths []string, limit int) {
	if limit <= 0 {
		limit = 4
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, path := range paths {
		g.Go(func() error {
			if err := s.ForceRefresh(ctx, path); err != nil {
				s.log.Warn("warm-up load failed", "path", path, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}

// TeXFilesUnder lists .tex files below dir, for warm-up.
func TeXFilesUnder(dir string) []string {
	var paths []string
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && isTeX(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func isTeX(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".ltx", ".sty", ".cls":
		return true
	}
	return false
}
