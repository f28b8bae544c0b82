// Package knowledge persists the business knowledge document and implements
// catalog matching against it.
package knowledge

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// Store owns the knowledge document backed by a single JSON file. Loads fail
// open to a default document; every save replaces the file wholesale.
// Concurrent saves race last-write-wins, matching the dashboard contract.
type Store struct {
	path  string
	cache *domain.Knowledge
	mu    sync.Mutex
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the current document. The file is read once and cached;
// a missing or unparsable file yields the default document.
func (s *Store) Load() *domain.Knowledge {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		s.cache = s.read()
	}
	return s.cache
}

// Reload reads the document from disk, bypassing the cache. On read failure
// it returns the cached copy when present, otherwise the default document.
func (s *Store) Reload() *domain.Knowledge {
	doc, err := s.readStrict()
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cache != nil {
			return s.cache
		}
		s.cache = domain.DefaultKnowledge()
		return s.cache
	}

	s.mu.Lock()
	s.cache = doc
	s.mu.Unlock()
	return doc
}

// Save replaces the backing file and the in-memory cache. The write goes to
// a temp file first and is renamed into place so readers never observe a
// partial document.
func (s *Store) Save(doc *domain.Knowledge) error {
	doc.Normalize()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal knowledge: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create knowledge dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".knowledge-*.json")
	if err != nil {
		return fmt.Errorf("create temp knowledge file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write knowledge: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close knowledge file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace knowledge file: %w", err)
	}

	s.mu.Lock()
	s.cache = doc
	s.mu.Unlock()
	return nil
}

func (s *Store) read() *domain.Knowledge {
	doc, err := s.readStrict()
	if err != nil {
		slog.Warn("Knowledge file unavailable, using default document", "path", s.path, "error", err)
		return domain.DefaultKnowledge()
	}
	return doc
}

func (s *Store) readStrict() (*domain.Knowledge, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var doc domain.Knowledge
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}

// MatchProduct scans products in stored order and returns the first whose
// keywords contain a case-insensitive substring match against the text.
// First match wins regardless of keyword specificity.
func MatchProduct(doc *domain.Knowledge, text string) *domain.Product {
	lower := strings.ToLower(text)
	for i := range doc.Products {
		p := &doc.Products[i]
		for _, kw := range p.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(kw)) {
				return p
			}
		}
	}
	return nil
}
