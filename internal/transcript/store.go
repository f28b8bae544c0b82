// Package transcript persists per-conversation message transcripts as JSON
// files consumed by the learning job.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Turn is a single transcript entry.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Conversation is the on-disk transcript document, one file per customer.
type Conversation struct {
	Messages []Turn `json:"messages"`
}

// Render flattens the conversation into "role: text" lines for prompting.
func (c *Conversation) Render() string {
	lines := make([]string, 0, len(c.Messages))
	for _, t := range c.Messages {
		lines = append(lines, t.Role+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

// Store reads and appends transcript files under a single directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a transcript store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Append adds a turn to the conversation file for the given id (the sender
// identifier), creating the file and directory on demand.
func (s *Store) Append(id, role, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create transcript dir: %w", err)
	}

	path := s.pathFor(id)
	var conv Conversation
	if data, err := os.ReadFile(path); err == nil {
		// Corrupt transcripts start over rather than blocking the handler.
		_ = json.Unmarshal(data, &conv)
	}
	conv.Messages = append(conv.Messages, Turn{Role: role, Text: text})

	data, err := json.MarshalIndent(&conv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// List returns the transcript file paths in lexical order.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Read parses one transcript file.
func (s *Store) Read(path string) (*Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", filepath.Base(path), err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", filepath.Base(path), err)
	}
	return &conv, nil
}

func (s *Store) pathFor(id string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '+':
			return r
		default:
			return '_'
		}
	}, id)
	return filepath.Join(s.dir, safe+".json")
}
