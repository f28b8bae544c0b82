// Package orders reads the completed-orders list written by the external
// payment-completion process.
package orders

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowmindhq/flowmind/internal/domain"
)

// Store is a read-only view over the completed-orders JSON file. The file is
// re-read on every call so externally written orders appear immediately.
type Store struct {
	path string
}

// NewStore creates an order store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns the persisted orders verbatim. A missing file is an empty
// list; an unreadable or unparsable file is an error.
func (s *Store) List() ([]domain.Order, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Order{}, nil
		}
		return nil, fmt.Errorf("read orders: %w", err)
	}

	var list []domain.Order
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse orders: %w", err)
	}
	if list == nil {
		list = []domain.Order{}
	}
	return list, nil
}

// Find returns the first order whose primary or legacy id matches, or nil.
func (s *Store) Find(id string) (*domain.Order, error) {
	list, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Matches(id) {
			return &list[i], nil
		}
	}
	return nil, nil
}
