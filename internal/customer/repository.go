package customer

import (
	"context"
	"sync"
)

// Repository persists saved contact details per org and customer.
type Repository interface {
	Upsert(ctx context.Context, orgID, customerID string, info Information) error
	Get(ctx context.Context, orgID, customerID string) (*Information, error)
}

// InMemoryRepository is a map-backed Repository for tests and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Information
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[string]Information)}
}

func (r *InMemoryRepository) key(orgID, customerID string) string {
	return orgID + "/" + customerID
}

// Upsert stores the contact record.
func (r *InMemoryRepository) Upsert(_ context.Context, orgID, customerID string, info Information) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.key(orgID, customerID)] = info
	return nil
}

// Get returns the stored record or ErrNotFound.
func (r *InMemoryRepository) Get(_ context.Context, orgID, customerID string) (*Information, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.records[r.key(orgID, customerID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &info, nil
}
