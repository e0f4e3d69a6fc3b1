package viewstate

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
	"github.com/KirkDiggler/party-generator/internal/pkg/clock"
)

// InMemoryConfig holds the configuration for the in-memory repository
type InMemoryConfig struct {
	Clock clock.Clock
	TTL   time.Duration
}

// Validate ensures all required dependencies are provided
func (c *InMemoryConfig) Validate() error {
	if c.Clock == nil {
		return errors.InvalidArgument("clock is required")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl must not be negative")
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	return nil
}

type memoryEntry struct {
	state     *entities.ViewState
	expiresAt time.Time
}

// InMemoryRepository implements Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.Mutex
	clock clock.Clock
	ttl   time.Duration
	store map[string]*memoryEntry
}

// NewInMemory creates a new in-memory repository
func NewInMemory(cfg *InMemoryConfig) (*InMemoryRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &InMemoryRepository{
		clock: cfg.Clock,
		ttl:   cfg.TTL,
		store: make(map[string]*memoryEntry),
	}, nil
}

var _ Repository = (*InMemoryRepository)(nil)

// Create stores the state of a new page
func (r *InMemoryRepository) Create(_ context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateState(input.State); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.sweepLocked(now)

	if _, exists := r.store[input.State.PageID]; exists {
		return nil, errors.FailedPrecondition("page already exists")
	}

	r.store[input.State.PageID] = &memoryEntry{
		state:     input.State.Clone(),
		expiresAt: now.Add(r.ttl),
	}

	return &CreateOutput{State: input.State.Clone()}, nil
}

// Get retrieves the state of a page
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.liveLocked(input.PageID)
	if err != nil {
		return nil, err
	}

	entry.expiresAt = r.clock.Now().Add(r.ttl)
	return &GetOutput{State: entry.state.Clone()}, nil
}

// Update replaces the state of an existing page
func (r *InMemoryRepository) Update(_ context.Context, input UpdateInput) (*UpdateOutput, error) {
	if err := validateState(input.State); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, err := r.liveLocked(input.State.PageID)
	if err != nil {
		return nil, err
	}

	entry.state = input.State.Clone()
	entry.expiresAt = r.clock.Now().Add(r.ttl)
	return &UpdateOutput{State: input.State.Clone()}, nil
}

// Delete removes a page
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.liveLocked(input.PageID)
	delete(r.store, input.PageID)

	return &DeleteOutput{Deleted: err == nil}, nil
}

// liveLocked returns the entry for pageID, dropping it when expired
func (r *InMemoryRepository) liveLocked(pageID string) (*memoryEntry, error) {
	entry, exists := r.store[pageID]
	if !exists {
		return nil, errors.NotFound("page not found")
	}
	if !r.clock.Now().Before(entry.expiresAt) {
		delete(r.store, pageID)
		return nil, errors.NotFound("page has expired")
	}
	return entry, nil
}

func (r *InMemoryRepository) sweepLocked(now time.Time) {
	for id, entry := range r.store {
		if !now.Before(entry.expiresAt) {
			delete(r.store, id)
		}
	}
}

func validateState(state *entities.ViewState) error {
	if state == nil {
		return errors.InvalidArgument(errStateNil)
	}
	if state.PageID == "" {
		return errors.InvalidArgument(errPageIDEmpty)
	}
	return nil
}
