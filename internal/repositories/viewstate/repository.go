// Package viewstate stores the view state of party generator pages
package viewstate

//go:generate mockgen -destination=mock/mock_repository.go -package=viewstatemock github.com/KirkDiggler/party-generator/internal/repositories/viewstate Repository

import (
	"context"
	"time"

	"github.com/KirkDiggler/party-generator/internal/entities"
)

// DefaultTTL is how long an untouched page is kept
const DefaultTTL = 30 * time.Minute

const (
	errStateNil    = "state cannot be nil"
	errPageIDEmpty = "page ID cannot be empty"
)

// Repository defines the storage interface for page view state.
// Reads and writes both extend the page's idle expiry.
type Repository interface {
	// Create stores the state of a new page
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves the state of a page
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces the state of an existing page
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a page. Deleting a missing page is not an error.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the request for creating page state
type CreateInput struct {
	State *entities.ViewState
}

// CreateOutput defines the response for creating page state
type CreateOutput struct {
	State *entities.ViewState
}

// GetInput defines the request for retrieving page state
type GetInput struct {
	PageID string
}

// GetOutput defines the response for retrieving page state
type GetOutput struct {
	State *entities.ViewState
}

// UpdateInput defines the request for replacing page state
type UpdateInput struct {
	State *entities.ViewState
}

// UpdateOutput defines the response for replacing page state
type UpdateOutput struct {
	State *entities.ViewState
}

// DeleteInput defines the request for deleting page state
type DeleteInput struct {
	PageID string
}

// DeleteOutput defines the response for deleting page state
type DeleteOutput struct {
	Deleted bool
}
