package party

import (
	"github.com/KirkDiggler/party-generator/internal/entities"
)

// OpenPageInput defines the request for opening a page
type OpenPageInput struct{}

// OpenPageOutput defines the response for opening a page
type OpenPageOutput struct {
	State *entities.ViewState
}

// GetPageInput defines the request for reading a page
type GetPageInput struct {
	PageID string
}

// GetPageOutput defines the response for reading a page
type GetPageOutput struct {
	State *entities.ViewState
}

// GeneratePartyInput defines the request for triggering generation
type GeneratePartyInput struct {
	PageID string
}

// GeneratePartyOutput defines the response for triggering generation.
// Started is false when a request was already in flight and nothing was sent.
type GeneratePartyOutput struct {
	State   *entities.ViewState
	Started bool
}

// SubscribeInput defines the request for following a page
type SubscribeInput struct {
	PageID string
}

// SubscribeOutput carries the update channel. The current state is the
// first value; the channel closes when the subscription context ends or
// the page closes.
type SubscribeOutput struct {
	Updates <-chan *entities.ViewState
}

// ClosePageInput defines the request for tearing down a page
type ClosePageInput struct {
	PageID string
}

// ClosePageOutput defines the response for tearing down a page
type ClosePageOutput struct {
	Deleted bool
}
