package party

import (
	"context"
	"sync"

	"github.com/KirkDiggler/party-generator/internal/entities"
)

// page is the live side of a page: its request guard, lifetime and
// subscribers. Stored state lives in the view state repository.
type page struct {
	id    string
	guard requestGuard

	// ctx is cancelled when the page is torn down; generation requests
	// derive from it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu serializes state writes, publishes and teardown
	mu     sync.Mutex
	closed bool
	subs   map[chan *entities.ViewState]struct{}
}

func newPage(id string) *page {
	ctx, cancel := context.WithCancel(context.Background())
	return &page{
		id:     id,
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[chan *entities.ViewState]struct{}),
	}
}

// close tears the page down. Safe to call more than once.
func (p *page) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *page) closeLocked() {
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()

	for ch := range p.subs {
		close(ch)
		delete(p.subs, ch)
	}
}

// publishLocked delivers state to every subscriber, replacing any value the
// subscriber has not read yet. Caller holds p.mu.
func (p *page) publishLocked(state *entities.ViewState) {
	for ch := range p.subs {
		select {
		case ch <- state.Clone():
			continue
		default:
		}

		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state.Clone():
		default:
		}
	}
}

// subscribeLocked registers a subscriber primed with state. Caller holds p.mu.
func (p *page) subscribeLocked(state *entities.ViewState) chan *entities.ViewState {
	ch := make(chan *entities.ViewState, 1)
	ch <- state.Clone()
	p.subs[ch] = struct{}{}
	return ch
}

func (p *page) unsubscribe(ch chan *entities.ViewState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subs[ch]; ok {
		delete(p.subs, ch)
		close(ch)
	}
}
