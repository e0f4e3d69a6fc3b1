// Package party implements the party generator page: its view state, the
// generation request lifecycle and change notifications.
package party

//go:generate mockgen -destination=mock/mock_service.go -package=partymock github.com/KirkDiggler/party-generator/internal/orchestrators/party Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/party-generator/internal/clients/partygen"
	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
	"github.com/KirkDiggler/party-generator/internal/pkg/clock"
	"github.com/KirkDiggler/party-generator/internal/pkg/idgen"
	"github.com/KirkDiggler/party-generator/internal/repositories/viewstate"
)

const (
	// PartySize is the number of characters requested per generation
	PartySize = 4

	// storeTimeout bounds state writes made after a request settles
	storeTimeout = 5 * time.Second

	errPageIDRequired = "page ID is required"
)

// Service defines the party generator page operations
type Service interface {
	// OpenPage creates a page with empty results
	OpenPage(ctx context.Context, input *OpenPageInput) (*OpenPageOutput, error)

	// GetPage returns the current state of a page
	GetPage(ctx context.Context, input *GetPageInput) (*GetPageOutput, error)

	// GenerateParty starts a generation request unless one is in flight
	GenerateParty(ctx context.Context, input *GeneratePartyInput) (*GeneratePartyOutput, error)

	// Subscribe follows every state change of a page
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	// ClosePage tears a page down, discarding any in-flight result
	ClosePage(ctx context.Context, input *ClosePageInput) (*ClosePageOutput, error)

	// Shutdown closes every live page and waits for in-flight requests
	Shutdown(ctx context.Context) error
}

// Config holds the dependencies for the party orchestrator
type Config struct {
	Client        partygen.Client
	ViewStateRepo viewstate.Repository
	IDGenerator   idgen.Generator
	Clock         clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Client == nil {
		vb.RequiredField("Client")
	}
	if c.ViewStateRepo == nil {
		vb.RequiredField("ViewStateRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}

	return vb.Build()
}

type orchestrator struct {
	client partygen.Client
	repo   viewstate.Repository
	idGen  idgen.Generator
	clock  clock.Clock

	// mu guards pages and stopping. When both are needed a page's mu is
	// taken first.
	mu       sync.Mutex
	pages    map[string]*page
	stopping bool
	inflight sync.WaitGroup
}

// NewOrchestrator creates a new party orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &orchestrator{
		client: cfg.Client,
		repo:   cfg.ViewStateRepo,
		idGen:  cfg.IDGenerator,
		clock:  cfg.Clock,
		pages:  make(map[string]*page),
	}, nil
}

// OpenPage creates a page with no results and no request in flight
func (o *orchestrator) OpenPage(ctx context.Context, _ *OpenPageInput) (*OpenPageOutput, error) {
	if o.isStopping() {
		return nil, errors.Unavailable("server is shutting down")
	}

	now := o.clock.Now()
	state := &entities.ViewState{
		PageID:    o.idGen.Generate(),
		Classes:   []*entities.PartyResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := o.repo.Create(ctx, viewstate.CreateInput{State: state}); err != nil {
		return nil, errors.Wrap(err, "failed to create page")
	}

	o.mu.Lock()
	o.pages[state.PageID] = newPage(state.PageID)
	o.mu.Unlock()

	slog.InfoContext(ctx, "page opened", "page_id", state.PageID)

	return &OpenPageOutput{State: state}, nil
}

// GetPage returns the current state of a page
func (o *orchestrator) GetPage(ctx context.Context, input *GetPageInput) (*GetPageOutput, error) {
	if input == nil || input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDRequired)
	}

	_, state, err := o.livePage(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	return &GetPageOutput{State: state}, nil
}

// GenerateParty marks the page loading and issues the generation request in
// the background. A call made while a request is in flight changes nothing.
func (o *orchestrator) GenerateParty(ctx context.Context, input *GeneratePartyInput) (*GeneratePartyOutput, error) {
	if input == nil || input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDRequired)
	}

	p, state, err := o.livePage(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	if !p.guard.acquire() {
		slog.DebugContext(ctx, "generation already in flight", "page_id", p.id)
		state.Loading = true
		return &GeneratePartyOutput{State: state, Started: false}, nil
	}

	o.mu.Lock()
	if o.stopping {
		o.mu.Unlock()
		p.guard.release()
		return nil, errors.Unavailable("server is shutting down")
	}
	o.inflight.Add(1)
	o.mu.Unlock()

	state, err = o.markLoading(ctx, p)
	if err != nil {
		p.guard.release()
		o.inflight.Done()
		return nil, err
	}

	go o.runGeneration(p)

	slog.InfoContext(ctx, "party generation started",
		"page_id", p.id,
		"num_characters", PartySize)

	return &GeneratePartyOutput{State: state, Started: true}, nil
}

// markLoading persists loading=true and notifies subscribers
func (o *orchestrator) markLoading(ctx context.Context, p *page) (*entities.ViewState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.NotFound("page not found")
	}

	out, err := o.repo.Get(ctx, viewstate.GetInput{PageID: p.id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}

	state := out.State
	state.Loading = true
	state.UpdatedAt = o.clock.Now()

	if _, err := o.repo.Update(ctx, viewstate.UpdateInput{State: state}); err != nil {
		return nil, errors.Wrap(err, "failed to store page")
	}

	p.publishLocked(state)
	return state, nil
}

func (o *orchestrator) runGeneration(p *page) {
	defer o.inflight.Done()

	output, err := o.client.GenerateParty(p.ctx, &partygen.GenerateInput{NumCharacters: PartySize})
	if err == nil && output == nil {
		err = errors.DataLoss("generator returned no output")
	}

	o.settle(p, output, err)
}

// settle applies a finished request to the page and clears loading. The
// guard is released here and nowhere else once the request has started.
func (o *orchestrator) settle(p *page, output *partygen.GenerateOutput, genErr error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.guard.release()

	if p.closed {
		slog.Info("discarding generation result for closed page",
			"page_id", p.id,
			"error", genErr)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	out, err := o.repo.Get(ctx, viewstate.GetInput{PageID: p.id})
	if err != nil {
		slog.ErrorContext(ctx, "failed to load page after generation",
			"page_id", p.id,
			"error", err)
		if errors.IsNotFound(err) {
			o.forgetLocked(p)
		}
		return
	}

	state := out.State
	if genErr != nil {
		slog.ErrorContext(ctx, "party generation failed",
			"page_id", p.id,
			"code", errors.GetCode(genErr),
			"error", genErr)
	} else {
		state.Classes = output.Results
		slog.InfoContext(ctx, "party generated",
			"page_id", p.id,
			"count", len(output.Results))
	}
	state.Loading = false
	state.UpdatedAt = o.clock.Now()

	if _, err := o.repo.Update(ctx, viewstate.UpdateInput{State: state}); err != nil {
		slog.ErrorContext(ctx, "failed to store page after generation",
			"page_id", p.id,
			"error", err)
		if errors.IsNotFound(err) {
			o.forgetLocked(p)
		}
		return
	}

	p.publishLocked(state)
}

// Subscribe follows every state change of a page
func (o *orchestrator) Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error) {
	if input == nil || input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDRequired)
	}

	p, _, err := o.livePage(ctx, input.PageID)
	if err != nil {
		return nil, err
	}

	ch, err := o.subscribe(ctx, p)
	if err != nil {
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-p.ctx.Done():
		}
		p.unsubscribe(ch)
	}()

	return &SubscribeOutput{Updates: ch}, nil
}

func (o *orchestrator) subscribe(ctx context.Context, p *page) (chan *entities.ViewState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.NotFound("page not found")
	}

	// read under the page lock so no publish slips between read and register
	out, err := o.repo.Get(ctx, viewstate.GetInput{PageID: p.id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}

	return p.subscribeLocked(out.State), nil
}

// ClosePage tears a page down: its request is cancelled, a late result is
// dropped, subscribers are closed and the stored state is deleted.
func (o *orchestrator) ClosePage(ctx context.Context, input *ClosePageInput) (*ClosePageOutput, error) {
	if input == nil || input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDRequired)
	}

	o.mu.Lock()
	p, ok := o.pages[input.PageID]
	delete(o.pages, input.PageID)
	o.mu.Unlock()

	if ok {
		p.close()
	}

	out, err := o.repo.Delete(ctx, viewstate.DeleteInput{PageID: input.PageID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete page")
	}

	slog.InfoContext(ctx, "page closed",
		"page_id", input.PageID,
		"deleted", out.Deleted)

	return &ClosePageOutput{Deleted: out.Deleted}, nil
}

// Shutdown closes every live page and waits for their requests to settle.
// Stored state is kept so pages survive a restart when the store does.
func (o *orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.stopping = true
	pages := make([]*page, 0, len(o.pages))
	for id, p := range o.pages {
		pages = append(pages, p)
		delete(o.pages, id)
	}
	o.mu.Unlock()

	for _, p := range pages {
		p.close()
	}

	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.InfoContext(ctx, "party orchestrator stopped", "pages_closed", len(pages))
		return nil
	case <-ctx.Done():
		return errors.WrapWithCode(ctx.Err(), errors.CodeDeadlineExceeded, "timed out waiting for generation requests")
	}
}

// livePage returns the live page for pageID with its stored state,
// attaching one when this process has not seen the page yet. A stored
// loading flag with no request in flight is cleared on the way.
func (o *orchestrator) livePage(ctx context.Context, pageID string) (*page, *entities.ViewState, error) {
	o.mu.Lock()
	if o.stopping {
		o.mu.Unlock()
		return nil, nil, errors.Unavailable("server is shutting down")
	}
	p, ok := o.pages[pageID]
	o.mu.Unlock()

	out, err := o.repo.Get(ctx, viewstate.GetInput{PageID: pageID})
	if err != nil {
		if ok && errors.IsNotFound(err) {
			o.forget(p)
		}
		return nil, nil, errors.Wrap(err, "failed to load page")
	}

	if !ok {
		o.mu.Lock()
		p, ok = o.pages[pageID]
		if !ok {
			p = newPage(pageID)
			o.pages[pageID] = p
		}
		o.mu.Unlock()
	}

	if !out.State.Loading || p.guard.held() {
		return p, out.State, nil
	}

	state, err := o.clearStaleLoading(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	return p, state, nil
}

// clearStaleLoading resets a loading flag no request is behind: one cut off
// by a restart, or one a failed store write left in place when a request
// settled.
func (o *orchestrator) clearStaleLoading(ctx context.Context, p *page) (*entities.ViewState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.NotFound("page not found")
	}

	// re-read under the page lock, a request may have settled meanwhile
	out, err := o.repo.Get(ctx, viewstate.GetInput{PageID: p.id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}

	state := out.State
	if !state.Loading || p.guard.held() {
		return state, nil
	}

	slog.WarnContext(ctx, "clearing stale loading flag", "page_id", p.id)

	state.Loading = false
	state.UpdatedAt = o.clock.Now()
	if _, err := o.repo.Update(ctx, viewstate.UpdateInput{State: state}); err != nil {
		return nil, errors.Wrap(err, "failed to store page")
	}
	p.publishLocked(state)
	return state, nil
}

func (o *orchestrator) forget(p *page) {
	o.mu.Lock()
	if o.pages[p.id] == p {
		delete(o.pages, p.id)
	}
	o.mu.Unlock()
	p.close()
}

// forgetLocked drops an expired page while its mu is held
func (o *orchestrator) forgetLocked(p *page) {
	o.mu.Lock()
	if o.pages[p.id] == p {
		delete(o.pages, p.id)
	}
	o.mu.Unlock()

	p.closeLocked()
}

func (o *orchestrator) isStopping() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopping
}
