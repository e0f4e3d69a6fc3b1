package party_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	partygenmock "github.com/KirkDiggler/party-generator/internal/clients/partygen/mock"
	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
	"github.com/KirkDiggler/party-generator/internal/orchestrators/party"
	"github.com/KirkDiggler/party-generator/internal/pkg/clock"
	"github.com/KirkDiggler/party-generator/internal/pkg/idgen"
	idgenmock "github.com/KirkDiggler/party-generator/internal/pkg/idgen/mock"
	"github.com/KirkDiggler/party-generator/internal/repositories/viewstate"
	viewstatemock "github.com/KirkDiggler/party-generator/internal/repositories/viewstate/mock"
	"github.com/KirkDiggler/party-generator/internal/testutils"
	"github.com/KirkDiggler/party-generator/internal/testutils/mocks"
)

const waitTimeout = 2 * time.Second

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockClient   *partygenmock.MockClient
	repo         *viewstate.InMemoryRepository
	clock        *clock.Manual
	orchestrator party.Service
	ctx          context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClient = partygenmock.NewMockClient(s.ctrl)
	s.clock = clock.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	repo, err := viewstate.NewInMemory(&viewstate.InMemoryConfig{Clock: s.clock})
	s.Require().NoError(err)
	s.repo = repo

	orchestrator, err := party.NewOrchestrator(&party.Config{
		Client:        s.mockClient,
		ViewStateRepo: s.repo,
		IDGenerator:   idgen.NewSequential("page"),
		Clock:         s.clock,
	})
	s.Require().NoError(err)
	s.orchestrator = orchestrator
}

func (s *OrchestratorTestSuite) TearDownTest() {
	// let background requests settle before the controller checks calls
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	s.Require().NoError(s.orchestrator.Shutdown(ctx))
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) openPage() string {
	out, err := s.orchestrator.OpenPage(s.ctx, &party.OpenPageInput{})
	s.Require().NoError(err)
	return out.State.PageID
}

func (s *OrchestratorTestSuite) getPage(pageID string) *entities.ViewState {
	out, err := s.orchestrator.GetPage(s.ctx, &party.GetPageInput{PageID: pageID})
	s.Require().NoError(err)
	return out.State
}

func (s *OrchestratorTestSuite) waitStarted(blocked *mocks.BlockedGeneration) {
	select {
	case <-blocked.Started():
	case <-time.After(waitTimeout):
		s.FailNow("generation request never reached the backend")
	}
}

func (s *OrchestratorTestSuite) waitSettled(pageID string) *entities.ViewState {
	var state *entities.ViewState
	s.Require().Eventually(func() bool {
		state = s.getPage(pageID)
		return !state.Loading
	}, waitTimeout, 5*time.Millisecond)
	return state
}

func (s *OrchestratorTestSuite) recv(ch <-chan *entities.ViewState) *entities.ViewState {
	select {
	case state, ok := <-ch:
		s.Require().True(ok, "updates channel closed")
		return state
	case <-time.After(waitTimeout):
		s.FailNow("no update received")
		return nil
	}
}

func (s *OrchestratorTestSuite) waitClosed(ch <-chan *entities.ViewState) {
	select {
	case _, ok := <-ch:
		s.False(ok, "expected updates channel to be closed")
	case <-time.After(waitTimeout):
		s.FailNow("updates channel never closed")
	}
}

func (s *OrchestratorTestSuite) TestOpenPage_StartsEmpty() {
	out, err := s.orchestrator.OpenPage(s.ctx, &party.OpenPageInput{})
	s.Require().NoError(err)

	s.Equal("page_1", out.State.PageID)
	s.NotNil(out.State.Classes)
	s.Empty(out.State.Classes)
	s.False(out.State.Loading)
	s.Equal(s.clock.Now(), out.State.CreatedAt)

	s.Equal(out.State, s.getPage("page_1"))
}

func (s *OrchestratorTestSuite) TestOpenPage_UsesGeneratedID() {
	mockIDs := idgenmock.NewMockGenerator(s.ctrl)
	mockIDs.EXPECT().Generate().Return("page_fixed")

	orchestrator, err := party.NewOrchestrator(&party.Config{
		Client:        s.mockClient,
		ViewStateRepo: s.repo,
		IDGenerator:   mockIDs,
		Clock:         s.clock,
	})
	s.Require().NoError(err)

	out, err := orchestrator.OpenPage(s.ctx, &party.OpenPageInput{})
	s.Require().NoError(err)
	s.Equal("page_fixed", out.State.PageID)
	s.Require().NoError(orchestrator.Shutdown(s.ctx))
}

func (s *OrchestratorTestSuite) TestGetPage_Errors() {
	_, err := s.orchestrator.GetPage(s.ctx, &party.GetPageInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.orchestrator.GetPage(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = s.orchestrator.GetPage(s.ctx, &party.GetPageInput{PageID: "page_missing"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestGenerateParty_ReplacesClassesInResponseOrder() {
	pageID := s.openPage()
	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)

	out, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Started)
	s.True(out.State.Loading)
	s.Empty(out.State.Classes)

	s.waitStarted(blocked)
	s.True(s.getPage(pageID).Loading)

	blocked.Succeed(testutils.FullParty())

	state := s.waitSettled(pageID)
	s.Equal(testutils.FullParty(), state.Classes)
	s.Equal([]string{
		"Holy Ravager", "Primal Arcanewarden", "Hexblade Minstrel", "Stormfist Pilgrim",
	}, []string{
		state.Classes[0].Name, state.Classes[1].Name, state.Classes[2].Name, state.Classes[3].Name,
	})
}

func (s *OrchestratorTestSuite) TestGenerateParty_EmptyResultClearsCards() {
	pageID := s.openPage()

	first := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	_, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.waitStarted(first)
	first.Succeed(testutils.FighterParty())
	s.Len(s.waitSettled(pageID).Classes, 1)

	second := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	_, err = s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.waitStarted(second)
	second.Succeed([]*entities.PartyResult{})

	state := s.waitSettled(pageID)
	s.NotNil(state.Classes)
	s.Empty(state.Classes)
}

func (s *OrchestratorTestSuite) TestGenerateParty_FailureKeepsPreviousClasses() {
	pageID := s.openPage()

	first := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	_, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.waitStarted(first)
	first.Succeed(testutils.FighterParty())
	s.waitSettled(pageID)

	second := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	out, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Started)
	s.Equal(testutils.FighterParty(), out.State.Classes)
	s.waitStarted(second)
	second.Fail(errors.Unavailable("generator returned 415").WithMeta("status_code", 415))

	state := s.waitSettled(pageID)
	s.False(state.Loading)
	s.Equal(testutils.FighterParty(), state.Classes)
}

func (s *OrchestratorTestSuite) TestGenerateParty_IgnoredWhileInFlight() {
	pageID := s.openPage()
	// one backend call only; a second would fail the controller
	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)

	first, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(first.Started)
	s.waitStarted(blocked)

	for i := 0; i < 3; i++ {
		again, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
		s.Require().NoError(err)
		s.False(again.Started)
		s.True(again.State.Loading)
	}

	blocked.Succeed(testutils.FighterParty())
	s.Equal(testutils.FighterParty(), s.waitSettled(pageID).Classes)
}

func (s *OrchestratorTestSuite) TestGenerateParty_AllowedAgainAfterSettle() {
	pageID := s.openPage()

	for i := 0; i < 2; i++ {
		blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
		out, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
		s.Require().NoError(err)
		s.True(out.Started)
		s.waitStarted(blocked)
		blocked.Succeed(testutils.FighterParty())
		s.waitSettled(pageID)
	}
}

func (s *OrchestratorTestSuite) TestGenerateParty_PagesAreIndependent() {
	pageA := s.openPage()
	pageB := s.openPage()

	blockedA := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	outA, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageA})
	s.Require().NoError(err)
	s.True(outA.Started)
	s.waitStarted(blockedA)

	blockedB := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	outB, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageB})
	s.Require().NoError(err)
	s.True(outB.Started)
	s.waitStarted(blockedB)

	blockedB.Succeed(testutils.FighterParty())
	s.Len(s.waitSettled(pageB).Classes, 1)
	s.True(s.getPage(pageA).Loading)

	blockedA.Succeed(testutils.FullParty())
	s.Len(s.waitSettled(pageA).Classes, 4)
}

func (s *OrchestratorTestSuite) TestGenerateParty_Errors() {
	_, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: "page_missing"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestGenerateParty_StoreFailureReleasesGuard() {
	mockRepo := viewstatemock.NewMockRepository(s.ctrl)
	orchestrator, err := party.NewOrchestrator(&party.Config{
		Client:        s.mockClient,
		ViewStateRepo: mockRepo,
		IDGenerator:   idgen.NewSequential("page"),
		Clock:         s.clock,
	})
	s.Require().NoError(err)
	defer func() { s.Require().NoError(orchestrator.Shutdown(s.ctx)) }()

	state := testutils.CreateTestViewState(testutils.TestPageID, s.clock.Now())
	mockRepo.EXPECT().
		Get(gomock.Any(), viewstate.GetInput{PageID: testutils.TestPageID}).
		Return(&viewstate.GetOutput{State: state.Clone()}, nil).
		Times(4)
	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		Return(nil, errors.Unavailable("redis down")).
		Times(2)

	for i := 0; i < 2; i++ {
		out, err := orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: testutils.TestPageID})
		s.Nil(out)
		s.True(errors.IsUnavailable(err), "got %v", err)
	}
}

// failingUpdates fails the next Update calls while failures remain
type failingUpdates struct {
	*viewstate.InMemoryRepository
	failures atomic.Int32
}

func (r *failingUpdates) Update(ctx context.Context, input viewstate.UpdateInput) (*viewstate.UpdateOutput, error) {
	if r.failures.Add(-1) >= 0 {
		return nil, errors.Unavailable("redis down")
	}
	r.failures.Store(0)
	return r.InMemoryRepository.Update(ctx, input)
}

func (s *OrchestratorTestSuite) TestGenerateParty_StoreFailureAtSettleClearsLoading() {
	repo := &failingUpdates{InMemoryRepository: s.repo}
	orchestrator, err := party.NewOrchestrator(&party.Config{
		Client:        s.mockClient,
		ViewStateRepo: repo,
		IDGenerator:   idgen.NewSequential("flaky"),
		Clock:         s.clock,
	})
	s.Require().NoError(err)
	defer func() { s.Require().NoError(orchestrator.Shutdown(s.ctx)) }()

	opened, err := orchestrator.OpenPage(s.ctx, &party.OpenPageInput{})
	s.Require().NoError(err)
	pageID := opened.State.PageID

	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	out, err := orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Started)
	s.waitStarted(blocked)

	// the write that settles the request is lost
	repo.failures.Store(1)
	blocked.Succeed(testutils.FighterParty())

	var state *entities.ViewState
	s.Require().Eventually(func() bool {
		got, err := orchestrator.GetPage(s.ctx, &party.GetPageInput{PageID: pageID})
		s.Require().NoError(err)
		state = got.State
		return !state.Loading
	}, waitTimeout, 5*time.Millisecond)
	s.Equal(int32(0), repo.failures.Load())

	stored, err := s.repo.Get(s.ctx, viewstate.GetInput{PageID: pageID})
	s.Require().NoError(err)
	s.False(stored.State.Loading)

	// the page accepts a new request afterwards
	again := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	out, err = orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Started)
	s.waitStarted(again)
	again.Succeed(testutils.FighterParty())
}

func (s *OrchestratorTestSuite) TestSubscribe_ReceivesEachStage() {
	pageID := s.openPage()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sub, err := s.orchestrator.Subscribe(ctx, &party.SubscribeInput{PageID: pageID})
	s.Require().NoError(err)

	initial := s.recv(sub.Updates)
	s.False(initial.Loading)
	s.Empty(initial.Classes)

	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)
	_, err = s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)

	loading := s.recv(sub.Updates)
	s.True(loading.Loading)

	s.waitStarted(blocked)
	blocked.Succeed(testutils.FullParty())

	settled := s.recv(sub.Updates)
	s.False(settled.Loading)
	s.Equal(testutils.FullParty(), settled.Classes)

	cancel()
	s.waitClosed(sub.Updates)
}

func (s *OrchestratorTestSuite) TestSubscribe_ClosedWithPage() {
	pageID := s.openPage()

	sub, err := s.orchestrator.Subscribe(s.ctx, &party.SubscribeInput{PageID: pageID})
	s.Require().NoError(err)
	s.recv(sub.Updates)

	_, err = s.orchestrator.ClosePage(s.ctx, &party.ClosePageInput{PageID: pageID})
	s.Require().NoError(err)

	s.waitClosed(sub.Updates)
}

func (s *OrchestratorTestSuite) TestClosePage_DiscardsInFlightResult() {
	pageID := s.openPage()
	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)

	_, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.waitStarted(blocked)

	out, err := s.orchestrator.ClosePage(s.ctx, &party.ClosePageInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Deleted)

	// the request context is cancelled so the blocked call returns on its own
	ctx, cancel := context.WithTimeout(s.ctx, waitTimeout)
	defer cancel()
	s.Require().NoError(s.orchestrator.Shutdown(ctx))

	_, err = s.repo.Get(s.ctx, viewstate.GetInput{PageID: pageID})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestClosePage_Idempotent() {
	pageID := s.openPage()

	out, err := s.orchestrator.ClosePage(s.ctx, &party.ClosePageInput{PageID: pageID})
	s.Require().NoError(err)
	s.True(out.Deleted)

	out, err = s.orchestrator.ClosePage(s.ctx, &party.ClosePageInput{PageID: pageID})
	s.Require().NoError(err)
	s.False(out.Deleted)

	_, err = s.orchestrator.GetPage(s.ctx, &party.GetPageInput{PageID: pageID})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestShutdown_CancelsRequestsAndRefusesWork() {
	pageID := s.openPage()
	blocked := mocks.ExpectBlockedGeneration(s.mockClient, party.PartySize)

	_, err := s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.Require().NoError(err)
	s.waitStarted(blocked)

	ctx, cancel := context.WithTimeout(s.ctx, waitTimeout)
	defer cancel()
	s.Require().NoError(s.orchestrator.Shutdown(ctx))

	_, err = s.orchestrator.OpenPage(s.ctx, &party.OpenPageInput{})
	s.True(errors.IsUnavailable(err))

	_, err = s.orchestrator.GenerateParty(s.ctx, &party.GeneratePartyInput{PageID: pageID})
	s.True(errors.IsUnavailable(err))

	// stored state survives shutdown
	stored, err := s.repo.Get(s.ctx, viewstate.GetInput{PageID: pageID})
	s.Require().NoError(err)
	s.Equal(pageID, stored.State.PageID)
}

func (s *OrchestratorTestSuite) TestGetPage_ClearsStaleLoading() {
	stale := testutils.CreateTestViewState(testutils.TestPageID, s.clock.Now())
	stale.Loading = true
	stale.Classes = testutils.FighterParty()
	_, err := s.repo.Create(s.ctx, viewstate.CreateInput{State: stale})
	s.Require().NoError(err)

	state := s.getPage(testutils.TestPageID)
	s.False(state.Loading)
	s.Equal(testutils.FighterParty(), state.Classes)

	stored, err := s.repo.Get(s.ctx, viewstate.GetInput{PageID: testutils.TestPageID})
	s.Require().NoError(err)
	s.False(stored.State.Loading)
}

func (s *OrchestratorTestSuite) TestGetPage_ExpiredPageIsForgotten() {
	pageID := s.openPage()

	s.clock.Advance(viewstate.DefaultTTL + time.Minute)

	_, err := s.orchestrator.GetPage(s.ctx, &party.GetPageInput{PageID: pageID})
	s.True(errors.IsNotFound(err))
}

func TestConfigValidate(t *testing.T) {
	_, err := party.NewOrchestrator(&party.Config{})
	if !errors.IsInvalidArgument(err) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	fields, ok := errors.GetMeta(err)["validation_errors"].(map[string][]string)
	if !ok {
		t.Fatalf("expected validation errors in meta, got %v", errors.GetMeta(err))
	}
	for _, field := range []string{"Client", "ViewStateRepo", "IDGenerator", "Clock"} {
		if _, ok := fields[field]; !ok {
			t.Errorf("missing field error for %s", field)
		}
	}
}
