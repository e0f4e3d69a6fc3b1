// Package mocks provides mock expectation helpers for common testing patterns
package mocks

import (
	"context"

	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/party-generator/internal/clients/partygen"
	partygenmock "github.com/KirkDiggler/party-generator/internal/clients/partygen/mock"
	"github.com/KirkDiggler/party-generator/internal/entities"
)

// BlockedGeneration is a pending GenerateParty call held open by a test
type BlockedGeneration struct {
	started chan struct{}
	release chan generationResult
}

type generationResult struct {
	results []*entities.PartyResult
	err     error
}

// ExpectBlockedGeneration makes the next GenerateParty call wait until the
// test calls Succeed or Fail. If the request context ends first the call
// returns the context error.
func ExpectBlockedGeneration(mockClient *partygenmock.MockClient, numCharacters int) *BlockedGeneration {
	blocked := &BlockedGeneration{
		started: make(chan struct{}),
		release: make(chan generationResult, 1),
	}

	mockClient.EXPECT().
		GenerateParty(gomock.Any(), &partygen.GenerateInput{NumCharacters: numCharacters}).
		DoAndReturn(func(ctx context.Context, _ *partygen.GenerateInput) (*partygen.GenerateOutput, error) {
			close(blocked.started)
			select {
			case res := <-blocked.release:
				if res.err != nil {
					return nil, res.err
				}
				return &partygen.GenerateOutput{Results: res.results}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		})

	return blocked
}

// Started is closed once the request reached the backend
func (b *BlockedGeneration) Started() <-chan struct{} {
	return b.started
}

// Succeed lets the request complete with results
func (b *BlockedGeneration) Succeed(results []*entities.PartyResult) {
	b.release <- generationResult{results: results}
}

// Fail lets the request complete with err
func (b *BlockedGeneration) Fail(err error) {
	b.release <- generationResult{err: err}
}
