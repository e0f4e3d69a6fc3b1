package viewstate

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
	redisclient "github.com/KirkDiggler/party-generator/internal/redis"
)

// Key pattern: page_state:{page_id}
const pageKeyPrefix = "page_state:"

// RedisConfig holds the configuration for the Redis repository
type RedisConfig struct {
	Client redisclient.Client
	TTL    time.Duration
}

// Validate ensures all required dependencies are provided
func (c *RedisConfig) Validate() error {
	if c.Client == nil {
		return errors.InvalidArgument("redis client is required")
	}
	if c.TTL < 0 {
		return errors.InvalidArgument("ttl must not be negative")
	}
	if c.TTL == 0 {
		c.TTL = DefaultTTL
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
	ttl    time.Duration
}

// NewRedisRepository creates a new Redis repository for page state
func NewRedisRepository(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &redisRepository{
		client: cfg.Client,
		ttl:    cfg.TTL,
	}, nil
}

var _ Repository = (*redisRepository)(nil)

// Create stores the state of a new page
func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateState(input.State); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.State)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal page state")
	}

	created, err := r.client.SetNX(ctx, buildKey(input.State.PageID), data, r.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to store page state in Redis")
	}
	if !created {
		return nil, errors.FailedPrecondition("page already exists")
	}

	return &CreateOutput{State: input.State.Clone()}, nil
}

// Get retrieves the state of a page and extends its expiry
func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDEmpty)
	}

	data, err := r.client.GetEx(ctx, buildKey(input.PageID), r.ttl).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFound("page not found")
		}
		return nil, errors.Wrap(err, "failed to get page state from Redis")
	}

	var state entities.ViewState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.ErrorContext(ctx, "corrupted page state",
			"page_id", input.PageID,
			"error", err)
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to unmarshal page state")
	}
	if state.Classes == nil {
		state.Classes = []*entities.PartyResult{}
	}

	return &GetOutput{State: &state}, nil
}

// Update replaces the state of an existing page
func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if err := validateState(input.State); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.State)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal page state")
	}

	updated, err := r.client.SetXX(ctx, buildKey(input.State.PageID), data, r.ttl).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to update page state in Redis")
	}
	if !updated {
		return nil, errors.NotFound("page not found")
	}

	return &UpdateOutput{State: input.State.Clone()}, nil
}

// Delete removes a page
func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.PageID == "" {
		return nil, errors.InvalidArgument(errPageIDEmpty)
	}

	removed, err := r.client.Del(ctx, buildKey(input.PageID)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete page state from Redis")
	}

	return &DeleteOutput{Deleted: removed > 0}, nil
}

func buildKey(pageID string) string {
	return pageKeyPrefix + pageID
}
