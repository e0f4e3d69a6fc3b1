// Package partygen is the client for the party generation backend
package partygen

//go:generate mockgen -destination=mock/mock_client.go -package=partygenmock github.com/KirkDiggler/party-generator/internal/clients/partygen Client

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/KirkDiggler/party-generator/internal/entities"
	"github.com/KirkDiggler/party-generator/internal/errors"
)

const (
	// DefaultBaseURL is where the generation backend listens in development
	DefaultBaseURL = "http://localhost:5000"

	// DefaultTimeout bounds one generation request. Generation runs text and
	// image models for every character, so it is slow.
	DefaultTimeout = 10 * time.Minute

	generatePath = "/api/v1/generate_class"
	imagesPath   = "/images/"

	// maxResponseBytes caps how much of a response body is read
	maxResponseBytes = 8 << 20
)

// Client defines the interface for the generation backend
type Client interface {
	// GenerateParty asks the backend for a new party
	GenerateParty(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)

	// ImageURL returns the URL a browser loads the portrait of imageID from
	ImageURL(imageID string) string
}

// GenerateInput defines the request for generating a party
type GenerateInput struct {
	NumCharacters int
}

// GenerateOutput defines the response for generating a party
type GenerateOutput struct {
	Results []*entities.PartyResult
}

type generateRequest struct {
	NumCharacters int `json:"num_characters"`
}

// Config contains configuration options for the generation client.
type Config struct {
	// BaseURL of the backend (optional, defaults to DefaultBaseURL)
	BaseURL string
	// Timeout for one request (optional, defaults to DefaultTimeout)
	Timeout time.Duration
	// HTTPClient overrides the client used for requests (optional)
	HTTPClient *http.Client
}

// Validate validates the Config and sets defaults if not provided.
func (cfg *Config) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateHTTPURL("BaseURL", cfg.BaseURL, vb)
	if cfg.Timeout < 0 {
		vb.InvalidField("Timeout", "must not be negative")
	}
	return vb.Build()
}

type client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new generation client with the given configuration.
func New(cfg *Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// GenerateParty posts {"num_characters": n} and decodes the JSON array
// of class-groups the backend answers with.
func (c *client) GenerateParty(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.NumCharacters < 1 {
		return nil, errors.InvalidArgumentf("num_characters must be positive, got %d", input.NumCharacters)
	}

	body, err := json.Marshal(&generateRequest{NumCharacters: input.NumCharacters})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal generate request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build generate request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.DebugContext(ctx, "requesting party generation",
		"url", req.URL.String(),
		"num_characters", input.NumCharacters)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close() // nolint:errcheck // body fully read or abandoned
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Unavailablef("generator returned status %d", resp.StatusCode).
			WithMeta("status_code", resp.StatusCode).
			WithMeta("body", truncate(string(payload), 256))
	}

	results, err := decodeResults(payload)
	if err != nil {
		return nil, err
	}

	return &GenerateOutput{Results: results}, nil
}

// ImageURL returns {baseURL}/images/{imageID}
func (c *client) ImageURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return c.baseURL + imagesPath + url.PathEscape(imageID)
}

func decodeResults(payload []byte) ([]*entities.PartyResult, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.DataLoss("generator response is not a JSON array")
	}

	var results []*entities.PartyResult
	if err := json.Unmarshal(trimmed, &results); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDataLoss, "failed to decode generator response")
	}

	out := make([]*entities.PartyResult, 0, len(results))
	for i, result := range results {
		if result == nil {
			return nil, errors.DataLossf("generator response entry %d is null", i)
		}
		out = append(out, result)
	}
	return out, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	switch {
	case stderrors.Is(ctx.Err(), context.Canceled):
		return errors.WrapWithCode(err, errors.CodeCanceled, "generate request canceled")
	case stderrors.Is(ctx.Err(), context.DeadlineExceeded), isTimeout(err):
		return errors.WrapWithCode(err, errors.CodeDeadlineExceeded, "generate request timed out")
	default:
		return errors.WrapWithCode(err, errors.CodeUnavailable, "generator unreachable")
	}
}

func isTimeout(err error) bool {
	var timeout interface{ Timeout() bool }
	return stderrors.As(err, &timeout) && timeout.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
