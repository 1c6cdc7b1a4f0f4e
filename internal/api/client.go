package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
)

// Client is the fetch collaborator consumed by the compare controller.
// Both calls return the parsed payload or a tagged *ErrorResponse; they
// never panic on transport failures.
type Client interface {
	// GetDiff fetches the compare response for one base/head pair,
	// optionally scoped to a single file path.
	GetDiff(ctx context.Context, req DiffRequest) (*VersionWithDiffPayload, error)

	// GetVersion fetches one version's metadata plus the content of the
	// selected (or requested) file.
	GetVersion(ctx context.Context, req VersionRequest) (*VersionPayload, error)

	Close() error
}

// DiffRequest identifies one compare fetch.
type DiffRequest struct {
	AddonID       int64
	BaseVersionID int64
	HeadVersionID int64

	// Path optionally scopes the diff to a single file.
	Path string
}

// VersionRequest identifies one version fetch.
type VersionRequest struct {
	AddonID   int64
	VersionID int64

	// Path optionally selects which file's content to include.
	Path string
}

// Config holds settings for the HTTP client.
type Config struct {
	// BaseURL is the reviewers API origin, e.g. "https://addons.example.org".
	BaseURL string

	// Timeout for a single request; zero means 30s.
	Timeout time.Duration
}

// HTTPClient is the net/http backed implementation of Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds an HTTPClient. If httpClient is nil a default one is
// constructed from cfg.Timeout.
func NewHTTPClient(cfg Config, logger logging.Logger, httpClient *http.Client) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}

	componentLogger := logger.With(logging.Field{Key: "component", Value: "api"})

	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	componentLogger.Info("created api client",
		logging.Field{Key: "base_url", Value: cfg.BaseURL})

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		client:  httpClient,
		logger:  componentLogger,
	}, nil
}

func (c *HTTPClient) GetDiff(ctx context.Context, req DiffRequest) (*VersionWithDiffPayload, error) {
	endpoint := fmt.Sprintf("%s/api/v5/reviewers/addon/%d/versions/%d...%d/compare/",
		c.baseURL, req.AddonID, req.BaseVersionID, req.HeadVersionID)

	var out VersionWithDiffPayload
	if err := c.getJSON(ctx, endpoint, req.Path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetVersion(ctx context.Context, req VersionRequest) (*VersionPayload, error) {
	endpoint := fmt.Sprintf("%s/api/v5/reviewers/addon/%d/versions/%d/",
		c.baseURL, req.AddonID, req.VersionID)

	var out VersionPayload
	if err := c.getJSON(ctx, endpoint, req.Path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// getJSON executes a GET against endpoint (with an optional ?file= scope)
// and decodes the JSON body into out. All failure modes come back as a
// tagged *ErrorResponse.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint, filePath string, out any) error {
	if filePath != "" {
		endpoint = endpoint + "?file=" + url.QueryEscape(filePath)
	}

	c.logger.Debug("sending api request", logging.Field{Key: "url", Value: endpoint})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &ErrorResponse{Message: "create request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("api request failed",
			logging.Field{Key: "url", Value: endpoint},
			logging.Field{Key: "error", Value: err.Error()})
		return &ErrorResponse{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("api returned error status",
			logging.Field{Key: "url", Value: endpoint},
			logging.Field{Key: "status", Value: resp.StatusCode})
		return &ErrorResponse{Status: resp.StatusCode, Message: "unexpected status"}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ErrorResponse{Status: resp.StatusCode, Message: "decode body", Err: err}
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.logger.Info("closing api client")
	return nil
}
