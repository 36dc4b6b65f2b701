// Package shopify provides the Admin GraphQL client and the paginated index
// builder that populates the index store from the shop's files, collections,
// and products.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/catalogtools/alttexter/pkg/client"
	"github.com/catalogtools/alttexter/pkg/logging"
)

const (
	// DefaultAPIVersion is the Admin API version requested.
	DefaultAPIVersion = "2024-07"

	// DefaultPageSize is the page size for all paginated sweeps.
	DefaultPageSize = 250

	// DefaultRetryDelay is the fixed backoff applied when the Admin API
	// signals a rate limit.
	DefaultRetryDelay = 2 * time.Second

	accessTokenHeader = "X-Shopify-Access-Token"
)

// Config holds the Admin client configuration.
type Config struct {
	// Shop is the shop handle ("my-store" for my-store.myshopify.com).
	Shop string

	// AccessToken is the static Admin API access token.
	AccessToken string

	// APIVersion selects the Admin API version (default DefaultAPIVersion).
	APIVersion string

	// Endpoint overrides the derived GraphQL endpoint URL (tests).
	Endpoint string

	// RetryDelay is the rate-limit backoff (default DefaultRetryDelay).
	RetryDelay time.Duration
}

// AdminError is a failed Admin API call. Throttled errors are retried by the
// caller primitive; everything else is fatal for indexing.
type AdminError struct {
	StatusCode int
	Message    string
	Throttled  bool
}

// Error implements the error interface.
func (e *AdminError) Error() string {
	if e.Throttled {
		return fmt.Sprintf("admin API throttled (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("admin API error (status %d): %s", e.StatusCode, e.Message)
}

// classifyAdminError maps Admin API failures onto retry classes.
func classifyAdminError(err error) client.ErrorClass {
	var adminErr *AdminError
	if errors.As(err, &adminErr) {
		if adminErr.Throttled || adminErr.StatusCode == http.StatusTooManyRequests {
			return client.ErrorClassRateLimit
		}
		if class := client.ClassifyHTTPStatus(adminErr.StatusCode); class != "" {
			return class
		}
		return client.ErrorClassServer
	}
	return client.ErrorClassNetwork
}

// Client executes GraphQL queries against the shop Admin API.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	caller      *client.Caller
	callerOpts  []client.Option
	logger      zerolog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithSleeper overrides how rate-limit backoff sleeps are performed.
func WithSleeper(sleep client.Sleeper) Option {
	return func(c *Client) {
		c.callerOpts = append(c.callerOpts, client.WithSleeper(sleep))
	}
}

// NewClient creates an Admin API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Shop == "" && cfg.Endpoint == "" {
		return nil, fmt.Errorf("shop handle is required")
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/graphql.json", cfg.Shop, version)
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	c := &Client{
		endpoint:    endpoint,
		accessToken: cfg.AccessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		logger:      logging.NewLogger("admin-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.caller = client.New("admin", classifyAdminError, client.FixedBackoff(retryDelay), c.callerOpts...)

	return c, nil
}

// gqlRequest is the JSON body POSTed to the GraphQL endpoint.
type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// gqlResponse is the GraphQL response envelope.
type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []gqlError                 `json:"errors"`
}

type gqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// execute POSTs one query through the retry primitive and returns the raw
// data payload. Rate limits (HTTP 429 or a THROTTLED error code) are retried
// until the server stops signalling them; any other failure propagates.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any) (map[string]json.RawMessage, error) {
	return client.Do(ctx, c.caller, func(ctx context.Context) (map[string]json.RawMessage, error) {
		return c.executeOnce(ctx, query, variables)
	})
}

func (c *Client) executeOnce(ctx context.Context, query string, variables map[string]any) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("admin request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AdminError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
			Throttled:  resp.StatusCode == http.StatusTooManyRequests,
		}
	}

	var parsed gqlResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		throttled := false
		for _, gerr := range parsed.Errors {
			messages = append(messages, gerr.Message)
			if gerr.Extensions.Code == "THROTTLED" {
				throttled = true
			}
		}
		return nil, &AdminError{
			StatusCode: resp.StatusCode,
			Message:    strings.Join(messages, "; "),
			Throttled:  throttled,
		}
	}

	return parsed.Data, nil
}
