package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voltfolio/evisync/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the Graph API endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTimeout is the per-request HTTP timeout. Chunk uploads get a
	// longer budget, see transfer.go.
	DefaultTimeout = 30 * time.Second
)

// Client is a thin Graph drive API client scoped to one site's default
// document library. All requests go through the rate limiter and carry a
// bearer token from the token provider.
type Client struct {
	http          *http.Client
	tokenProvider driven.TokenProvider
	limiter       *RateLimiter

	// chunkHTTP is used for chunk PUTs against pre-authenticated session
	// URLs, with a timeout sized for whole chunks rather than API calls.
	chunkHTTP *http.Client

	// driveURL is "<base>/sites/<siteID>/drive" with no trailing slash.
	driveURL string
}

// NewClient creates a client for the given site. baseURL may be empty to use
// the public Graph endpoint; tests point it at a local server.
func NewClient(tokenProvider driven.TokenProvider, baseURL, siteID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:          &http.Client{Timeout: DefaultTimeout},
		chunkHTTP:     &http.Client{Timeout: chunkTimeout},
		tokenProvider: tokenProvider,
		limiter:       NewRateLimiter(),
		driveURL:      fmt.Sprintf("%s/sites/%s/drive", baseURL, siteID),
	}
}

// do issues one authorized request against the drive API. path is appended
// to the drive URL. A non-2xx response is decoded into an *APIError; a 2xx
// body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	url := c.driveURL + path
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.limiter.UpdateFromResponse(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, url)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// getJSON issues a GET and decodes the response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

// postJSON issues a POST with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, raw, "application/json", out)
}

// patchJSON issues a PATCH with a JSON body and decodes the response.
func (c *Client) patchJSON(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, http.MethodPatch, path, raw, "application/json", out)
}

// putContent issues a raw content PUT (the direct upload path).
func (c *Client) putContent(ctx context.Context, path string, data []byte, contentType string, out any) error {
	return c.do(ctx, http.MethodPut, path, data, contentType, out)
}

// delete issues a DELETE.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// decodeAPIError converts an error response into an *APIError, pulling the
// code and message from the Graph error envelope when present.
func decodeAPIError(resp *http.Response, url string) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, URL: url}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(raw) > 0 {
		var envelope graphError
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
