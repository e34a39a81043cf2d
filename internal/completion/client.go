// Package completion holds the /completion wire payloads and the HTTP client
// the editor uses to submit a draft.
package completion

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

	"github.com/csheth/cowrite/internal/draft"
)

// DefaultEndpoint is where `cowrite serve` listens out of the box.
const DefaultEndpoint = "http://localhost:8080/completion"

const defaultHTTPTimeout = 3 * time.Minute

// ErrMalformedResponse wraps any body that is not a completion payload.
var ErrMalformedResponse = errors.New("completion: malformed response")

// Request is the JSON body posted to /completion.
type Request struct {
	Title    string          `json:"title"`
	Sections []draft.Section `json:"sections"`
}

// Response is the JSON body returned by /completion.
type Response struct {
	Completion string `json:"completion"`
}

// NewRequest captures the form snapshot, keeping section order intact.
func NewRequest(form draft.Form) Request {
	return Request{Title: form.Title, Sections: form.Sections()}
}

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion API error: %d %s (%s)", e.Code, http.StatusText(e.Code), e.Body)
}

// Config describes how to reach the completion endpoint.
type Config struct {
	Endpoint   string
	HTTPClient *http.Client
}

// Client posts drafts to a completion endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

// New builds a Client, falling back to DefaultEndpoint.
func New(cfg Config) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{endpoint: endpoint, client: pickHTTPClient(cfg.HTTPClient)}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func pickHTTPClient(custom *http.Client) *http.Client {
	if custom != nil {
		return custom
	}
	// Generations routinely take longer than a minute; this only guards against a dead peer.
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// Complete issues exactly one POST. There is no retry.
func (c *Client) Complete(ctx context.Context, payload Request) (Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(buf))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var parsed Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return parsed, nil
}
