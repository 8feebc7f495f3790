package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made by a Client unless overridden.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 1 << 20

// Client is the console / admin API client.
type Client struct {
	baseURL    string
	token      string
	authHeader string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithAdminAuth sends the token in the admin server's x-token header instead
// of an Authorization bearer header.
func WithAdminAuth() Option {
	return func(c *Client) { c.authHeader = "x-token" }
}

// New creates a new API client. token may be empty for unauthenticated calls.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		authHeader: "Authorization",
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// consoleEnvelope is the {result, data, code} shape of console endpoints.
type consoleEnvelope struct {
	Result  string          `json:"result"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// adminEnvelope is the {code, data, msg} shape of admin endpoints; code 0 is success.
type adminEnvelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

// consoleCall performs a console request and fails with *APIError unless the
// envelope reports success. out, if non-nil, receives the data field.
func (c *Client) consoleCall(ctx context.Context, method, path string, body any, out any) error {
	var env consoleEnvelope
	if err := c.doRequest(ctx, method, path, body, &env); err != nil {
		return err
	}
	if env.Result != "success" {
		return &APIError{Code: env.Code, Message: env.Message, Data: env.Data}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// adminCall performs an admin request and fails with *APIError when the
// envelope code is non-zero. out, if non-nil, receives the data field.
func (c *Client) adminCall(ctx context.Context, method, path string, body any, out any) error {
	var env adminEnvelope
	if err := c.doRequest(ctx, method, path, body, &env); err != nil {
		return err
	}
	if env.Code != 0 {
		return &APIError{Code: fmt.Sprintf("%d", env.Code), Message: env.Msg, Data: env.Data}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		if c.authHeader == "Authorization" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		} else {
			req.Header.Set(c.authHeader, c.token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		return readHTTPError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// readHTTPError turns a non-2xx response into an *HTTPError, picking up the
// {"error"} or {"code","message"} bodies the servers return.
func readHTTPError(resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if readErr != nil {
		return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}
	var apiErr struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(respBody, &apiErr) == nil {
		switch {
		case apiErr.Error != "":
			return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
		case apiErr.Code != "" || apiErr.Message != "":
			return &HTTPError{StatusCode: resp.StatusCode, Code: apiErr.Code, Message: apiErr.Message}
		}
	}
	return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
}
