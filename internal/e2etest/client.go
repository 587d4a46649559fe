package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/detachd/portal/internal/errors"
)

// Client is a JSON API client for tests. Authenticate or the auth helpers set
// the bearer token used on subsequent requests.
type Client struct {
	client *http.Client
	url    string
	token  string
}

func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{},
		url:    url,
	}
}

// SetToken sets the bearer token sent in the Authorization header.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	return c.token
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, urlPath, nil)
}

// Post sends a JSON body to a URL and returns the response.
func (c *Client) Post(ctx context.Context, urlPath string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, urlPath, body)
}

// Patch sends a JSON body to a URL and returns the response.
func (c *Client) Patch(ctx context.Context, urlPath string, body any) (*http.Response, error) {
	return c.do(ctx, http.MethodPatch, urlPath, body)
}

func (c *Client) do(ctx context.Context, method, urlPath string, body any) (*http.Response, error) {
	var (
		err     error
		req     *http.Request
		resp    *http.Response
		reqBody io.Reader
	)
	if body != nil {
		var encoded []byte
		if encoded, err = json.Marshal(body); err != nil {
			return nil, errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(encoded)
	}
	if req, err = http.NewRequestWithContext(ctx, method, c.url+urlPath, reqBody); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// DecodeJSON decodes the response body into dst and closes the body. Non-2xx
// statuses are an error so tests fail with the status visible.
func DecodeJSON(resp *http.Response, dst any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(resp.Body)
		return errors.New("unexpected status code",
			slog.Int("status", resp.StatusCode), slog.String("body", string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// Register creates an account, stores the returned bearer token on the
// client, and returns the raw auth payload.
func (c *Client) Register(ctx context.Context, email, password, displayName, role string) (map[string]json.RawMessage, error) {
	resp, err := c.Post(ctx, "/api/auth/register", map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
		"role":        role,
	})
	if err != nil {
		return nil, errors.Wrap(err, "post register")
	}
	return c.storeToken(resp)
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (map[string]json.RawMessage, error) {
	resp, err := c.Post(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "post login")
	}
	return c.storeToken(resp)
}

// Logout destroys the session and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.Post(ctx, "/api/auth/logout", nil)
	if err != nil {
		return errors.Wrap(err, "post logout")
	}
	var payload map[string]json.RawMessage
	if err = DecodeJSON(resp, &payload); err != nil {
		return errors.Wrap(err, "decode logout response")
	}
	c.token = ""
	return nil
}

func (c *Client) storeToken(resp *http.Response) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	if err := DecodeJSON(resp, &payload); err != nil {
		return nil, errors.Wrap(err, "decode auth response")
	}
	var token string
	if err := json.Unmarshal(payload["token"], &token); err != nil {
		return nil, errors.Wrap(err, "unmarshal token")
	}
	c.token = token
	return payload, nil
}
