// Package request is the typed call interface used by every storefront feature.
// It adds the CSRF header to mutating calls and unwraps the API envelope.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"storefront.GO/client/gateway"
)

const maxBodyBytes = 8 << 20

// Client issues calls through a gateway.Gateway, so authorization renewal stays
// invisible to callers.
type Client struct {
	gw     *gateway.Gateway
	logger *zap.Logger
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *envelopeError  `json:"error"`
}

type envelopeError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// New constructs a Client over gw.
func New(gw *gateway.Gateway, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{gw: gw, logger: logger}
}

// Gateway exposes the underlying gateway (session events, CSRF state).
func (c *Client) Gateway() *gateway.Gateway {
	return c.gw
}

// Get calls path with query and decodes the envelope data into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch sends body as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete calls path with DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do performs one call. out may be nil when the payload is not needed.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if isMutating(method) {
		c.gw.EnsureCSRFToken(ctx)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	resp, err := c.gw.Do(ctx, req, true)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	defer resp.Body.Close()

	if err := decode(resp, out); err != nil {
		if !IsCanceled(err) {
			c.logger.Debug("api call failed",
				zap.String("method", method), zap.String("path", path),
				zap.Int("status", resp.StatusCode), zap.Error(err))
		}
		return err
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, fmt.Errorf("request: encode payload: %w", err)
		}
		reader = bytes.NewReader(buf.Bytes())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.gw.URL(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("request: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if isMutating(method) {
		if token := c.gw.CSRFToken(); token != "" {
			req.Header.Set(gateway.CSRFHeader, token)
		}
	}
	return req, nil
}

// decode unwraps {"data": ...} or {"error": {...}}.
func decode(resp *http.Response, out any) error {
	success := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if success && resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequestFailed, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !success {
			return &Error{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("request failed with status %d", resp.StatusCode),
				Err:     ErrRequestFailed,
			}
		}
		return &Error{Status: resp.StatusCode, Message: ErrInvalidResponseFormat.Error(), Err: ErrInvalidResponseFormat}
	}

	if !success {
		apiErr := &Error{Status: resp.StatusCode, Message: "request failed"}
		if env.Error != nil {
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Code = env.Error.Code
		}
		return apiErr
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{
			Status:  resp.StatusCode,
			Message: ErrInvalidResponseFormat.Error(),
			Err:     fmt.Errorf("%w: %w", ErrInvalidResponseFormat, err),
		}
	}
	return nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
