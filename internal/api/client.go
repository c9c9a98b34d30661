package api

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
)

// ErrUnauthenticated means no usable session credential is available
// locally. Calls fail with it before any network I/O happens.
var ErrUnauthenticated = errors.New("not logged in")

// RequestError is a non-2xx response from the backend. Detail carries the
// server's error message when the body had one.
type RequestError struct {
	Status int
	Detail string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Detail)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TokenSource yields the current bearer credential. It is expected to fail
// when no one is logged in or the stored session has expired.
type TokenSource interface {
	Token() (string, error)
}

// Client talks to the Medical RAG backend. Every authenticated call
// resolves a bearer token from the source first and fails fast without it.
// No retries: a failed call is the caller's decision to repeat.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// do issues an authenticated JSON request and decodes a 2xx body into out
// when out is non-nil. header entries are added verbatim to the request.
func (c *Client) do(ctx context.Context, method, path string, body, out any, header map[string]string) error {
	if c.tokens == nil {
		return ErrUnauthenticated
	}
	token, err := c.tokens.Token()
	if err != nil {
		return ErrUnauthenticated
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	return unmarshalBody(respBody, out)
}

// doUnauthenticated issues a JSON request without a bearer token, for the
// pre-login auth endpoints.
func (c *Client) doUnauthenticated(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	return unmarshalBody(respBody, out)
}

func unmarshalBody(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// errorFromResponse extracts the backend's {"detail": ...} message when
// present, falling back to the status text.
func errorFromResponse(status int, body []byte) error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		return &RequestError{Status: status, Detail: payload.Detail}
	}
	return &RequestError{Status: status, Detail: http.StatusText(status)}
}
