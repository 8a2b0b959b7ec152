package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
)

// ErrBackendUnreachable is returned when the backend cannot be contacted.
var ErrBackendUnreachable = errors.New("backend unreachable")

// BackendError is a non-success reply from the backend.
type BackendError struct {
	Status int
	// Body is the decoded JSON error body, nil when the reply was not JSON.
	Body map[string]interface{}
	Raw  string
}

func (e *BackendError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// Message returns the "error" field of the body, if any.
func (e *BackendError) Message() string {
	if e.Body == nil {
		return ""
	}
	msg, _ := e.Body["error"].(string)
	return msg
}

// RateLimited reports whether the backend blamed the completion quota.
func (e *BackendError) RateLimited() bool {
	return strings.Contains(strings.ToLower(e.Message()), "rate limit")
}

// PrettyBody renders Body as indented JSON.
func (e *BackendError) PrettyBody() string {
	if e.Body == nil {
		return ""
	}
	data, err := json.MarshalIndent(e.Body, "", "  ")
	if err != nil {
		return e.Raw
	}
	return string(data)
}

// HTTPBackend is an HTTP client for the workflow automator backend.
type HTTPBackend struct {
	url    string
	client *http.Client
}

// NewHTTPBackend creates a new HTTPBackend. client may be nil.
func NewHTTPBackend(url string, client *http.Client) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPBackend{url: strings.TrimRight(url, "/"), client: client}
}

// URL returns the backend base URL.
func (c *HTTPBackend) URL() string {
	return c.url
}

// Register asks the backend to create an account.
func (c *HTTPBackend) Register(ctx context.Context, email, password string) error {
	return c.post(ctx, "/register", "", map[string]string{"email": email, "password": password}, http.StatusCreated, nil)
}

// Automate sends command to the backend on behalf of the holder of idToken.
func (c *HTTPBackend) Automate(ctx context.Context, idToken, command string) (*automation.Outcome, error) {
	var outcome automation.Outcome
	if err := c.post(ctx, "/automate", idToken, map[string]string{"command": command}, http.StatusOK, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (c *HTTPBackend) post(ctx context.Context, path, idToken string, body interface{}, want int, out interface{}) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idToken != "" {
		req.Header.Set("Authorization", "Bearer "+idToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != want {
		berr := &BackendError{Status: resp.StatusCode, Raw: string(data)}
		var decoded map[string]interface{}
		if json.Unmarshal(data, &decoded) == nil {
			berr.Body = decoded
		}
		return berr
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
