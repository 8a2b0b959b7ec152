package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Errors reported by the identity service, mapped from its error codes.
var (
	ErrNotConfigured      = errors.New("identity service is not configured")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid or malformed ID token")
	ErrTokenExpired       = errors.New("ID token has expired")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)

// ServiceError is an error response from the identity REST API.
type ServiceError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" && e.Message != e.Code {
		return fmt.Sprintf("identity service error %d: %s (%s)", e.HTTPStatus, e.Code, e.Message)
	}
	return fmt.Sprintf("identity service error %d: %s", e.HTTPStatus, e.Code)
}

// Unwrap maps well-known codes to the sentinel errors above.
func (e *ServiceError) Unwrap() error {
	switch e.Code {
	case "EMAIL_EXISTS", "DUPLICATE_EMAIL":
		return ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_NOT_FOUND":
		return ErrInvalidCredentials
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyAttempts
	case "USER_DISABLED":
		return ErrUserDisabled
	case "INVALID_ID_TOKEN":
		return ErrInvalidToken
	case "TOKEN_EXPIRED":
		return ErrTokenExpired
	}
	return nil
}

// User identifies an account.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// postJSON sends body to url and decodes a 2xx reply into out.
func postJSON(ctx context.Context, client *http.Client, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseServiceError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

func parseServiceError(status int, data []byte) error {
	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error.Message == "" {
		return &ServiceError{HTTPStatus: status, Code: http.StatusText(status), Message: strings.TrimSpace(string(data))}
	}
	// messages look like "WEAK_PASSWORD : Password should be at least 6 characters"
	code, detail, _ := strings.Cut(envelope.Error.Message, " : ")
	code = strings.TrimSpace(code)
	if detail == "" {
		detail = code
	}
	return &ServiceError{HTTPStatus: status, Code: code, Message: strings.TrimSpace(detail)}
}
