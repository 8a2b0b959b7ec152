package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Session is what a successful password sign-in returns.
type Session struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	UID          string `json:"localId"`
	ExpiresIn    string `json:"expiresIn"`
}

// PasswordSignIn signs users in with the public web API key. It is the
// client-side half of the identity service and needs no admin credentials.
type PasswordSignIn struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewPasswordSignIn creates a PasswordSignIn. baseURL may be empty.
func NewPasswordSignIn(apiKey, baseURL string, client *http.Client) *PasswordSignIn {
	if baseURL == "" {
		baseURL = DefaultIdentityBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PasswordSignIn{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SignIn exchanges email and password for an ID token.
func (p *PasswordSignIn) SignIn(ctx context.Context, email, password string) (*Session, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts:signInWithPassword?key=%s", p.baseURL, url.QueryEscape(p.apiKey))
	body := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var session Session
	if err := postJSON(ctx, p.client, endpoint, body, &session); err != nil {
		return nil, err
	}
	if session.Email == "" {
		session.Email = email
	}
	return &session, nil
}
