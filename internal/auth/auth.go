package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Options configures New.
type Options struct {
	// ServiceAccountJSON enables account management. Without it only token
	// verification is available, and only if ProjectID is known.
	ServiceAccountJSON []byte
	ProjectID          string
	BaseURL            string
	JWKSURL            string
}

// Auth verifies identity-service ID tokens and manages accounts.
type Auth struct {
	projectID string
	baseURL   string
	admin     *http.Client
	verifier  *oidc.IDTokenVerifier
	logger    Logger
}

// New creates a new Auth. ctx must outlive the Auth since it is used to
// refresh signing keys and service-account tokens.
func New(ctx context.Context, opts Options, logger Logger) (*Auth, error) {
	a := &Auth{
		projectID: opts.ProjectID,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		logger:    logger,
	}
	if a.baseURL == "" {
		a.baseURL = DefaultIdentityBaseURL
	}

	if len(opts.ServiceAccountJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, opts.ServiceAccountJSON, AdminScopes...)
		if err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		if a.projectID == "" {
			a.projectID = creds.ProjectID
		}
		a.admin = oauth2.NewClient(ctx, creds.TokenSource)
	}

	if a.projectID != "" {
		jwks := opts.JWKSURL
		if jwks == "" {
			jwks = DefaultJWKSURL
		}
		keySet := oidc.NewRemoteKeySet(ctx, jwks)
		a.verifier = oidc.NewVerifier(issuerPrefix+a.projectID, keySet, &oidc.Config{ClientID: a.projectID})
	}

	return a, nil
}

// CanManageAccounts reports whether service-account credentials were loaded.
func (a *Auth) CanManageAccounts() bool {
	return a != nil && a.admin != nil && a.projectID != ""
}

// CanVerify reports whether ID tokens can be verified.
func (a *Auth) CanVerify() bool {
	return a != nil && a.verifier != nil
}

// Register creates an email/password account.
func (a *Auth) Register(ctx context.Context, email, password string) (*User, error) {
	if !a.CanManageAccounts() {
		return nil, ErrNotConfigured
	}

	var out struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	url := fmt.Sprintf("%s/v1/projects/%s/accounts", a.baseURL, a.projectID)
	body := map[string]interface{}{"email": email, "password": password}
	if err := postJSON(ctx, a.admin, url, body, &out); err != nil {
		return nil, err
	}
	if out.Email == "" {
		out.Email = email
	}
	a.logger.Info("user registered", "uid", out.LocalID)
	return &User{UID: out.LocalID, Email: out.Email}, nil
}

// VerifyToken checks signature, issuer, audience and expiry of idToken and,
// when account management is available, that the account is not disabled.
func (a *Auth) VerifyToken(ctx context.Context, idToken string) (*User, error) {
	if !a.CanVerify() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, ErrNotConfigured)
	}

	token, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		if strings.Contains(err.Error(), "token is expired") {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	user := &User{UID: token.Subject, Email: claims.Email}

	if a.CanManageAccounts() {
		disabled, err := a.isDisabled(ctx, user.UID)
		switch {
		case err != nil:
			a.logger.Warn("account lookup failed, accepting verified token", "uid", user.UID, "error", err)
		case disabled:
			return nil, ErrUserDisabled
		}
	}
	return user, nil
}

func (a *Auth) isDisabled(ctx context.Context, uid string) (bool, error) {
	var out struct {
		Users []struct {
			LocalID  string `json:"localId"`
			Disabled bool   `json:"disabled"`
		} `json:"users"`
	}
	url := fmt.Sprintf("%s/v1/projects/%s/accounts:lookup", a.baseURL, a.projectID)
	if err := postJSON(ctx, a.admin, url, map[string]interface{}{"localId": []string{uid}}, &out); err != nil {
		return false, err
	}
	if len(out.Users) == 0 {
		return false, errors.New("account not found")
	}
	return out.Users[0].Disabled, nil
}

type principalKey struct{}

// WithPrincipal stores the authenticated user in ctx.
func WithPrincipal(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, principalKey{}, user)
}

// PrincipalFrom returns the authenticated user stored by RequireAuth.
func PrincipalFrom(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(principalKey{}).(*User)
	return user, ok && user != nil
}

// RequireAuth is middleware that ensures a valid ID token is presented, as a
// Bearer header or an id_token cookie, and stores the user in the request
// context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw string
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			raw = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := r.Cookie("id_token"); err == nil {
			raw = cookie.Value
		}
		if raw == "" {
			writeAuthError(w, http.StatusUnauthorized, "ID token is missing.")
			return
		}

		user, err := a.VerifyToken(r.Context(), raw)
		if err != nil {
			status, msg := VerifyErrorStatus(err)
			writeAuthError(w, status, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// VerifyErrorStatus maps a VerifyToken error to an HTTP status and message.
func VerifyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrUserDisabled):
		return http.StatusForbidden, "User account is disabled."
	case errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized, "ID token has expired."
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or malformed ID token."
	default:
		return http.StatusUnauthorized, "Failed to verify token: " + err.Error()
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
