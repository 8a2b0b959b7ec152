package panel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/logging"
)

type fakeSignIn struct {
	err error
}

func (f *fakeSignIn) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &auth.Session{IDToken: "tok-1", Email: email, UID: "uid-1"}, nil
}

// fakeBackend serves canned /register and /automate replies and records the
// Authorization header it saw.
func fakeBackend(t *testing.T, automateStatus int, automateBody string) (*httptest.Server, *string) {
	t.Helper()
	var seenAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/register":
			body, _ := io.ReadAll(r.Body)
			if strings.Contains(string(body), "taken@acme.com") {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"error":"Email already registered."}`)
				return
			}
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"message":"User created successfully!","uid":"u","email":"a@b.com"}`)
		case "/automate":
			seenAuth = r.Header.Get("Authorization")
			w.WriteHeader(automateStatus)
			fmt.Fprint(w, automateBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &seenAuth
}

func newTestPanel(t *testing.T, signIn SignIner, backendURL string) *echo.Echo {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = renderer
	New(signIn, NewHTTPBackend(backendURL, nil), logging.NewNop(), false).RegisterRoutes(e)
	return e
}

func postForm(e *echo.Echo, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

var sessionCookies = []*http.Cookie{
	{Name: tokenCookie, Value: "tok-1"},
	{Name: emailCookie, Value: "user@acme.com"},
}

func TestHome_SignedOut(t *testing.T) {
	e := newTestPanel(t, &fakeSignIn{}, "http://unused")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please log in or register to use the workflow automator.")
	assert.Contains(t, rec.Body.String(), `action="/login"`)
	assert.NotContains(t, rec.Body.String(), "Automate Workflow!")
}

func TestLogin_SetsSessionCookies(t *testing.T) {
	e := newTestPanel(t, &fakeSignIn{}, "http://unused")

	rec := postForm(e, "/login", url.Values{"email": {"user@acme.com"}, "password": {"pw"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged in successfully!")
	assert.Contains(t, rec.Body.String(), "Logged in as: user@acme.com")

	token := cookieNamed(rec, tokenCookie)
	require.NotNil(t, token)
	assert.Equal(t, "tok-1", token.Value)
	assert.True(t, token.HttpOnly)
	assert.Equal(t, "user@acme.com", cookieNamed(rec, emailCookie).Value)
}

func TestLogin_ErrorMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&auth.ServiceError{HTTPStatus: 400, Code: "INVALID_LOGIN_CREDENTIALS"}, "Invalid email or password."},
		{&auth.ServiceError{HTTPStatus: 400, Code: "EMAIL_NOT_FOUND"}, "Invalid email or password."},
		{&auth.ServiceError{HTTPStatus: 400, Code: "TOO_MANY_ATTEMPTS_TRY_LATER"}, "Too many failed login attempts. Please try again later."},
		{fmt.Errorf("dial tcp: refused"), "Login failed: dial tcp: refused"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			e := newTestPanel(t, &fakeSignIn{err: tc.err}, "http://unused")
			rec := postForm(e, "/login", url.Values{"email": {"a@b.com"}, "password": {"x"}})
			assert.Contains(t, rec.Body.String(), tc.want)
			assert.Nil(t, cookieNamed(rec, tokenCookie))
		})
	}
}

func TestRegister(t *testing.T) {
	srv, _ := fakeBackend(t, http.StatusOK, `{}`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/register", url.Values{"email": {"new@acme.com"}, "password": {"secret1"}})
	assert.Contains(t, rec.Body.String(), "User registered successfully! You can now log in.")

	rec = postForm(e, "/register", url.Values{"email": {"taken@acme.com"}, "password": {"secret1"}})
	assert.Contains(t, rec.Body.String(), "Backend registration failed: Email already registered.")
}

func TestRegister_BackendDown(t *testing.T) {
	e := newTestPanel(t, &fakeSignIn{}, "http://127.0.0.1:1")
	rec := postForm(e, "/register", url.Values{"email": {"a@b.com"}, "password": {"secret1"}})
	assert.Contains(t, rec.Body.String(), "Could not connect to the backend for registration.")
}

func TestLogout_ClearsCookies(t *testing.T) {
	e := newTestPanel(t, &fakeSignIn{}, "http://unused")
	rec := postForm(e, "/logout", url.Values{}, sessionCookies...)

	assert.Contains(t, rec.Body.String(), "Logged out successfully.")
	token := cookieNamed(rec, tokenCookie)
	require.NotNil(t, token)
	assert.Empty(t, token.Value)
	assert.Equal(t, -1, token.MaxAge)
}

func TestAutomate_Success(t *testing.T) {
	srv, seenAuth := fakeBackend(t, http.StatusOK, `{
		"message": "Workflow parsed, saved, and executed!",
		"original_command": "ping the team",
		"parsed_workflow": {"trigger": {"type": "manual_trigger", "details": {}}, "actions": []},
		"execution_results": [
			{"action_type": "send_slack_notification", "success": true, "message": "Slack notification sent successfully."},
			{"action_type": "send_email", "success": false, "message": "Failed to send email: boom"}
		]
	}`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/automate", url.Values{"command": {"ping the team"}}, sessionCookies...)
	body := rec.Body.String()
	assert.Equal(t, "Bearer tok-1", *seenAuth)
	assert.Contains(t, body, "Workflow parsed, saved, and executed!")
	assert.Contains(t, body, "manual_trigger")
	assert.Contains(t, body, "Slack notification sent successfully.")
	assert.Contains(t, body, "Failed to send email: boom")
	assert.Contains(t, body, "This workflow has been saved to your database!")
}

func TestAutomate_RateLimitError(t *testing.T) {
	srv, _ := fakeBackend(t, http.StatusTooManyRequests,
		`{"error":"Gemini API rate limit exceeded. Please try again later.","status_code":429}`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/automate", url.Values{"command": {"do it"}}, sessionCookies...)
	body := rec.Body.String()
	assert.Contains(t, body, "Error from backend (Status: 429)")
	assert.Contains(t, body, "Google Gemini API quota limit hit.")
	assert.Contains(t, body, "The command that caused the error was:")
	assert.Contains(t, body, "do it")
}

func TestAutomate_UnreadableError(t *testing.T) {
	srv, _ := fakeBackend(t, http.StatusInternalServerError, `<html>oops</html>`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/automate", url.Values{"command": {"do it"}}, sessionCookies...)
	assert.Contains(t, rec.Body.String(), "Received an unreadable error response from the backend.")
}

func TestAutomate_ExpiredTokenSignsOut(t *testing.T) {
	srv, _ := fakeBackend(t, http.StatusUnauthorized, `{"error":"ID token has expired."}`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/automate", url.Values{"command": {"do it"}}, sessionCookies...)
	assert.Contains(t, rec.Body.String(), "ID token has expired.")
	token := cookieNamed(rec, tokenCookie)
	require.NotNil(t, token)
	assert.Empty(t, token.Value)
}

func TestAutomate_RequiresCommandAndSession(t *testing.T) {
	srv, seenAuth := fakeBackend(t, http.StatusOK, `{}`)
	e := newTestPanel(t, &fakeSignIn{}, srv.URL)

	rec := postForm(e, "/automate", url.Values{"command": {"   "}}, sessionCookies...)
	assert.Contains(t, rec.Body.String(), "Please enter a command to automate!")

	rec = postForm(e, "/automate", url.Values{"command": {"do it"}})
	assert.Contains(t, rec.Body.String(), "Please log in or register")
	assert.Empty(t, *seenAuth)
}
