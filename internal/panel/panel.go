// Package panel is the browser front end: a sign-in sidebar and a command
// form that talks to the backend on the user's behalf.
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
	"github.com/manya-08/ai-workflow-automator-project/internal/automation"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SignIner exchanges email and password for a session.
type SignIner interface {
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
}

// Backend is the part of the backend API the panel calls.
type Backend interface {
	URL() string
	Register(ctx context.Context, email, password string) error
	Automate(ctx context.Context, idToken, command string) (*automation.Outcome, error)
}

// Flash kinds, matching the CSS classes in the page template.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashError   = "error"
)

// Flash is a one-off notice shown at the top of the page.
type Flash struct {
	Kind string
	Text string
}

// PageData is everything the page template renders.
type PageData struct {
	Session    Session
	AuthChoice string
	Flashes    []Flash
	Command    string

	Outcome    *automation.Outcome
	ParsedJSON string

	ErrorStatus   int
	ErrorJSON     string
	FailedCommand string
}

func (d *PageData) flash(kind, text string) {
	d.Flashes = append(d.Flashes, Flash{Kind: kind, Text: text})
}

// Panel serves the browser front end.
type Panel struct {
	signIn        SignIner
	backend       Backend
	logger        Logger
	secureCookies bool
}

// New creates a new Panel. Set secureCookies when served over TLS.
func New(signIn SignIner, backend Backend, logger Logger, secureCookies bool) *Panel {
	return &Panel{signIn: signIn, backend: backend, logger: logger, secureCookies: secureCookies}
}

// RegisterRoutes mounts the panel routes on e.
func (p *Panel) RegisterRoutes(e *echo.Echo) {
	e.GET("/", p.Home)
	e.POST("/login", p.Login)
	e.POST("/register", p.Register)
	e.POST("/logout", p.Logout)
	e.POST("/automate", p.Automate)
}

func (p *Panel) render(c echo.Context, data *PageData) error {
	if data.AuthChoice == "" {
		data.AuthChoice = "Login"
	}
	if !data.Session.LoggedIn() {
		data.flash(FlashInfo, "Please log in or register to use the workflow automator.")
	}
	return c.Render(http.StatusOK, "page.html", data)
}

// Home renders the page for the current session.
func (p *Panel) Home(c echo.Context) error {
	return p.render(c, &PageData{Session: sessionFrom(c), AuthChoice: c.QueryParam("choice")})
}

// Login signs the user in and stores the session cookies.
func (p *Panel) Login(c echo.Context) error {
	data := &PageData{AuthChoice: "Login"}
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	session, err := p.signIn.SignIn(c.Request().Context(), email, password)
	if err != nil {
		data.flash(FlashError, loginErrorMessage(err))
		return p.render(c, data)
	}

	data.Session = Session{IDToken: session.IDToken, Email: session.Email}
	p.saveSession(c, data.Session)
	p.logger.Info("user logged in", "uid", session.UID)
	data.flash(FlashSuccess, "Logged in successfully!")
	return p.render(c, data)
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, auth.ErrTooManyAttempts):
		return "Too many failed login attempts. Please try again later."
	default:
		return "Login failed: " + err.Error()
	}
}

// Register creates an account through the backend.
func (p *Panel) Register(c echo.Context) error {
	data := &PageData{AuthChoice: "Register"}
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	err := p.backend.Register(c.Request().Context(), email, password)
	var berr *BackendError
	switch {
	case err == nil:
		data.flash(FlashSuccess, "User registered successfully! You can now log in.")
		data.flash(FlashInfo, "Registration successful. Please use the 'Login' tab to sign in.")
		data.AuthChoice = "Login"
	case errors.Is(err, ErrBackendUnreachable):
		data.flash(FlashError, "Could not connect to the backend for registration. Is the server running at "+p.backend.URL()+"?")
	case errors.As(err, &berr):
		msg := berr.Message()
		if msg == "" {
			msg = "Unknown error"
		}
		data.flash(FlashError, "Backend registration failed: "+msg)
	default:
		data.flash(FlashError, "An unexpected error occurred during backend registration: "+err.Error())
	}
	return p.render(c, data)
}

// Logout clears the session cookies.
func (p *Panel) Logout(c echo.Context) error {
	p.clearSession(c)
	data := &PageData{}
	data.flash(FlashSuccess, "Logged out successfully.")
	return p.render(c, data)
}

// Automate forwards a command to the backend and renders the outcome.
func (p *Panel) Automate(c echo.Context) error {
	data := &PageData{Session: sessionFrom(c)}
	if !data.Session.LoggedIn() {
		return p.render(c, data)
	}

	command := strings.TrimSpace(c.FormValue("command"))
	data.Command = c.FormValue("command")
	if command == "" {
		data.flash(FlashWarning, "Please enter a command to automate!")
		return p.render(c, data)
	}

	outcome, err := p.backend.Automate(c.Request().Context(), data.Session.IDToken, command)
	if err != nil {
		p.showAutomateError(c, data, command, err)
		return p.render(c, data)
	}

	data.Outcome = outcome
	if pretty, err := json.MarshalIndent(outcome.ParsedWorkflow, "", "  "); err == nil {
		data.ParsedJSON = string(pretty)
	}
	msg := outcome.Message
	if msg == "" {
		msg = "Workflow processed successfully!"
	}
	data.flash(FlashSuccess, msg)
	return p.render(c, data)
}

func (p *Panel) showAutomateError(c echo.Context, data *PageData, command string, err error) {
	var berr *BackendError
	switch {
	case errors.Is(err, ErrBackendUnreachable):
		data.flash(FlashError, "Could not connect to the backend! Make sure the server is running at "+p.backend.URL()+".")
	case errors.As(err, &berr):
		data.ErrorStatus = berr.Status
		data.FailedCommand = command
		data.ErrorJSON = berr.PrettyBody()
		if data.ErrorJSON == "" {
			data.flash(FlashError, "Received an unreadable error response from the backend.")
		}
		if berr.RateLimited() {
			data.flash(FlashWarning, "Google Gemini API quota limit hit. Please wait a while before trying again.")
		}
		if berr.Status == http.StatusUnauthorized {
			// the token was rejected, so the stored session is useless
			p.clearSession(c)
			data.Session = Session{}
		}
	default:
		p.logger.Error("automate request failed", "error", err)
		data.flash(FlashError, "An unexpected error occurred: "+err.Error())
	}
}
