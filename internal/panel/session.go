package panel

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	tokenCookie = "id_token"
	emailCookie = "user_email"

	// ID tokens are valid for one hour.
	sessionTTL = time.Hour
)

// Session is the signed-in user, carried in cookies between requests.
type Session struct {
	IDToken string
	Email   string
}

// LoggedIn reports whether s holds a token.
func (s Session) LoggedIn() bool {
	return s.IDToken != ""
}

func sessionFrom(c echo.Context) Session {
	var s Session
	if ck, err := c.Cookie(tokenCookie); err == nil {
		s.IDToken = ck.Value
	}
	if ck, err := c.Cookie(emailCookie); err == nil {
		s.Email = ck.Value
	}
	return s
}

func (p *Panel) saveSession(c echo.Context, s Session) {
	c.SetCookie(p.cookie(tokenCookie, s.IDToken, sessionTTL))
	c.SetCookie(p.cookie(emailCookie, s.Email, sessionTTL))
}

func (p *Panel) clearSession(c echo.Context) {
	c.SetCookie(p.cookie(tokenCookie, "", -1))
	c.SetCookie(p.cookie(emailCookie, "", -1))
}

func (p *Panel) cookie(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	} else {
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}
