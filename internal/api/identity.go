package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/manya-08/ai-workflow-automator-project/internal/auth"
)

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest is the body of POST /verify_token.
type VerifyRequest struct {
	IDToken string `json:"idToken"`
}

// IdentityResponse is returned by register and verify_token.
type IdentityResponse struct {
	Message string `json:"message"`
	UID     string `json:"uid"`
	Email   string `json:"email"`
}

// Register creates an account
// (POST /register)
func (s *Server) Register(c echo.Context) error {
	var req RegisterRequest
	if err := decodeBody(c, &req); err != nil || req.Email == "" || req.Password == "" {
		return writeError(c, http.StatusBadRequest, "Email and password are required.")
	}

	user, err := s.identity.Register(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrEmailExists) {
		return writeError(c, http.StatusConflict, "Email already registered.")
	}
	if err != nil {
		s.logger.Warn("registration failed", "error", err)
		return writeError(c, http.StatusInternalServerError, "Failed to register user: "+err.Error())
	}

	return c.JSON(http.StatusCreated, IdentityResponse{
		Message: "User created successfully!",
		UID:     user.UID,
		Email:   user.Email,
	})
}

// VerifyToken checks an ID token
// (POST /verify_token)
func (s *Server) VerifyToken(c echo.Context) error {
	var req VerifyRequest
	if err := decodeBody(c, &req); err != nil || req.IDToken == "" {
		return writeError(c, http.StatusBadRequest, "ID token is missing.")
	}

	user, err := s.identity.VerifyToken(c.Request().Context(), req.IDToken)
	if err != nil {
		status, msg := auth.VerifyErrorStatus(err)
		return writeError(c, status, msg)
	}

	return c.JSON(http.StatusOK, IdentityResponse{
		Message: "Token verified successfully!",
		UID:     user.UID,
		Email:   user.Email,
	})
}
