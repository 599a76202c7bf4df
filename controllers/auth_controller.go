package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/services"
)

type AuthController struct {
	auth     *services.AuthService
	sessions *services.SessionService
}

func NewAuthController(auth *services.AuthService, sessions *services.SessionService) *AuthController {
	return &AuthController{auth: auth, sessions: sessions}
}

// Login signs in with email and password and returns a session token.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := ac.auth.Login(ctx, req)
	if err != nil {
		return fail(c, err, "Login failed")
	}
	return respond(c, http.StatusOK, "Login successful", result)
}

// Logout revokes the caller's token.
func (ac *AuthController) Logout(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ac.auth.Logout(ctx, middleware.GetUserFromToken(c)); err != nil {
		return fail(c, err, "Logout failed")
	}
	return respond(c, http.StatusOK, "Logged out", nil)
}

func (ac *AuthController) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ac.auth.ResetPassword(ctx, req.Email); err != nil {
		// provider and mail errors are shown as they are
		if _, mapped := errorStatus(err); mapped {
			return fail(c, err, "")
		}
		return respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	return respond(c, http.StatusOK, "Password reset email sent", nil)
}

// Session returns the signed-in user, their navigation and where to land.
// It is reachable with an incomplete profile.
func (ac *AuthController) Session(c echo.Context) error {
	uid, err := middleware.ExtractUserID(c)
	if err != nil {
		return unauthenticated(c)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	view, err := ac.sessions.View(ctx, uid)
	if err != nil {
		return fail(c, err, "Could not load session")
	}
	return respond(c, http.StatusOK, "Session loaded", view)
}

// Navigate runs the route guard for ?path= and returns the decision.
func (ac *AuthController) Navigate(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return respond(c, http.StatusBadRequest, "path is required", nil)
	}
	uid, _ := middleware.ExtractUserID(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	decision, err := ac.sessions.Resolve(ctx, uid, path)
	if err != nil {
		return fail(c, err, "Could not load session")
	}
	return respond(c, http.StatusOK, string(decision.Outcome), decision)
}
