package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/teamsales/salesportal/logger"
	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
	"github.com/teamsales/salesportal/services"
)

// storeTimeout bounds every store call made on behalf of a request.
const storeTimeout = 10 * time.Second

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{validator: services.Validator()}
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// actorOf returns the caller with the role from the loaded users document.
func actorOf(c echo.Context) (services.Actor, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok || session.Role() == nil {
		return services.Actor{}, false
	}
	actor := services.Actor{UID: session.UID, Role: *session.Role()}
	if actor.Role == models.RoleUppdragsgivare {
		actor.Menu = session.User.MenuComponents
	}
	return actor, true
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, models.Response{Status: status, Message: message, Data: data})
}

func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.Response{
		Status:  http.StatusUnauthorized,
		Message: "Authentication required",
		Data:    middleware.RedirectHint{Redirect: security.LoginPath},
	})
}

// bind decodes and validates the body into req. It writes the 400 itself and
// reports false when the request was rejected.
func bind(c echo.Context, req interface{}) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, respond(c, http.StatusBadRequest, "Invalid request body", nil)
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return false, respond(c, http.StatusBadRequest, "Validation failed", fieldErrors(verrs))
		}
		return false, respond(c, http.StatusBadRequest, err.Error(), nil)
	}
	return true, nil
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out[fe.Field()] = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		} else {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}

// errorStatus maps a service error onto an HTTP status. ok is false for
// errors without a mapping.
func errorStatus(err error) (status int, ok bool) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	}
	return 0, false
}

// message strips the sentinel prefix, so "validation failed: date is
// required" is shown as "date is required".
func message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{services.ErrValidation, services.ErrForbidden, services.ErrConflict, services.ErrInvalidCredentials} {
		if errors.Is(err, sentinel) {
			msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
		}
	}
	return msg
}

// fail writes err as a response envelope. Unmapped errors are logged and
// answered with fallback.
func fail(c echo.Context, err error, fallback string) error {
	status, ok := errorStatus(err)
	if !ok {
		logger.Get("app").WithError(err).WithField("path", c.Request().URL.Path).Error(fallback)
		return respond(c, http.StatusInternalServerError, fallback, nil)
	}
	if status == http.StatusForbidden {
		return c.JSON(status, models.Response{
			Status:  status,
			Message: message(err),
			Data:    middleware.RedirectHint{Redirect: security.UnauthorizedPath},
		})
	}
	if status == http.StatusNotFound {
		return respond(c, status, "Not found", nil)
	}
	return respond(c, status, message(err), nil)
}
