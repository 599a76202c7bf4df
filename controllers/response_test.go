package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
	"github.com/teamsales/salesportal/services"
)

func newContext(method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewCustomValidator()
	req := httptest.NewRequest(method, "/api/test", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFail_MapsServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", fmt.Errorf("%w: date is required", services.ErrValidation), http.StatusBadRequest, "date is required"},
		{"credentials keep the provider text", fmt.Errorf("%w: INVALID_PASSWORD", services.ErrInvalidCredentials), http.StatusUnauthorized, "INVALID_PASSWORD"},
		{"conflict", fmt.Errorf("%w: organization \"A\" already exists", services.ErrConflict), http.StatusConflict, "organization \"A\" already exists"},
		{"not found", fmt.Errorf("report r1: %w", services.ErrNotFound), http.StatusNotFound, "Not found"},
		{"store failure", errors.New("rpc error: unavailable"), http.StatusInternalServerError, services.ErrWriteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodPost, "")
			require.NoError(t, fail(c, tt.err, services.ErrWriteFailed))
			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.status, env.Status)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestFail_ForbiddenCarriesRedirect(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, fail(c, fmt.Errorf("%w: not your team", services.ErrForbidden), "x"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "not your team", env.Message)
	var hint middleware.RedirectHint
	require.NoError(t, json.Unmarshal(env.Data, &hint))
	assert.Equal(t, security.UnauthorizedPath, hint.Redirect)
}

func TestBind(t *testing.T) {
	c, rec := newContext(http.MethodPost, `{"email":"not-an-email","password":""}`)
	var req models.LoginRequest
	ok, err := bind(c, &req)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &fields))
	assert.Equal(t, "email", fields["Email"])
	assert.Equal(t, "required", fields["Password"])

	c, rec = newContext(http.MethodPost, `{"email":`)
	ok, err = bind(c, &req)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Invalid request body", decode(t, rec).Message)

	c, _ = newContext(http.MethodPost, `{"email":"anna@example.com","password":"hemligt"}`)
	ok, err = bind(c, &req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "anna@example.com", req.Email)
}

func TestActorOf_UsesLoadedRole(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	_, ok := actorOf(c)
	assert.False(t, ok)
	require.NoError(t, unauthenticated(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, _ = newContext(http.MethodGet, "")
	c.Set("session", security.Session{UID: "m1", User: &models.User{ID: "m1", Role: models.RoleSalesManager}})
	actor, ok := actorOf(c)
	require.True(t, ok)
	assert.Equal(t, services.Actor{UID: "m1", Role: models.RoleSalesManager}, actor)
}

func TestActorOf_ClientCarriesMenu(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	c.Set("session", security.Session{UID: "c1", User: &models.User{
		ID: "c1", Role: models.RoleUppdragsgivare, MenuComponents: []string{"client-dashboard"},
	}})
	actor, ok := actorOf(c)
	require.True(t, ok)
	assert.Equal(t, []string{"client-dashboard"}, actor.Menu)

	require.NoError(t, fail(c, services.ErrForbidden, "x"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}


func TestAttachment(t *testing.T) {
	c, rec := newContext(http.MethodGet, "")
	require.NoError(t, attachment(c, "statistik-2024-03-18.xlsx", bytes.NewBufferString("xlsx")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="statistik-2024-03-18.xlsx"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "xlsx", rec.Body.String())
}
