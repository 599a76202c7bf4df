package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

const testSecret = "middleware-test-secret"

type revokedSet map[string]bool

func (r revokedSet) IsRevoked(_ context.Context, id string) bool { return r[id] }

type sessionsByUID map[string]security.Session

func (s sessionsByUID) LoadSession(_ context.Context, uid string) (security.Session, error) {
	session, ok := s[uid]
	if !ok {
		return security.Session{}, errors.New("not found")
	}
	return session, nil
}

func fullProfile() models.Profile {
	return models.Profile{
		Personnummer: "19900101-1234", Adress: "Storgatan 1", PostnummerOrt: "111 22 Stockholm",
		Bank: "Nordea", Clearingnummer: "3300", Kontonummer: "1234567", Telefon: "070-1234567",
		AnhorigNamn: "Bo", AnhorigTelefon: "070-7654321",
	}
}

func sessionFor(uid string, role models.Role, complete bool) security.Session {
	u := &models.User{ID: uid, Name: "Test", Email: uid + "@example.com", Role: role}
	if complete {
		u.Profile = fullProfile()
	}
	return security.Session{UID: uid, User: u}
}

func token(t *testing.T, uid string, role models.Role) (string, *JwtCustomClaims) {
	t.Helper()
	signed, claims, err := NewTokenIssuer(testSecret, time.Hour).GenerateJWT(uid, uid+"@example.com", role)
	require.NoError(t, err)
	return signed, claims
}

func serve(e *echo.Echo, method, target, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, models.Response{Status: http.StatusOK, Message: "ok"})
}

func hint(t *testing.T, rec *httptest.ResponseRecorder) RedirectHint {
	t.Helper()
	var body struct {
		Data RedirectHint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestJWTMiddleware(t *testing.T) {
	revoked := revokedSet{}
	e := echo.New()
	e.GET("/api/me", func(c echo.Context) error {
		uid, err := ExtractUserID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, uid+" "+string(ExtractRole(c)))
	}, JWTMiddleware(testSecret, revoked))

	signed, claims := token(t, "u1", models.RoleUser)

	rec := serve(e, http.MethodGet, "/api/me", signed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1 user", rec.Body.String())

	rec = serve(e, http.MethodGet, "/api/me?token="+signed, "")
	assert.Equal(t, http.StatusOK, rec.Code, "websocket clients pass the token as a query parameter")

	rec = serve(e, http.MethodGet, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, security.LoginPath, hint(t, rec).Redirect)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/me", "garbage").Code)

	other, _, err := NewTokenIssuer("another-secret", time.Hour).GenerateJWT("u1", "x", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/api/me", other).Code)

	revoked[claims.Id] = true
	rec = serve(e, http.MethodGet, "/api/me", signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Status)
	assert.Equal(t, "Token has been invalidated", body.Message)
}

func TestGenerateJWT_UniqueIDs(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	_, a, err := issuer.GenerateJWT("u1", "a", models.RoleUser)
	require.NoError(t, err)
	_, b, err := issuer.GenerateJWT("u1", "a", models.RoleUser)
	require.NoError(t, err)
	assert.NotEqual(t, a.Id, b.Id)
	assert.Equal(t, a.IssuedAt+int64(time.Hour.Seconds()), a.ExpiresAt)
}

func guarded(sessions sessionsByUID, roles ...models.Role) *echo.Echo {
	e := echo.New()
	api := e.Group("/api", JWTMiddleware(testSecret, nil), LoadSession(sessions), RequireCompleteProfile("/api/profile", "/api/session"))
	api.GET("/profile", ok)
	api.GET("/session", ok)
	api.GET("/manager/team", ok, RequireRoles(roles...))
	return e
}

func TestRequireRoles(t *testing.T) {
	e := guarded(sessionsByUID{
		"admin": sessionFor("admin", models.RoleAdmin, true),
		"mgr":   sessionFor("mgr", models.RoleSalesManager, true),
		"user":  sessionFor("user", models.RoleUser, true),
	}, models.RoleSalesManager)

	for uid, want := range map[string]int{"admin": http.StatusOK, "mgr": http.StatusOK, "user": http.StatusForbidden} {
		signed, _ := token(t, uid, models.RoleUser)
		rec := serve(e, http.MethodGet, "/api/manager/team", signed)
		assert.Equal(t, want, rec.Code, uid)
		if want == http.StatusForbidden {
			assert.Equal(t, security.UnauthorizedPath, hint(t, rec).Redirect)
		}
	}

	signed, _ := token(t, "ghost", models.RoleAdmin)
	rec := serve(e, http.MethodGet, "/api/manager/team", signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, security.LoginPath, hint(t, rec).Redirect)
}

func TestRequireCompleteProfile(t *testing.T) {
	suppressed := sessionFor("creator", models.RoleSalesManager, false)
	suppressed.SuppressProfileGate = true
	e := guarded(sessionsByUID{
		"incomplete": sessionFor("incomplete", models.RoleAdmin, false),
		"creator":    suppressed,
	}, models.RoleSalesManager)

	signed, _ := token(t, "incomplete", models.RoleAdmin)
	rec := serve(e, http.MethodGet, "/api/manager/team", signed)
	assert.Equal(t, http.StatusForbidden, rec.Code, "admins are gated on their profile too")
	h := hint(t, rec)
	assert.Equal(t, security.ProfilePath, h.Redirect)
	assert.Contains(t, h.Missing, "telefon")

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/profile", signed).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/session", signed).Code)

	signed, _ = token(t, "creator", models.RoleSalesManager)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/manager/team", signed).Code)
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.SetLimit("/api/auth/login", time.Hour, 2)
	e := echo.New()
	e.Use(limiter.RateLimit())
	e.POST("/api/auth/login", ok)
	e.GET("/api/ping", ok)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/auth/login", "").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodPost, "/api/auth/login", "").Code)
	rec := serve(e, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body struct {
		Status  int       `json:"status"`
		Message string    `json:"message"`
		Data    RetryHint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusTooManyRequests, body.Status)
	assert.NotEmpty(t, body.Data.RetryAfter)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/ping", "").Code, "limits are per route")

	limiter.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	limiter.sweep()
	limiter.mu.Lock()
	assert.Empty(t, limiter.blocked)
	limiter.mu.Unlock()
}

func TestRateLimiter_SweepDropsIdleVisitors(t *testing.T) {
	limiter := NewRateLimiter()
	e := echo.New()
	e.Use(limiter.RateLimit())
	e.GET("/api/ping", ok)
	e.GET("/api/pong", ok)

	start := time.Now()
	limiter.now = func() time.Time { return start }
	serve(e, http.MethodGet, "/api/ping", "")
	limiter.now = func() time.Time { return start.Add(8 * time.Minute) }
	serve(e, http.MethodGet, "/api/pong", "")

	limiter.now = func() time.Time { return start.Add(12 * time.Minute) }
	limiter.sweep()
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.visitors, 1)
	_, kept := limiter.visitors["192.0.2.1 /api/pong"]
	assert.True(t, kept, "recently used limiter is kept")
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders(SecurityConfig{ConnectSources: []string{"https://portal.example.com"}, HSTS: true}))
	e.GET("/", ok)

	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' https://portal.example.com")
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS([]string{"https://portal.example.com"}, true))
	e.GET("/", ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "https://portal.example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "https://portal.example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin), "dev origins are not allowed in production")
}

func TestHTTPSRedirect(t *testing.T) {
	e := echo.New()
	e.Use(HTTPSRedirect())
	e.GET("/api/ping", ok)

	req := httptest.NewRequest(http.MethodGet, "/api/ping?x=1", nil)
	req.Host = "portal.example.com"
	req.Header.Set("X-Forwarded-Proto", "http")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://portal.example.com/api/ping?x=1", rec.Header().Get(echo.HeaderLocation))

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/ping", "").Code)
}
