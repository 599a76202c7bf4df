package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamsales/salesportal/middleware"
	"github.com/teamsales/salesportal/models"
	"github.com/teamsales/salesportal/security"
)

type recordingMailer struct {
	to, link string
	err      error
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, email, link string) error {
	m.to, m.link = email, link
	return m.err
}

func completeProfile() models.Profile {
	return models.Profile{
		Personnummer: "19900101-1234", Adress: "Storgatan 1", PostnummerOrt: "111 22 Stockholm",
		Bank: "Nordea", Clearingnummer: "3300", Kontonummer: "1234567", Telefon: "070-1234567",
		AnhorigNamn: "Bo", AnhorigTelefon: "070-7654321",
	}
}

func newAuthFixture() (*AuthService, *fakeIdentity, *fakeUsers, *fakeCache, *recordingMailer) {
	identity := newFakeIdentity()
	uid, _ := identity.CreateAccount(context.Background(), "ulla@example.com", "hemligt", "Ulla")
	users := newFakeUsers(models.User{
		ID: uid, Name: "Ulla", Email: "ulla@example.com", Role: models.RoleUser, Profile: completeProfile(),
	})
	_, _ = identity.CreateAccount(context.Background(), "orphan@example.com", "hemligt", "Orphan")
	cache := newFakeCache()
	mailer := &recordingMailer{}
	tokens := middleware.NewTokenIssuer("test-secret", time.Hour)
	return NewAuthService(identity, users, cache, tokens, mailer), identity, users, cache, mailer
}

func TestLogin(t *testing.T) {
	svc, _, _, cache, _ := newAuthFixture()

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " Ulla@Example.com ", Password: "hemligt"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "/user/dashboard", res.Home)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
	_, cached := cache.CachedUser(context.Background(), res.User.ID)
	assert.True(t, cached)
}

func TestLogin_ProviderMessageIsKept(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ulla@example.com", Password: "fel"})
	require.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "INVALID_PASSWORD")
}

func TestLogin_AccountWithoutProfileDocument(t *testing.T) {
	svc, _, _, _, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "orphan@example.com", Password: "hemligt"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	svc, _, _, cache, _ := newAuthFixture()
	tokens := middleware.NewTokenIssuer("test-secret", time.Hour)
	_, claims, err := tokens.GenerateJWT("uid-1", "ulla@example.com", models.RoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims))
	assert.True(t, cache.IsRevoked(context.Background(), claims.Id))
	assert.Equal(t, time.Unix(claims.ExpiresAt, 0), cache.revoked[claims.Id])
	assert.Contains(t, cache.evicted, "uid-1")
}

func TestResetPassword(t *testing.T) {
	svc, _, _, _, mailer := newAuthFixture()

	require.NoError(t, svc.ResetPassword(context.Background(), "ULLA@example.com"))
	assert.Equal(t, "ulla@example.com", mailer.to)
	assert.Contains(t, mailer.link, "ulla@example.com")

	mailer.err = errors.New("550 mailbox unavailable")
	err := svc.ResetPassword(context.Background(), "ulla@example.com")
	assert.EqualError(t, err, "550 mailbox unavailable")
}

func TestSessionView_IncompleteProfileGoesToProfile(t *testing.T) {
	users := newFakeUsers(
		models.User{ID: "u1", Name: "Ulla", Email: "ulla@example.com", Role: models.RoleUser},
		models.User{ID: "u2", Name: "Urban", Email: "urban@example.com", Role: models.RoleUser, Profile: completeProfile()},
	)
	cache := newFakeCache()
	svc := NewSessionService(users, cache)

	view, err := svc.View(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, security.ProfilePath, view.Home)
	assert.Contains(t, view.MissingFields, "telefon")

	view, err = svc.View(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "/user/dashboard", view.Home)
	assert.Empty(t, view.MissingFields)

	cache.SuppressProfileGate(context.Background(), "u1", time.Minute)
	d, err := svc.Resolve(context.Background(), "u1", "/user/dashboard")
	require.NoError(t, err)
	assert.True(t, d.Allowed())

	d, err = svc.Resolve(context.Background(), "ghost", "/user/dashboard")
	require.NoError(t, err)
	assert.Equal(t, security.RedirectLogin, d.Outcome)
}

func TestOrganizations_UniqueNames(t *testing.T) {
	svc := NewOrganizationService(&fakeOrgs{orgs: []models.Organization{{ID: "o1", Name: "Org A"}}})

	_, err := svc.Create(context.Background(), manager1, "Org B")
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.Create(context.Background(), admin, "  org a ")
	assert.True(t, errors.Is(err, ErrConflict))

	org, err := svc.Create(context.Background(), admin, "Org B")
	require.NoError(t, err)
	assert.True(t, errors.Is(svc.Rename(context.Background(), admin, org.ID, "ORG A"), ErrConflict))
	assert.NoError(t, svc.Rename(context.Background(), admin, "o1", "Org A"))

	r := NewResolver([]models.Organization{{Name: "Org A"}})
	assert.Equal(t, "Org A", r.ResolveName("org a"))
	assert.Equal(t, models.UnknownOrganisation, r.ResolveName("Gone AB"))
	var none *Resolver
	assert.Equal(t, "Gone AB", none.ResolveName("Gone AB"))
}
