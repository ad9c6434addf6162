package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mlinyun/Peekpa/pkg/config"
	"github.com/mlinyun/Peekpa/pkg/httpx"
	"github.com/mlinyun/Peekpa/pkg/iam/user"
	"github.com/mlinyun/Peekpa/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRegistrar creates candidates straight in the store
type stubRegistrar struct {
	users user.UserRepository
}

func (r stubRegistrar) Signup(ctx context.Context, req user.SignupRequest) (*user.User, error) {
	u := user.NewCandidate("new", req.Email, req.FirstName, req.LastName, "hash:"+req.Password)
	if err := r.users.Save(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

type testApp struct {
	app       *fiber.App
	tokens    *JWTService
	blacklist *MemoryBlacklist
	users     user.UserRepository
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	s := seedAccounts(t)
	tokens := newJWT(time.Now)
	blacklist := NewMemoryBlacklist()
	mw := NewMiddleware(tokens, blacklist, s.Users(), "access_token")

	cookies := config.CookieConfig{AccessTokenName: "access_token", RefreshTokenName: "refresh_token", Path: "/", HTTPOnly: true}
	h := NewAuthHandlers(NewAuthenticator(s.Users(), plainPasswords{}), stubRegistrar{s.Users()}, tokens, blacklist, s.Users(), cookies)

	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler(false)})
	h.RegisterRoutes(app, mw, nil)

	probe := func(c *fiber.Ctx) error {
		scope := ScopeOf(c)
		return c.JSON(fiber.Map{
			"user":    scope.UserID,
			"staff":   scope.IsStaff,
			"company": scope.CompanyID,
			"manager": scope.IsManager,
		})
	}
	app.Get("/probe", mw.Optional(), probe)
	app.Post("/probe", mw.Optional(), probe)
	return testApp{app: app, tokens: tokens, blacklist: blacklist, users: s.Users()}
}

func (ta testApp) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func TestSigninIssuesTokensForCandidates(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, http.MethodPost, "/auth/signin", "", `{"email":"cand@mail.test","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "Bearer", body["token_type"])

	status, _ = ta.do(t, http.MethodPost, "/auth/login", "", `{"email":"cand@mail.test","password":"secret1"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ta.do(t, http.MethodPost, "/auth/signin", "", `{"email":"cand@mail.test","password":"bad"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSignupReturnsCreated(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, http.MethodPost, "/auth/signup", "", `{"email":"n@mail.test","password":"secret","first_name":"N","last_name":"Ew"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, body["access_token"])
	u, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "n@mail.test", u["email"])
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	ta := newTestApp(t)

	_, body := ta.do(t, http.MethodPost, "/auth/login", "", `{"email":"stf@acme.test","password":"secret2"}`)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	status, me := ta.do(t, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "stf", me["uid"])
	assert.NotNil(t, me["last_login"])

	status, _ = ta.do(t, http.MethodPost, "/auth/logout", token, "")
	require.Equal(t, http.StatusOK, status)

	status, _ = ta.do(t, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	ta := newTestApp(t)

	_, body := ta.do(t, http.MethodPost, "/auth/signin", "", `{"email":"cand@mail.test","password":"secret1"}`)
	refresh, _ := body["refresh_token"].(string)
	access, _ := body["access_token"].(string)

	status, out := ta.do(t, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, out["access_token"])

	// an access token is not a refresh token
	status, _ = ta.do(t, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"`+access+`"}`)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.do(t, http.MethodPost, "/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOptionalDegradesOnlyReads(t *testing.T) {
	ta := newTestApp(t)

	status, body := ta.do(t, http.MethodGet, "/probe", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["user"])

	// an invalid credential reads as anonymous on GET
	status, body = ta.do(t, http.MethodGet, "/probe", "garbage", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["user"])

	// and fails on writes
	status, _ = ta.do(t, http.MethodPost, "/probe", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token := ta.tokenFor(t, "stf")
	status, body = ta.do(t, http.MethodPost, "/probe", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "stf", body["user"])
	assert.Equal(t, true, body["staff"])

	status, _ = ta.do(t, http.MethodGet, "/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (ta testApp) tokenFor(t *testing.T, id string) string {
	t.Helper()
	u, err := ta.users.FindByID(context.Background(), kernel.NewUserID(id))
	require.NoError(t, err)
	token, err := ta.tokens.GenerateAccessToken(u.Principal())
	require.NoError(t, err)
	return token
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	token := ta.tokenFor(t, "stf")

	status, _ := ta.do(t, http.MethodGet, "/auth/me", token, "")
	require.Equal(t, http.StatusOK, status)

	stf, err := ta.users.FindByID(ctx, "stf")
	require.NoError(t, err)
	stf.IsActive = false
	require.NoError(t, ta.users.Save(ctx, *stf))

	status, _ = ta.do(t, http.MethodGet, "/auth/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = ta.do(t, http.MethodPost, "/probe", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// reads degrade to anonymous
	status, body := ta.do(t, http.MethodGet, "/probe", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["user"])
	assert.Equal(t, false, body["staff"])
}

func TestScopeFollowsStoredProfile(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	token := ta.tokenFor(t, "stf")

	status, body := ta.do(t, http.MethodPost, "/probe", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["company"])
	assert.Equal(t, false, body["manager"])

	stf, err := ta.users.FindByID(ctx, "stf")
	require.NoError(t, err)
	stf.Staff = &kernel.StaffProfile{CompanyID: 2, IsManager: true}
	require.NoError(t, ta.users.Save(ctx, *stf))

	// same token, new company and role
	status, body = ta.do(t, http.MethodPost, "/probe", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["company"])
	assert.Equal(t, true, body["manager"])
}

func TestTokenForUnknownUserIsRejected(t *testing.T) {
	ta := newTestApp(t)

	// staffPrincipal names a user the store does not hold
	token, err := ta.tokens.GenerateAccessToken(staffPrincipal())
	require.NoError(t, err)

	status, _ := ta.do(t, http.MethodPost, "/probe", token, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := ta.do(t, http.MethodGet, "/probe", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "", body["user"])
}

func TestMemoryBlacklistForgetsExpiredTokens(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	b := NewMemoryBlacklist().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, b.Revoke(ctx, "b", now.Add(-time.Minute)))

	revoked, _ := b.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = b.IsRevoked(ctx, "b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, _ = b.IsRevoked(ctx, "a")
	assert.False(t, revoked)
}
