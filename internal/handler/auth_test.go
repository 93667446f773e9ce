package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnm-events/backend/internal/config"
	"github.com/gnm-events/backend/internal/middleware"
	"github.com/gnm-events/backend/internal/model"
	"github.com/gnm-events/backend/internal/session"
	"github.com/gnm-events/backend/internal/token"
)

// test bcrypt cost; production cost would make these tests crawl
const testCost = 4

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     testCost,
		FrontendURL:    "http://frontend.local",
	}
}

type authFixture struct {
	e        *echo.Echo
	users    *fakeUserStore
	tokens   *token.Service
	sessions *session.Manager
	h        *AuthHandler
}

func newAuthFixture() *authFixture {
	cfg := testConfig()
	users := newFakeUserStore()
	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	sessions := session.NewManager(false, tokens.AccessTTL(), tokens.RefreshTTL())
	return &authFixture{
		e:        echo.New(),
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		h:        NewAuthHandler(cfg, users, tokens, sessions),
	}
}

func (f *authFixture) seedUser(email, password string, active bool) model.User {
	hash, err := token.HashPassword(password, testCost)
	if err != nil {
		panic(err)
	}
	return f.users.add(model.User{
		Email: email, FirstName: "Test", LastName: "User",
		PasswordHash: hash, IsActive: active,
	})
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func bodyDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	detail, _ := body["detail"].(string)
	return detail
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSuccessSetsCookies(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("alice@example.com", "longenough", true)

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login",
		`{"email":"  Alice@Example.COM ","password":"longenough"}`)
	require.NoError(t, f.h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", bodyDetail(t, rec))

	cookies := rec.Result().Cookies()
	access := findCookie(cookies, session.AccessCookie)
	refresh := findCookie(cookies, session.RefreshCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)

	// The cookie really authenticates: present it to /me.
	id, err := f.tokens.Validate(access.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestLoginUniformFailures(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("alice@example.com", "longenough", true)

	// Unknown account and wrong password must be indistinguishable.
	cases := []string{
		`{"email":"missing@x.com","password":"whatever"}`,
		`{"email":"alice@example.com","password":"wrongpass"}`,
	}
	for _, body := range cases {
		c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login", body)
		require.NoError(t, f.h.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Equal(t, "Invalid credentials", bodyDetail(t, rec), body)
		assert.Empty(t, rec.Result().Cookies(), body)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("gone@example.com", "longenough", false)

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login",
		`{"email":"gone@example.com","password":"longenough"}`)
	require.NoError(t, f.h.Login(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User account is disabled", bodyDetail(t, rec))
}

func TestLoginMissingFields(t *testing.T) {
	f := newAuthFixture()
	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login", `{"email":"","password":""}`)
	require.NoError(t, f.h.Login(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshIssuesNewAccessOnly(t *testing.T) {
	f := newAuthFixture()
	u := f.seedUser("bob@example.com", "longenough", true)
	pair, err := f.tokens.IssuePair(u.ID)
	require.NoError(t, err)

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/token/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: pair.Refresh})
	require.NoError(t, f.h.Refresh(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	access := findCookie(cookies, session.AccessCookie)
	require.NotNil(t, access)
	// The refresh token is not rotated: no refresh cookie in the response.
	assert.Nil(t, findCookie(cookies, session.RefreshCookie))

	id, err := f.tokens.Validate(access.Value)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestRefreshRejectsMissingOrBadToken(t *testing.T) {
	f := newAuthFixture()

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/token/refresh", "")
	require.NoError(t, f.h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = jsonRequest(f.e, http.MethodPost, "/api/auth/token/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: "garbage"})
	require.NoError(t, f.h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// An access token presented as refresh is rejected too.
	u := f.seedUser("eve@example.com", "longenough", true)
	pair, err := f.tokens.IssuePair(u.ID)
	require.NoError(t, err)
	c, rec = jsonRequest(f.e, http.MethodPost, "/api/auth/token/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: session.RefreshCookie, Value: pair.Access})
	require.NoError(t, f.h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutClearsCookiesIdempotently(t *testing.T) {
	f := newAuthFixture()

	// No cookies on the request at all: still 200.
	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/logout", "")
	require.NoError(t, f.h.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, ck := range cookies {
		assert.Less(t, ck.MaxAge, 0, "cookie %s must be expired", ck.Name)
		assert.Equal(t, "/", ck.Path)
	}
}

func TestRegister(t *testing.T) {
	f := newAuthFixture()

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/register",
		`{"first_name":"A","last_name":"B","email":"a@b.com","password":"longenough"}`)
	require.NoError(t, f.h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a@b.com", body["email"])
	assert.EqualValues(t, 1, body["user_id"])

	// Identical call again: duplicate email, no second account.
	c, rec = jsonRequest(f.e, http.MethodPost, "/api/auth/register",
		`{"first_name":"A","last_name":"B","email":"a@b.com","password":"longenough"}`)
	require.NoError(t, f.h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists", bodyDetail(t, rec))
	assert.Len(t, f.users.users, 1)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{"first_name":"A","email":"a@b.com","password":"longenough"}`},
		{"short password", `{"first_name":"A","last_name":"B","email":"a@b.com","password":"short"}`},
		{"bad email", `{"first_name":"A","last_name":"B","email":"not-an-email","password":"longenough"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/register", tc.body)
			require.NoError(t, f.h.Register(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, f.users.users)
		})
	}
}

// wrapErrStore decorates a store so every error comes back wrapped, the
// way storage layers annotate failures before returning them.
type wrapErrStore struct{ UserStore }

func (w wrapErrStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := w.UserStore.GetByEmail(ctx, email)
	if err != nil {
		return u, fmt.Errorf("users by email: %w", err)
	}
	return u, nil
}

func (w wrapErrStore) Create(ctx context.Context, email, firstName, lastName, password string, cost int) (uint64, error) {
	id, err := w.UserStore.Create(ctx, email, firstName, lastName, password, cost)
	if err != nil {
		return id, fmt.Errorf("users create: %w", err)
	}
	return id, nil
}

func TestLoginRecognizesWrappedSentinels(t *testing.T) {
	f := newAuthFixture()
	f.seedUser("alice@example.com", "longenough", true)
	h := NewAuthHandler(testConfig(), wrapErrStore{f.users}, f.tokens, f.sessions)

	// A wrapped no-rows error is still "unknown account", not a 500.
	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login",
		`{"email":"missing@x.com","password":"whatever"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", bodyDetail(t, rec))

	// Same for the duplicate-email sentinel on register.
	c, rec = jsonRequest(f.e, http.MethodPost, "/api/auth/register",
		`{"first_name":"A","last_name":"B","email":"alice@example.com","password":"longenough"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User with this email already exists", bodyDetail(t, rec))
}

func TestLoginThenMe(t *testing.T) {
	f := newAuthFixture()
	u := f.seedUser("carol@example.com", "longenough", true)
	f.users.users[u.ID].IsStaff = true

	c, rec := jsonRequest(f.e, http.MethodPost, "/api/auth/login",
		`{"email":"carol@example.com","password":"longenough"}`)
	require.NoError(t, f.h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	access := findCookie(rec.Result().Cookies(), session.AccessCookie)
	require.NotNil(t, access)

	// Replay the cookie through the auth middleware into /me.
	me := middleware.CookieAuth(f.tokens, f.sessions)(f.h.Me)
	c2, rec2 := jsonRequest(f.e, http.MethodGet, "/api/auth/me", "")
	c2.Request().AddCookie(&http.Cookie{Name: session.AccessCookie, Value: access.Value})
	require.NoError(t, me(c2))
	require.Equal(t, http.StatusOK, rec2.Code)

	var got userResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &got))
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "carol@example.com", got.Email)
	assert.True(t, got.IsStaff)
}

func TestMeRejectsExpiredToken(t *testing.T) {
	f := newAuthFixture()
	u := f.seedUser("dave@example.com", "longenough", true)

	// Negative TTL issues a token that is already past its exp.
	expired := token.NewService(testConfig().JWTSecret, -1, 7)
	pair, err := expired.IssuePair(u.ID)
	require.NoError(t, err)

	me := middleware.CookieAuth(f.tokens, f.sessions)(f.h.Me)
	c, rec := jsonRequest(f.e, http.MethodGet, "/api/auth/me", "")
	c.Request().AddCookie(&http.Cookie{Name: session.AccessCookie, Value: pair.Access})
	require.NoError(t, me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeWithoutCookie(t *testing.T) {
	f := newAuthFixture()
	me := middleware.CookieAuth(f.tokens, f.sessions)(f.h.Me)

	c, rec := jsonRequest(f.e, http.MethodGet, "/api/auth/me", "")
	require.NoError(t, me(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
