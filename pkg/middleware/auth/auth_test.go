package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/phimart/pkg/tokens"
)

var secret = []byte("test-secret")

func signed(t *testing.T, uid uuid.UUID, staff bool) string {
	t.Helper()
	iss := tokens.NewIssuer(secret, []byte("refresh"), time.Minute, time.Hour)
	tok, _, err := iss.SignAccess(uid, staff)
	require.NoError(t, err)
	return tok
}

func run(t *testing.T, h echo.MiddlewareFunc, req *http.Request) (echo.Context, error, bool) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	called := false
	err := h(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return c, err, called
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

func TestRequireAuth_Bearer(t *testing.T) {
	m := NewJWTMiddleware(secret)
	uid := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, uid, false))

	c, err, called := run(t, m.RequireAuth, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, uid, c.Get(CtxUserID))
	assert.Equal(t, false, c.Get(CtxStaff))
}

func TestRequireAuth_JWTScheme(t *testing.T) {
	m := NewJWTMiddleware(secret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "JWT "+signed(t, uuid.New(), false))

	_, err, called := run(t, m.RequireAuth, req)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRequireAuth_Cookie(t *testing.T) {
	m := NewJWTMiddleware(secret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signed(t, uuid.New(), true)})

	c, err, called := run(t, m.RequireAuth, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, true, c.Get(CtxStaff))
}

func TestRequireAuth_Missing(t *testing.T) {
	m := NewJWTMiddleware(secret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err, called := run(t, m.RequireAuth, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestRequireAuth_BadToken(t *testing.T) {
	m := NewJWTMiddleware(secret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")

	_, err, called := run(t, m.RequireAuth, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestRequireStaff(t *testing.T) {
	m := NewJWTMiddleware(secret)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, uuid.New(), false))
	_, err, called := run(t, m.RequireStaff, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed(t, uuid.New(), true))
	_, err, called = run(t, m.RequireStaff, req)
	require.NoError(t, err)
	assert.True(t, called)
}

type stubRefresher struct {
	token string
	err   error
	got   string
}

func (s *stubRefresher) Refresh(_ context.Context, refreshToken string) (string, time.Time, error) {
	s.got = refreshToken
	return s.token, time.Now().Add(time.Minute), s.err
}

func expired(t *testing.T, uid uuid.UUID) string {
	t.Helper()
	iss := tokens.NewIssuer(secret, []byte("refresh"), -time.Minute, time.Hour)
	tok, _, err := iss.SignAccess(uid, false)
	require.NoError(t, err)
	return tok
}

func setCookies(rec *httptest.ResponseRecorder) map[string]string {
	out := map[string]string{}
	for _, ck := range (&http.Response{Header: rec.Header()}).Cookies() {
		out[ck.Name] = ck.Value
	}
	return out
}

func TestRequireAuth_RenewsExpiredCookie(t *testing.T) {
	uid := uuid.New()
	fresh := signed(t, uid, true)
	ref := &stubRefresher{token: fresh}
	m := &JWTMiddleware{JWTSecret: secret, Refresher: ref}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expired(t, uid)})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "r-1"})

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	called := false
	err := m.RequireAuth(func(c echo.Context) error {
		called = true
		return nil
	})(c)

	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "r-1", ref.got)
	assert.Equal(t, uid, c.Get(CtxUserID))
	assert.Equal(t, true, c.Get(CtxStaff))
	assert.Equal(t, fresh, setCookies(rec)["accessToken"])
}

func TestRequireAuth_RenewsMissingAccessCookie(t *testing.T) {
	uid := uuid.New()
	m := &JWTMiddleware{JWTSecret: secret, Refresher: &stubRefresher{token: signed(t, uid, false)}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "r-1"})

	c, err, called := run(t, m.RequireAuth, req)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, uid, c.Get(CtxUserID))
}

func TestRequireAuth_RenewFailure(t *testing.T) {
	m := &JWTMiddleware{JWTSecret: secret, Refresher: &stubRefresher{err: errors.New("revoked")}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: expired(t, uuid.New())})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "r-1"})

	_, err, called := run(t, m.RequireAuth, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func TestRequireAuth_BearerNeverRenewed(t *testing.T) {
	ref := &stubRefresher{token: signed(t, uuid.New(), false)}
	m := &JWTMiddleware{JWTSecret: secret, Refresher: ref}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+expired(t, uuid.New()))
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "r-1"})

	_, err, called := run(t, m.RequireAuth, req)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
	assert.Empty(t, ref.got)
}
