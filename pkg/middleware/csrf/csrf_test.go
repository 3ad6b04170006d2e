package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(DefaultConfig()))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/x", ok)
	e.POST("/x", ok)
	return e
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetIssuesToken(t *testing.T) {
	rec := serve(newServer(), httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "XSRF-TOKEN=")
}

func TestPost_NoSessionCookieSkips(t *testing.T) {
	rec := serve(newServer(), httptest.NewRequest(http.MethodPost, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPost_BearerSkips(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.Header.Set(echo.HeaderAuthorization, "Bearer t")
	assert.Equal(t, http.StatusOK, serve(newServer(), req).Code)
}

func TestPost_CookieSessionNeedsToken(t *testing.T) {
	e := newServer()

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://shop.local")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://shop.local")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	assert.Equal(t, http.StatusOK, serve(e, req).Code)
}

func TestPost_CrossOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Host = "shop.local"
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("X-CSRF-Token", "abc")
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "t"})
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "abc"})
	assert.Equal(t, http.StatusForbidden, serve(newServer(), req).Code)
}
