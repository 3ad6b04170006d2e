package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/pkg/tokens"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"

	CtxUserID = "user_id"
	CtxStaff  = "staff"
)

// Refresher trades a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (string, time.Time, error)
}

type JWTMiddleware struct {
	JWTSecret []byte

	// Refresher, when set, renews a missing or expired access cookie from
	// the refresh cookie.
	Refresher Refresher
}

func NewJWTMiddleware(secret []byte) *JWTMiddleware {
	return &JWTMiddleware{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *JWTMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *JWTMiddleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if !claims.Staff {
			return echo.NewHTTPError(http.StatusForbidden, "staff access required")
		}
		return nil
	})
}

func (m *JWTMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, fromCookie := tokenFromRequest(c)

		var claims *tokens.AccessClaims
		var err error
		if raw != "" {
			claims, err = tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		}
		if fromCookie && (raw == "" || errors.Is(err, jwt.ErrTokenExpired)) {
			if renewed, ok := m.renew(c); ok {
				raw = renewed
				claims, err = tokens.AccessClaimsFromToken(raw, m.JWTSecret)
			}
		}

		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}
		uid, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
		}

		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				return vErr
			}
		}

		c.Set(CtxUserID, uid)
		c.Set(CtxStaff, claims.Staff)
		return next(c)
	}
}

// renew exchanges the refresh cookie for a new access token and sets it
// as the access cookie.
func (m *JWTMiddleware) renew(c echo.Context) (string, bool) {
	if m.Refresher == nil {
		return "", false
	}
	ck, err := c.Cookie(refreshCookie)
	if err != nil || ck.Value == "" {
		return "", false
	}
	access, exp, err := m.Refresher.Refresh(c.Request().Context(), ck.Value)
	if err != nil {
		c.SetCookie(&http.Cookie{Name: accessCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
		c.SetCookie(&http.Cookie{Name: refreshCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
		return "", false
	}
	c.SetCookie(&http.Cookie{
		Name:     accessCookie,
		Value:    access,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return access, true
}

// tokenFromRequest accepts "Bearer" and "JWT" authorization schemes and
// falls back to the access token cookie. fromCookie is true when no
// Authorization header was sent.
func tokenFromRequest(c echo.Context) (string, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "JWT")) {
			return strings.TrimSpace(tok), false
		}
		return "", false
	}
	if ck, err := c.Cookie(accessCookie); err == nil {
		return ck.Value, true
	}
	return "", true
}
