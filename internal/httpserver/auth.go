package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/transport"
	"github.com/Skotchmaster/phimart/pkg/logging"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func authCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		return httpError(l, "register_error", err)
	}
	return c.JSON(http.StatusCreated, transport.NewUserResponse(user))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(l, "login_error", err)
	}

	c.SetCookie(authCookie("accessToken", res.AccessToken, res.AccessExp))
	c.SetCookie(authCookie("refreshToken", res.RefreshToken, res.RefreshExp))
	return c.JSON(http.StatusOK, transport.TokenResponse{Access: res.AccessToken, Refresh: res.RefreshToken})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "refresh_error", "invalid body", err)
	}
	if req.Refresh == "" {
		if ck, err := c.Cookie("refreshToken"); err == nil {
			req.Refresh = ck.Value
		}
	}
	if req.Refresh == "" {
		return badRequest(l, "refresh_error", "refresh token is required", nil)
	}

	access, exp, err := h.Svc.Refresh(ctx, req.Refresh)
	if err != nil {
		return httpError(l, "refresh_error", err)
	}

	c.SetCookie(authCookie("accessToken", access, exp))
	return c.JSON(http.StatusOK, transport.TokenResponse{Access: access})
}
