package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/service"
)

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrInvalidState, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUnauthorized, http.StatusUnauthorized},
}

// httpError logs err under event and converts it to an echo error.
// Unknown errors become a bare 500 so storage details never reach clients.
func httpError(l *slog.Logger, event string, err error) error {
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			msg := publicMessage(err, m.err)
			l.Warn(event, "status", m.status, "reason", msg, "error", err)
			return echo.NewHTTPError(m.status, msg)
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

// publicMessage strips the sentinel prefix: "not found: cart not found"
// becomes "cart not found".
func publicMessage(err, sentinel error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return sentinel.Error()
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
