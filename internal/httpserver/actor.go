package httpserver

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/phimart/internal/policy"
	middleware "github.com/Skotchmaster/phimart/pkg/middleware/auth"
)

var errNoActor = errors.New("unauthorized")

// actorFrom reads the identity the auth middleware stored on the context.
func actorFrom(c echo.Context) (policy.Actor, error) {
	id, ok := c.Get(middleware.CtxUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return policy.Actor{}, errNoActor
	}
	staff, _ := c.Get(middleware.CtxStaff).(bool)
	return policy.Actor{ID: id, IsStaff: staff}, nil
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
