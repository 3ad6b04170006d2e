package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/service"
	"github.com/Skotchmaster/phimart/internal/testutil"
	"github.com/Skotchmaster/phimart/pkg/tokens"
)

var (
	testAccess  = []byte("access-secret")
	testRefresh = []byte("refresh-secret")
)

type testEnv struct {
	t      *testing.T
	e      *echo.Echo
	db     *gorm.DB
	issuer *tokens.Issuer
	orders *service.OrderService
}

type brokenStore struct {
	repo.Store
}

func (b brokenStore) InTx(context.Context, func(repo.Store) error) error {
	return errors.New("pq: connection reset by peer")
}

func newEnv(t *testing.T) *testEnv {
	return newEnvWithStore(t, nil)
}

func newEnvWithStore(t *testing.T, wrap func(repo.Store) repo.Store) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	var store repo.Store = repo.New(db)
	if wrap != nil {
		store = wrap(store)
	}
	issuer := tokens.NewIssuer(testAccess, testRefresh, time.Minute, time.Hour)

	orders := service.NewOrderService(store, nil, false)
	e := echo.New()
	Register(e, &Deps{
		AuthHandler:    &AuthHTTP{Svc: service.NewAuthService(store, issuer)},
		CatalogHandler: &CatalogHTTP{Svc: service.NewCatalogService(store, nil, nil)},
		CartHandler:    &CartHTTP{Svc: service.NewCartService(store, nil)},
		OrderHandler:   &OrderHTTP{Svc: orders},
		JWTSecret:      testAccess,
	})
	return &testEnv{t: t, e: e, db: db, issuer: issuer, orders: orders}
}

func (env *testEnv) token(u *models.User) string {
	env.t.Helper()
	tok, _, err := env.issuer.SignAccess(u.ID, u.IsStaff)
	require.NoError(env.t, err)
	return tok
}

func (env *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func (env *testEnv) seedOrder(owner *models.User, status models.OrderStatus) uuid.UUID {
	env.t.Helper()
	p := testutil.SeedProduct(env.t, env.db, "Widget", "2.50")
	cart := testutil.SeedCart(env.t, env.db, &owner.ID, testutil.Line{Product: p, Quantity: 2})
	o, err := env.orders.CreateOrder(context.Background(), cart.ID, owner.ID)
	require.NoError(env.t, err)
	if status != models.StatusPending {
		require.NoError(env.t, env.db.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", status).Error)
	}
	return o.ID
}
