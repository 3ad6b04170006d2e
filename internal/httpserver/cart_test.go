package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/phimart/internal/testutil"
	"github.com/Skotchmaster/phimart/internal/transport"
)

func TestCart_HTTPFlow(t *testing.T) {
	env := newEnv(t)
	user := testutil.SeedUser(t, env.db, false)
	tok := env.token(user)
	tea := testutil.SeedProduct(t, env.db, "Tea", "3.25")

	rec := env.do(http.MethodPost, "/api/v1/carts", tok, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	cart := decode[transport.CartResponse](t, rec)
	require.NotNil(t, cart.UserID)
	assert.Equal(t, user.ID, *cart.UserID)
	assert.Equal(t, "0.00", cart.TotalPrice)

	base := "/api/v1/carts/" + cart.ID.String()

	rec = env.do(http.MethodPost, base+"/items", tok, transport.AddCartItemRequest{ProductID: tea.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	line := decode[transport.CartLineResponse](t, rec)

	rec = env.do(http.MethodPatch, base+"/items/"+line.ID.String(), tok, transport.UpdateCartItemRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decode[transport.CartLineResponse](t, rec).Quantity)

	rec = env.do(http.MethodGet, base, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[transport.CartResponse](t, rec)
	assert.Equal(t, "13.00", got.TotalPrice)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "Tea", got.Items[0].Product.Name)

	rec = env.do(http.MethodDelete, base+"/items/"+line.ID.String(), tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodDelete, base, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, base, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_HTTPValidation(t *testing.T) {
	env := newEnv(t)
	user := testutil.SeedUser(t, env.db, false)
	tok := env.token(user)
	cart := testutil.SeedCart(t, env.db, nil)
	base := "/api/v1/carts/" + cart.ID.String()

	rec := env.do(http.MethodPost, base+"/items", tok, transport.AddCartItemRequest{ProductID: uuid.New(), Quantity: 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, message(t, rec), "does not exist")

	rec = env.do(http.MethodPost, base+"/items", tok, transport.AddCartItemRequest{ProductID: uuid.New(), Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/carts/"+uuid.NewString(), tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_AddItemClaimsAnonymousCart(t *testing.T) {
	env := newEnv(t)
	user := testutil.SeedUser(t, env.db, false)
	tea := testutil.SeedProduct(t, env.db, "Tea", "1.00")
	cart := testutil.SeedCart(t, env.db, nil)

	rec := env.do(http.MethodPost, "/api/v1/carts/"+cart.ID.String()+"/items", env.token(user), transport.AddCartItemRequest{ProductID: tea.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/carts/"+cart.ID.String(), env.token(user), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[transport.CartResponse](t, rec)
	require.NotNil(t, got.UserID)
	assert.Equal(t, user.ID, *got.UserID)
}

func TestCart_OtherUsersCart(t *testing.T) {
	env := newEnv(t)
	alice := testutil.SeedUser(t, env.db, false)
	mallory := testutil.SeedUser(t, env.db, false)
	staff := testutil.SeedUser(t, env.db, true)
	tea := testutil.SeedProduct(t, env.db, "Tea", "2.00")
	cart := testutil.SeedCart(t, env.db, &alice.ID, testutil.Line{Product: tea, Quantity: 1})
	base := "/api/v1/carts/" + cart.ID.String()
	itemPath := base + "/items/" + cart.Items[0].ID.String()

	tok := env.token(mallory)
	rec := env.do(http.MethodGet, base, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, base+"/items", tok, transport.AddCartItemRequest{ProductID: tea.ID, Quantity: 3})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPatch, itemPath, tok, transport.UpdateCartItemRequest{Quantity: 7})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, itemPath, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, base, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/orders", tok, transport.CreateOrderRequest{CartID: cart.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, base, env.token(alice), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[transport.CartResponse](t, rec)
	require.Len(t, got.Items, 1)
	assert.EqualValues(t, 1, got.Items[0].Quantity)

	rec = env.do(http.MethodGet, base, env.token(staff), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
