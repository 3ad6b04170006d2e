package httpserver

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/phimart/internal/testutil"
	"github.com/Skotchmaster/phimart/internal/transport"
)

func TestCategories_HTTP(t *testing.T) {
	env := newEnv(t)
	staff := env.token(testutil.SeedUser(t, env.db, true))
	user := env.token(testutil.SeedUser(t, env.db, false))

	create := transport.CreateCategoryRequest{Name: "Stationery", Description: "pens and paper"}
	rec := env.do(http.MethodPost, "/api/v1/categories", user, create)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodPost, "/api/v1/categories", "", create)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/categories", staff, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decode[transport.CategoryResponse](t, rec)
	assert.Equal(t, "Stationery", cat.Name)

	rec = env.do(http.MethodPost, "/api/v1/categories", staff, create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	pen := transport.CreateProductRequest{Name: "Pen", Price: decimal.RequireFromString("1.20"), Stock: 5, CategoryID: &cat.ID}
	rec = env.do(http.MethodPost, "/api/v1/products", staff, pen)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, decode[transport.ProductResponse](t, rec).CategoryID)
	testutil.SeedProduct(t, env.db, "Kettle", "20.00")

	rec = env.do(http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[transport.ListResponse[transport.CategoryResponse]](t, rec)
	require.Len(t, list.Data, 1)
	assert.EqualValues(t, 1, list.Data[0].ProductCount)

	rec = env.do(http.MethodGet, "/api/v1/products?category_id="+cat.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	products := decode[transport.ListResponse[transport.ProductResponse]](t, rec)
	require.Len(t, products.Data, 1)
	assert.Equal(t, "Pen", products.Data[0].Name)

	rec = env.do(http.MethodGet, "/api/v1/products?category_id=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	name := "Office"
	rec = env.do(http.MethodPatch, "/api/v1/categories/"+cat.ID.String(), staff, transport.PatchCategoryRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Office", decode[transport.CategoryResponse](t, rec).Name)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[transport.CategoryResponse](t, rec).ProductCount)

	rec = env.do(http.MethodDelete, "/api/v1/categories/"+cat.ID.String(), user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = env.do(http.MethodDelete, "/api/v1/categories/"+cat.ID.String(), staff, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID.String(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodGet, "/api/v1/categories/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
