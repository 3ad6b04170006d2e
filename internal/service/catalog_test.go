package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/testutil"
)

type fakeIndex struct {
	indexed   []uuid.UUID
	deleted   []uuid.UUID
	searchErr error
	hits      []models.Product
}

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.indexed = append(f.indexed, p.ID)
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return int64(len(f.hits)), f.hits, nil
}

func TestCatalog_CRUDMirrorsIndex(t *testing.T) {
	store := repo.New(testutil.NewDB(t))
	idx := &fakeIndex{}
	events := &recordingPublisher{}
	svc := NewCatalogService(store, idx, events)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: " Kettle ", Price: decimal.RequireFromString("19.99"), Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, "Kettle", p.Name)

	price := decimal.RequireFromString("17.50")
	p, err = svc.PatchProduct(ctx, p.ID, repo.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "17.50", p.Price.StringFixed(2))

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kettle", got.Name)

	total, items, err := svc.ListProducts(ctx, repo.ProductFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	require.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)
	_, err = svc.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []uuid.UUID{p.ID, p.ID}, idx.indexed)
	assert.Equal(t, []uuid.UUID{p.ID}, idx.deleted)
	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, events.types())
}

func TestCatalog_Validation(t *testing.T) {
	svc := NewCatalogService(repo.New(testutil.NewDB(t)), nil, nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, ProductInput{Name: "", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, ErrValidation)

	neg := decimal.NewFromInt(-5)
	_, err = svc.PatchProduct(ctx, uuid.New(), repo.ProductPatch{Price: &neg})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.PatchProduct(ctx, uuid.New(), repo.ProductPatch{})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.RequireFromString("1.999")})
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "2 decimal places")

	fine := decimal.RequireFromString("0.001")
	_, err = svc.PatchProduct(ctx, uuid.New(), repo.ProductPatch{Price: &fine})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.RequireFromString("10000000000")})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.CreateProduct(ctx, ProductInput{Name: "X", Price: decimal.RequireFromString("1.500")})
	require.NoError(t, err)
	assert.Equal(t, "1.50", p.Price.StringFixed(2))
}

func TestCatalog_SearchFallsBackToDB(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedProduct(t, db, "Green Tea", "3.00")
	ctx := context.Background()

	svc := NewCatalogService(repo.New(db), &fakeIndex{searchErr: errBoom}, nil)
	total, items, err := svc.SearchProducts(ctx, "tea", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Green Tea", items[0].Name)

	svc.Index = nil
	total, _, err = svc.SearchProducts(ctx, "  ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCatalog_SearchUsesIndex(t *testing.T) {
	hit := models.Product{ID: uuid.New(), Name: "Indexed"}
	svc := NewCatalogService(repo.New(testutil.NewDB(t)), &fakeIndex{hits: []models.Product{hit}}, nil)

	total, items, err := svc.SearchProducts(context.Background(), "idx", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, hit.ID, items[0].ID)
}
