// Package testutil builds throwaway databases and fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/phimart/internal/models"
)

// NewDB opens a migrated in-memory sqlite database. The pool is pinned to
// one connection so every query sees the same memory database; this also
// serializes concurrent transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.Migrate(db))
	return db
}

func Price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func SeedUser(t *testing.T, db *gorm.DB, staff bool) *models.User {
	t.Helper()
	u := &models.User{
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		IsStaff:      staff,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

func SeedProduct(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: Price(price), Stock: 100}
	require.NoError(t, db.Create(p).Error)
	return p
}

type Line struct {
	Product  *models.Product
	Quantity uint
}

// SeedCart creates a cart owned by userID (nil for anonymous) holding lines.
func SeedCart(t *testing.T, db *gorm.DB, userID *uuid.UUID, lines ...Line) *models.Cart {
	t.Helper()
	cart := &models.Cart{UserID: userID}
	require.NoError(t, db.Omit("Items").Create(cart).Error)
	for _, l := range lines {
		item := models.CartItem{CartID: cart.ID, ProductID: l.Product.ID, Quantity: l.Quantity}
		require.NoError(t, db.Create(&item).Error)
		cart.Items = append(cart.Items, item)
	}
	return cart
}
