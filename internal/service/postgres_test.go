package service

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/policy"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/testutil"
	pkgdb "github.com/Skotchmaster/phimart/pkg/db"
)

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("ORDER_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ORDER_TEST_DATABASE_URL is empty")
	}
	db, err := pkgdb.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		db.Exec("TRUNCATE TABLE order_items, orders, cart_items, carts, reviews, products, categories, users CASCADE")
		_ = pkgdb.Close(db)
	})
	return db
}

func TestPostgres_ConcurrentCheckout(t *testing.T) {
	db := openPostgres(t)
	svc := NewOrderService(repo.New(db), nil, false)

	user := testutil.SeedUser(t, db, false)
	p := testutil.SeedProduct(t, db, "Chair", "49.90")
	cart := testutil.SeedCart(t, db, &user.ID, testutil.Line{Product: p, Quantity: 2})

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(context.Background(), cart.ID, user.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, ok)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Where("user_id = ?", user.ID).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestPostgres_ConcurrentCancelAndDeliver(t *testing.T) {
	db := openPostgres(t)
	svc := NewOrderService(repo.New(db), nil, false)

	user := testutil.SeedUser(t, db, false)
	staff := policy.Actor{ID: uuid.New(), IsStaff: true}
	p := testutil.SeedProduct(t, db, "Chair", "49.90")
	cart := testutil.SeedCart(t, db, &user.ID, testutil.Line{Product: p, Quantity: 1})

	order, err := svc.CreateOrder(context.Background(), cart.ID, user.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var cancelErr, deliverErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = svc.CancelOrder(context.Background(), order.ID, policy.Actor{ID: user.ID})
	}()
	go func() {
		defer wg.Done()
		_, deliverErr = svc.UpdateStatus(context.Background(), order.ID, models.StatusDelivered, staff)
	}()
	wg.Wait()
	require.NoError(t, deliverErr)

	stored, err := repo.New(db).GetOrder(context.Background(), order.ID)
	require.NoError(t, err)

	// Either the owner canceled first and staff then delivered, or staff
	// delivered first and the owner's cancel was rejected.
	if cancelErr != nil {
		require.ErrorIs(t, cancelErr, ErrInvalidState)
	}
	assert.Equal(t, models.StatusDelivered, stored.Status)
}
