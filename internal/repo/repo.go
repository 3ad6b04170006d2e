package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/phimart/internal/models"
)

// Store is the persistence surface used by the services. A Store handed
// to an InTx callback is bound to that transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx Store) error) error

	CreateCart(ctx context.Context, cart *models.Cart) error
	GetCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	LockCart(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	SetCartOwner(ctx context.Context, id, userID uuid.UUID) error
	DeleteCart(ctx context.Context, id uuid.UUID) (int64, error)
	AddCartItem(ctx context.Context, item *models.CartItem) error
	UpdateCartItem(ctx context.Context, cartID, itemID uuid.UUID, qty uint) (*models.CartItem, error)
	DeleteCartItem(ctx context.Context, cartID, itemID uuid.UUID) error
	DeleteCartItems(ctx context.Context, cartID uuid.UUID) error

	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter, offset, limit int) (int64, []models.Product, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	PatchProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context, offset, limit int) (int64, []CategoryWithCount, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*CategoryWithCount, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	PatchCategory(ctx context.Context, id uuid.UUID, patch CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListReviews(ctx context.Context, productID uuid.UUID, offset, limit int) (int64, []models.Review, error)
	GetReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error)
	CreateReview(ctx context.Context, rv *models.Review) error
	UpdateReview(ctx context.Context, rv *models.Review) error
	DeleteReview(ctx context.Context, productID, reviewID uuid.UUID) error

	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) (int64, []models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, version int64, status models.OrderStatus) (bool, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProductPatch changes only the non-nil fields. A CategoryID of uuid.Nil
// removes the product from its category.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	CategoryID  *uuid.UUID
}

type ProductFilter struct {
	CategoryID *uuid.UUID
}

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

var _ Store = (*GormRepo)(nil)

func (r *GormRepo) InTx(ctx context.Context, fn func(tx Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
