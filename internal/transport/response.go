package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/phimart/internal/models"
	"github.com/Skotchmaster/phimart/internal/repo"
	"github.com/Skotchmaster/phimart/internal/service"
)

// Money renders amounts with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	IsStaff     bool      `json:"is_staff"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
		IsStaff:     u.IsStaff,
	}
}

type ProductResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	Stock       int        `json:"stock"`
	CategoryID  *uuid.UUID `json:"category_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       Money(p.Price),
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func NewProductList(items []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for i := range items {
		out = append(out, NewProductResponse(&items[i]))
	}
	return out
}

type CategoryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ProductCount int64     `json:"product_count"`
}

func NewCategoryResponse(c *repo.CategoryWithCount) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		ProductCount: c.ProductCount,
	}
}

func NewCategoryList(items []repo.CategoryWithCount) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for i := range items {
		out = append(out, NewCategoryResponse(&items[i]))
	}
	return out
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		ProductID: r.ProductID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func NewReviewList(items []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(items))
	for i := range items {
		out = append(out, NewReviewResponse(&items[i]))
	}
	return out
}

type CartItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"product_id"`
	Product   *ProductResponse `json:"product,omitempty"`
	Quantity  uint             `json:"quantity"`
	LineTotal string           `json:"line_total"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	UserID     *uuid.UUID         `json:"user_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []CartItemResponse `json:"items"`
	TotalPrice string             `json:"total_price"`
}

func NewCartResponse(v *service.CartView) CartResponse {
	resp := CartResponse{
		ID:         v.Cart.ID,
		UserID:     v.Cart.UserID,
		CreatedAt:  v.Cart.CreatedAt,
		Items:      make([]CartItemResponse, 0, len(v.Lines)),
		TotalPrice: Money(v.TotalPrice),
	}
	for _, line := range v.Lines {
		item := CartItemResponse{
			ID:        line.Item.ID,
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			LineTotal: Money(line.LineTotal),
		}
		if line.Product != nil {
			p := NewProductResponse(line.Product)
			item.Product = &p
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}

func NewEmptyCartResponse(c *models.Cart) CartResponse {
	return CartResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		CreatedAt:  c.CreatedAt,
		Items:      []CartItemResponse{},
		TotalPrice: Money(decimal.Zero),
	}
}

type CartLineResponse struct {
	ID        uuid.UUID `json:"id"`
	CartID    uuid.UUID `json:"cart_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  uint      `json:"quantity"`
}

func NewCartLineResponse(it *models.CartItem) CartLineResponse {
	return CartLineResponse{ID: it.ID, CartID: it.CartID, ProductID: it.ProductID, Quantity: it.Quantity}
}

type OrderItemResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    uint      `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
	LineTotal   string    `json:"line_total"`
}

type OrderResponse struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"user_id"`
	Status     string              `json:"status"`
	TotalPrice string              `json:"total_price"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Items      []OrderItemResponse `json:"items"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		Status:     string(o.Status),
		TotalPrice: Money(o.TotalPrice),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
		Items:      make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   Money(it.UnitPrice),
			LineTotal:   Money(it.LineTotal),
		})
	}
	return resp
}

func NewOrderList(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}
