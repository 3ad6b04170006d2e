package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/phimart/pkg/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	JWTSecret      []byte

	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(c echo.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			}
		}
		return c.NoContent(http.StatusOK)
	})

	authMW := middleware.NewJWTMiddleware(d.JWTSecret)
	if d.AuthHandler != nil && d.AuthHandler.Svc != nil {
		authMW.Refresher = d.AuthHandler.Svc
	}
	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/users", d.AuthHandler.Register)
	auth.POST("/jwt/create", d.AuthHandler.Login)
	auth.POST("/jwt/refresh", d.AuthHandler.Refresh)

	products := api.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	productAdmin := products.Group("", authMW.RequireStaff)
	productAdmin.POST("", d.CatalogHandler.CreateProduct)
	productAdmin.PATCH("/:id", d.CatalogHandler.PatchProduct)
	productAdmin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	products.GET("/:id/reviews", d.CatalogHandler.GetReviews)
	products.GET("/:id/reviews/:review_id", d.CatalogHandler.GetReview)
	reviews := products.Group("/:id/reviews", authMW.RequireAuth)
	reviews.POST("", d.CatalogHandler.CreateReview)
	reviews.PATCH("/:review_id", d.CatalogHandler.PatchReview)
	reviews.DELETE("/:review_id", d.CatalogHandler.DeleteReview)

	categories := api.Group("/categories")
	categories.GET("", d.CatalogHandler.GetCategories)
	categories.GET("/:id", d.CatalogHandler.GetCategory)
	categoryAdmin := categories.Group("", authMW.RequireStaff)
	categoryAdmin.POST("", d.CatalogHandler.CreateCategory)
	categoryAdmin.PATCH("/:id", d.CatalogHandler.PatchCategory)
	categoryAdmin.DELETE("/:id", d.CatalogHandler.DeleteCategory)

	carts := api.Group("/carts", authMW.RequireAuth)
	carts.POST("", d.CartHandler.CreateCart)
	carts.GET("/:id", d.CartHandler.GetCart)
	carts.DELETE("/:id", d.CartHandler.DeleteCart)
	carts.POST("/:id/items", d.CartHandler.AddItem)
	carts.PATCH("/:id/items/:item_id", d.CartHandler.UpdateItem)
	carts.DELETE("/:id/items/:item_id", d.CartHandler.RemoveItem)

	orders := api.Group("/orders", authMW.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.POST("/:id/cancel", d.OrderHandler.CancelOrder)

	orderAdmin := api.Group("/orders", authMW.RequireStaff)
	orderAdmin.PATCH("/:id", d.OrderHandler.UpdateStatus)
	orderAdmin.PATCH("/:id/update_status", d.OrderHandler.UpdateStatus)
	orderAdmin.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
