package delivery

import (
	"storefront/internal/domain"
	"storefront/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth         *AuthHandler
	Categories   *CategoryHandler
	Products     *ProductHandler
	Cart         *CartHandler
	Orders       *OrderHandler
	Applications *ApplicationHandler
	Messages     *MessageHandler
	Health       *HealthHandler
}

// NewRouter wires every route. maxMultipartMemory bounds in-memory form parsing.
func NewRouter(h Handlers, tokens middleware.TokenParser, maxMultipartMemory int64, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	router.GET("/health", h.Health.Health)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/admin/login", h.Auth.AdminLogin)
		auth.GET("/me", middleware.AuthMiddleware(tokens, logger), h.Auth.Me)
	}

	router.GET("/products", h.Products.ListProducts)
	router.GET("/products/:id", h.Products.GetProduct)
	router.GET("/categories", h.Categories.ListCategories)
	router.GET("/categories/:id", h.Categories.GetCategory)
	router.POST("/applications", h.Applications.Submit)
	router.POST("/messages", h.Messages.Send)

	customer := router.Group("/",
		middleware.AuthMiddleware(tokens, logger),
		middleware.RequireRole(domain.RoleCustomer, logger))
	{
		cart := customer.Group("/cart")
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:lineId", h.Cart.UpdateItem)
		cart.DELETE("/items/:lineId", h.Cart.RemoveItem)

		orders := customer.Group("/orders")
		orders.POST("", h.Orders.PlaceOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.DELETE("/:id", h.Orders.CancelOrder)
		orders.GET("/:id/receipt", h.Orders.DownloadReceipt)
	}

	admin := router.Group("/admin",
		middleware.AuthMiddleware(tokens, logger),
		middleware.RequireRole(domain.RoleAdmin, logger))
	{
		products := admin.Group("/products")
		products.GET("", h.Products.AdminListProducts)
		products.POST("", h.Products.CreateProduct)
		products.GET("/:id", h.Products.AdminGetProduct)
		products.PATCH("/:id", h.Products.UpdateProduct)
		products.DELETE("/:id", h.Products.DeleteProduct)
		products.PUT("/:id/colors/:color/quantity", h.Products.SetColorQuantity)

		categories := admin.Group("/categories")
		categories.POST("", h.Categories.CreateCategory)
		categories.PATCH("/:id", h.Categories.RenameCategory)
		categories.DELETE("/:id", h.Categories.DeleteCategory)

		orders := admin.Group("/orders")
		orders.GET("", h.Orders.AdminListOrders)
		orders.GET("/:id", h.Orders.AdminGetOrder)
		orders.PUT("/:id/status", h.Orders.UpdateOrderStatus)
		orders.GET("/:id/receipt", h.Orders.AdminDownloadReceipt)

		applications := admin.Group("/applications")
		applications.GET("", h.Applications.List)
		applications.DELETE("", h.Applications.DeleteOlderThan)
		applications.GET("/:id", h.Applications.Get)
		applications.PUT("/:id/status", h.Applications.UpdateStatus)
		applications.DELETE("/:id", h.Applications.Delete)
		applications.GET("/:id/resume", h.Applications.DownloadResume)

		messages := admin.Group("/messages")
		messages.GET("", h.Messages.List)
		messages.PATCH("/:id/read", h.Messages.MarkRead)
		messages.DELETE("/:id", h.Messages.Delete)
	}

	return router
}
