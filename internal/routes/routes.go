package routes

import (
	"os"
	"strings"
	"time"

	"savoro_back_end/internal/handlers/admin"
	"savoro_back_end/internal/handlers/payment"
	"savoro_back_end/internal/handlers/product"
	"savoro_back_end/internal/handlers/user"
	"savoro_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers regroupe les handlers construits au démarrage avec leurs
// services injectés.
type Handlers struct {
	Orders      *user.OrderHandler
	AdminOrders *admin.OrderHandler
	Payments    *payment.Handler
	Reviews     *product.ReviewHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.Use(cors.New(corsConfig()))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// ================== AUTH ==================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", middleware.LoginRateLimit(), user.Login)
		authGroup.POST("/forgot-password", middleware.ForgotPasswordRateLimit(), user.ForgotPassword)
		authGroup.POST("/reset-password", user.ResetPassword)
		authGroup.POST("/google/mobile", user.GoogleMobileLogin)
		authGroup.GET("/:provider", user.BeginAuth)
		authGroup.GET("/:provider/callback", user.CallbackAuth)

		authGroup.GET("/me", middleware.AuthRequired(), user.Me)
		authGroup.PUT("/profile", middleware.AuthRequired(), user.UpdateProfile)
		authGroup.POST("/change-password", middleware.AuthRequired(), user.ChangePassword)
	}

	// ================== CATALOGUE ==================
	products := api.Group("/products")
	{
		products.GET("", product.GetAllProducts)
		products.GET("/search", middleware.SearchRateLimit(), product.SearchProducts)
		products.GET("/category/:category", product.GetProductsByCategory)
		products.GET("/:id", product.GetProductByID)
		products.GET("/:id/reviews", h.Reviews.GetReviews)

		products.POST("/:id/reviews", middleware.AuthRequired(), h.Reviews.AddReview)
	}

	api.GET("/categories", product.GetCategories)

	// ================== COMMANDES ==================
	ordersGroup := api.Group("/orders", middleware.AuthRequired())
	{
		ordersGroup.POST("", h.Orders.Create)
		ordersGroup.GET("", h.Orders.MyOrders)
		ordersGroup.GET("/:id", h.Orders.GetByID)
		ordersGroup.POST("/:id/cancel", h.Orders.Cancel)
	}

	// ================== PAIEMENTS ==================
	paymentsGroup := api.Group("/payments")
	{
		paymentsGroup.POST("/initialize", middleware.AuthRequired(), h.Payments.Initialize)
		paymentsGroup.GET("/verify/:tx_ref", middleware.AuthRequired(), h.Payments.Verify)

		// La passerelle appelle le callback sans notre JWT.
		paymentsGroup.GET("/callback", h.Payments.Callback)
		paymentsGroup.POST("/callback", h.Payments.Callback)
	}

	// ================== NOTIFICATIONS TEMPS RÉEL ==================
	api.GET("/notifications/ws", middleware.AuthRequired(), user.NotificationsWebSocket)

	// ================== BACK-OFFICE ==================
	adminGroup := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.POST("/products", product.CreateProduct)
		adminGroup.PUT("/products/:id", product.UpdateProduct)
		adminGroup.DELETE("/products/:id", product.DeleteProduct)
		adminGroup.POST("/products/:id/image", product.UploadProductImage)

		adminGroup.POST("/categories", product.CreateCategory)
		adminGroup.PUT("/categories/:id", product.UpdateCategory)
		adminGroup.DELETE("/categories/:id", product.DeleteCategory)

		adminGroup.GET("/orders", h.AdminOrders.ListAll)
		adminGroup.PUT("/orders/:id/status", h.AdminOrders.UpdateStatus)
		adminGroup.POST("/orders/:id/cancel", h.AdminOrders.Cancel)
	}
}

func corsConfig() cors.Config {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
