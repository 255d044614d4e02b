package router

import (
	"soko/config"
	"soko/internal/cache"
	"soko/internal/events"
	"soko/internal/handler"
	"soko/internal/middleware"
	"soko/internal/models"
	"soko/internal/repository"
	"soko/internal/service"
	"soko/internal/ws"
	"soko/pkg/cloudinary"
	"soko/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto a gin engine.
// publisher, cloud and the cache may be nil; the affected features
// degrade to no-ops.
func Setup(
	cfg *config.Config,
	db *gorm.DB,
	gateway payment.Provider,
	publisher events.Publisher,
	cloud cloudinary.Client,
	store *cache.Cache,
) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	billingRepo := repository.NewBillingRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo, ratingRepo, store)
	billingSvc := service.NewBillingService(
		productRepo, walletRepo, orderRepo, txnRepo, billingRepo,
		gateway, cfg.Paystack.Timeout,
	)
	if publisher != nil {
		billingSvc.SetEventPublisher(publisher)
	}
	billingSvc.SetNotifier(hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	billingHandler := handler.NewBillingHandler(billingSvc)
	productHandler := handler.NewProductHandler(catalogSvc, cloud)
	categoryHandler := handler.NewCategoryHandler(catalogSvc)
	ratingHandler := handler.NewRatingHandler(catalogSvc)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))

	billings := authed.Group("/billings")
	{
		billings.POST("", billingHandler.InitializeCheckout)
		billings.GET("", billingHandler.VerifyTransaction)
		billings.GET("/orders", billingHandler.ListOrders)
		billings.GET("/transactions", billingHandler.ListTransactions)
		billings.GET("/order/:id", billingHandler.GetOrder)
		billings.GET("/transaction/:id", billingHandler.GetTransaction)
		billings.PATCH("/tracker/:id",
			middleware.RequireRole(models.RoleAdmin), billingHandler.UpdateOrderTracker)
		billings.GET("/wallet", billingHandler.GetWallet)
		billings.GET("/wallet/:id",
			middleware.RequireRole(models.RoleAdmin), billingHandler.GetWalletByID)
		billings.POST("/wallet", billingHandler.InitializeWalletTopUp)
		billings.POST("/wallet/transfer", billingHandler.Transfer)
	}

	products := authed.Group("/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.POST("", productHandler.Create)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
		products.POST("/:id/image", productHandler.UploadImage)
	}

	categories := authed.Group("/categories")
	{
		categories.GET("", categoryHandler.List)
		categories.GET("/:id", categoryHandler.Get)
		categories.POST("", middleware.RequireRole(models.RoleAdmin), categoryHandler.Create)
		categories.PUT("/:id", middleware.RequireRole(models.RoleAdmin), categoryHandler.Update)
		categories.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), categoryHandler.Delete)
	}

	ratings := authed.Group("/ratings")
	{
		ratings.GET("", ratingHandler.List)
		ratings.GET("/:id", ratingHandler.Get)
		ratings.POST("", ratingHandler.Create)
	}

	r.GET("/ws/notifications", ws.UpgradeNotifications(&cfg.JWT, hub))

	return r
}
