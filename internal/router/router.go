// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/frima-market/frima-gateway/internal/config"
	"github.com/frima-market/frima-gateway/internal/handlers"
	"github.com/frima-market/frima-gateway/internal/middleware"
	"github.com/frima-market/frima-gateway/internal/services"
	"github.com/frima-market/frima-gateway/internal/utils"
)

// Services are the application services the HTTP surface exposes.
type Services struct {
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Wallet    *services.WalletService
	Items     *services.ItemService
	Purchases *services.PurchaseService
	Receipts  *services.ReceiptService
	Listings  *services.ListingService
	Likes     *services.LikeService
	Messages  *services.MessageService
	Flows     *services.FlowRegistry
}

// Limiters throttle the whole API and, separately, transaction submissions.
type Limiters struct {
	General *middleware.RateLimiter
	Tx      *middleware.RateLimiter
}

func NewLimiters(cfg config.RateLimitConfig) Limiters {
	return Limiters{
		General: middleware.NewGeneralLimiter(cfg.RequestsPerSecond, cfg.Burst),
		Tx:      middleware.NewTxLimiter(cfg.TxPerMinute),
	}
}

func Initialize(cfg *config.Config, svc Services, limiters Limiters) *gin.Engine {
	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(svc.Wallet)
	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Profiles)
	walletHandler := handlers.NewWalletHandler(svc.Wallet)
	itemHandler := handlers.NewItemHandler(svc.Items, svc.Purchases, svc.Receipts, svc.Listings)
	listingHandler := handlers.NewListingHandler(svc.Listings)
	likeHandler := handlers.NewLikeHandler(svc.Likes)
	messageHandler := handlers.NewMessageHandler(svc.Messages)
	intentHandler := handlers.NewIntentHandler(svc.Flows)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()
	r.MaxMultipartMemory = cfg.AWS.MaxUploadSizeMB << 20

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limiters.General.Middleware())

	r.GET("/health", healthHandler.Health)
	r.Static("/uploads", cfg.AWS.UploadDir)

	registered := middleware.RegistrationRequired(svc.Profiles)
	txLimit := limiters.Tx.Middleware()

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/session", authHandler.CreateSession)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())

		users := protected.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.POST("/profile-image", userHandler.UploadProfileImage)
			users.GET("/:uid", userHandler.GetPublicProfile)
		}

		wallet := protected.Group("/wallet")
		{
			wallet.GET("", walletHandler.GetWallet)
			wallet.POST("/connect", walletHandler.Connect)
			wallet.POST("/disconnect", walletHandler.Disconnect)
			wallet.POST("/network", walletHandler.SwitchNetwork)
			wallet.POST("/send", txLimit, walletHandler.Send)
			wallet.GET("/events", walletHandler.Events)
		}

		items := protected.Group("/items")
		{
			items.GET("", itemHandler.GetItems)
			items.GET("/:id", itemHandler.GetItem)
			items.GET("/:id/purchase", itemHandler.GetPurchase)
			items.DELETE("/:id/purchase", itemHandler.DismissPurchase)
			items.POST("/:id/purchase", registered, txLimit, itemHandler.Purchase)
			items.POST("/:id/receipt", registered, txLimit, itemHandler.ConfirmReceipt)
			items.GET("/:id/receipt", itemHandler.GetStatusIntent(services.ReceiptKey))
			items.DELETE("/:id/receipt", itemHandler.DismissStatusIntent(services.ReceiptKey))
			items.POST("/:id/cancel", registered, txLimit, itemHandler.CancelListing)
			items.GET("/:id/cancel", itemHandler.GetStatusIntent(services.CancelKey))
			items.DELETE("/:id/cancel", itemHandler.DismissStatusIntent(services.CancelKey))
			items.PUT("/:id", registered, txLimit, itemHandler.UpdateItem)
		}

		protected.GET("/intents", intentHandler.GetIntents)

		listings := protected.Group("/listings")
		listings.Use(registered)
		{
			listings.POST("", txLimit, listingHandler.CreateListing)
			listings.GET("/current", listingHandler.GetCurrent)
			listings.DELETE("/current", listingHandler.DismissCurrent)
		}

		likes := protected.Group("/likes")
		likes.Use(registered)
		{
			likes.POST("", likeHandler.AddLike)
			likes.DELETE("", likeHandler.RemoveLike)
			likes.GET("/status", likeHandler.GetStatus)
			likes.GET("/user", likeHandler.GetUserLikes)
		}

		messages := protected.Group("/messages")
		messages.Use(registered)
		{
			messages.GET("", messageHandler.GetMessages)
			messages.POST("", messageHandler.SendMessage)
			messages.PUT("/read", messageHandler.MarkRead)
			messages.GET("/conversations", messageHandler.GetConversations)
			messages.GET("/stream", messageHandler.StreamMessages)
			messages.GET("/unread/stream", messageHandler.StreamUnread)
		}
	}

	return r
}
