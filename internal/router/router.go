package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dvfens/ags/config"
	"github.com/dvfens/ags/internal/app/controller"
	"github.com/dvfens/ags/internal/app/model"
	"github.com/dvfens/ags/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by the router.
type Controllers struct {
	Auth      *controller.AuthController
	Product   *controller.ProductController
	Gift      *controller.GiftController
	Address   *controller.AddressController
	Recipient *controller.RecipientController
	Order     *controller.OrderController
	Cart      *controller.CartController
	Location  *controller.LocationController
	Checkout  *controller.CheckoutController
	Session   *controller.SessionController
	Upload    *controller.UploadController // nil when S3 is not configured
}

// Limiters rate limit credential endpoints. Nil limiters are skipped.
type Limiters struct {
	Login  middleware.Limiter
	Signup middleware.Limiter
}

type Router struct {
	controllers    Controllers
	limiters       Limiters
	authMiddleware *middleware.AuthMiddleware
	session        gin.HandlerFunc
	config         *config.Config
}

func NewRouter(
	controllers Controllers,
	limiters Limiters,
	authMiddleware *middleware.AuthMiddleware,
	session gin.HandlerFunc,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		limiters:       limiters,
		authMiddleware: authMiddleware,
		session:        session,
		config:         cfg,
	}
}

func rateLimit(l middleware.Limiter, action string) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(l, action)
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "AGS API is running",
		})
	})

	ctl := r.controllers
	authenticate := r.authMiddleware.Authenticate()
	optionalAuth := r.authMiddleware.OptionalAuthenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rateLimit(r.limiters.Signup, "signup"), ctl.Auth.Signup)
			auth.POST("/login", rateLimit(r.limiters.Login, "login"), ctl.Auth.Login)
			auth.POST("/logout", authenticate, ctl.Auth.Logout)
			auth.GET("/me", authenticate, ctl.Auth.GetMe)
			auth.PUT("/me", authenticate, ctl.Auth.UpdateMe)
		}

		products := api.Group("/products")
		{
			products.GET("", ctl.Product.GetProducts)
			products.GET("/:id", ctl.Product.GetProductByID)
			products.POST("", authenticate, adminOnly, ctl.Product.CreateProduct)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", ctl.Product.GetCategories)
			categories.POST("", authenticate, adminOnly, ctl.Product.CreateCategory)
		}

		giftWraps := api.Group("/gift-wraps")
		{
			giftWraps.GET("", ctl.Gift.GetGiftWraps)
			giftWraps.POST("", authenticate, adminOnly, ctl.Gift.CreateGiftWrap)
		}

		occasions := api.Group("/occasions")
		{
			occasions.GET("", ctl.Gift.GetOccasions)
			occasions.POST("", authenticate, adminOnly, ctl.Gift.CreateOccasion)
		}

		addresses := api.Group("/addresses")
		addresses.Use(authenticate)
		{
			addresses.GET("", ctl.Address.GetAddresses)
			addresses.POST("", ctl.Address.CreateAddress)
			addresses.PUT("/:id/default", ctl.Address.SetDefaultAddress)
			addresses.DELETE("/:id", ctl.Address.DeleteAddress)
		}

		recipients := api.Group("/recipients")
		recipients.Use(authenticate)
		{
			recipients.GET("", ctl.Recipient.GetRecipients)
			recipients.POST("", ctl.Recipient.CreateRecipient)
		}

		orders := api.Group("/orders")
		orders.Use(authenticate)
		{
			orders.GET("", ctl.Order.GetOrders)
			orders.GET("/:id", ctl.Order.GetOrderByID)
			orders.POST("", ctl.Order.CreateOrder)
			orders.PUT("/:id/status", adminOnly, ctl.Order.UpdateOrderStatus)
		}

		// Reverse geocoding needs no session.
		api.GET("/location/reverse-geocode", ctl.Location.ReverseGeocode)

		// Session-scoped state. Auth is optional except where a user is required.
		sess := api.Group("")
		sess.Use(r.session, optionalAuth)
		{
			cart := sess.Group("/cart")
			{
				cart.GET("", ctl.Cart.GetCart)
				cart.POST("/items", ctl.Cart.AddToCart)
				cart.PUT("/items/:id", ctl.Cart.UpdateCartItem)
				cart.DELETE("/items/:id", ctl.Cart.RemoveFromCart)
				cart.DELETE("", ctl.Cart.ClearCart)
				cart.PUT("/gift", ctl.Cart.UpdateGift)
			}

			location := sess.Group("/location")
			{
				location.GET("", ctl.Location.GetLocation)
				location.POST("/pick", ctl.Location.Pick)
				location.POST("/proceed", ctl.Location.Proceed)
				location.POST("/back", ctl.Location.Back)
				location.PUT("/draft", ctl.Location.EditDraft)
				location.POST("/submit", ctl.Location.Submit)
				location.PUT("/delivery-address", ctl.Location.SelectDeliveryAddress)
			}

			sess.POST("/checkout", ctl.Checkout.Checkout)
			sess.GET("/session/ws", ctl.Session.WebSocketHandler)
		}

		if ctl.Upload != nil {
			uploads := api.Group("/uploads")
			uploads.Use(authenticate, adminOnly)
			{
				uploads.POST("/presign", ctl.Upload.PresignUpload)
			}
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			// Credentials rule out a literal "*"; echo the request origin instead.
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cors.New(cfg)
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cors.New(cfg)
}
