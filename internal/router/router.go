package router

import (
	"fmt"
	"strings"

	"github.com/sgtmake/storefront-api/internal/cache"
	"github.com/sgtmake/storefront-api/internal/config"
	publichandlers "github.com/sgtmake/storefront-api/internal/http/handlers/public"
	"github.com/sgtmake/storefront-api/internal/logger"
	"github.com/sgtmake/storefront-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "store"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/products", publicHandler.GetProducts)
			public.GET("/products/:slug", publicHandler.GetProductBySlug)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 购物车与快照接口：登录用户和游客共用，
		// 合法令牌注入用户身份，否则按游客 cookie 处理
		cart := apiV1.Group("")
		cart.Use(OptionalUserJWTMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			cart.GET("/cart", publicHandler.GetCart)
			cart.POST("/cart/items", publicHandler.AddCartItem)
			cart.POST("/cart/custom-items", publicHandler.AddCustomCartItem)
			cart.PUT("/cart/items/:id", publicHandler.SetCartItemQuantity)
			cart.DELETE("/cart/items/:id", publicHandler.RemoveCartItem)
			cart.DELETE("/cart", publicHandler.ClearCart)
			cart.POST("/checkout/buy-now", publicHandler.BuyNow)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.POST("/checkout", publicHandler.Checkout)
			user.GET("/orders", publicHandler.GetOrders)
			user.GET("/orders/:id", publicHandler.GetOrder)
			user.GET("/addresses", publicHandler.GetAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)
		}

		// 支付网关回调（网关侧请求，无用户会话）
		apiV1.POST("/payments/callback", publicHandler.PaymentCallback)
		apiV1.POST("/payments/failure", publicHandler.PaymentFailure)
	}

	// 健康检查
	r.GET("/health", publicHandler.Health)

	return r
}
