package api

import (
	"time"

	"storefront/config"
	"storefront/db"
	_ "storefront/docs" // registers the swagger spec via init()
	"storefront/metrics"
	"storefront/realtime"
	"storefront/utils"
	"storefront/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies bundles everything the HTTP routes need.
type Dependencies struct {
	Config  *config.Config
	Catalog *db.CatalogStore
	Users   *db.UserStore
	Hub     *realtime.Hub
	Metrics *metrics.Collector // optional
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	catalog := deps.Catalog
	users := deps.Users

	utils.RegisterValidators()

	router := gin.New()
	router.Use(utils.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	adminOnly := utils.AuthMiddleware(cfg, utils.RoleAdmin)
	userOnly := utils.AuthMiddleware(cfg, utils.RoleUser)
	authLimiter := utils.PerMinute(cfg.AuthRatePerMinute).Middleware()

	apiGroup := router.Group("/api")

	// Product Routes
	productGroup := apiGroup.Group("/products")
	{
		// GET /api/products
		productGroup.GET("", func(c *gin.Context) {
			GetProductsHandler(c, catalog)
		})
		// GET /api/products/{id}
		productGroup.GET("/:id", func(c *gin.Context) {
			GetProductHandler(c, catalog)
		})
		// POST /api/products
		productGroup.POST("", adminOnly, func(c *gin.Context) {
			CreateProductHandler(c, catalog)
		})
		// PUT /api/products/{id}
		productGroup.PUT("/:id", adminOnly, func(c *gin.Context) {
			UpdateProductHandler(c, catalog)
		})
		// DELETE /api/products/{id}
		productGroup.DELETE("/:id", adminOnly, func(c *gin.Context) {
			DeleteProductHandler(c, catalog)
		})
	}

	// POST /api/admin/login
	apiGroup.POST("/admin/login", authLimiter, func(c *gin.Context) {
		AdminLoginHandler(c, cfg)
	})

	// User Routes
	userGroup := apiGroup.Group("/users")
	{
		// POST /api/users/register
		userGroup.POST("/register", authLimiter, func(c *gin.Context) {
			RegisterHandler(c, users)
		})
		// POST /api/users/login
		userGroup.POST("/login", authLimiter, func(c *gin.Context) {
			LoginHandler(c, users, cfg)
		})
		// GET /api/users/{id}
		userGroup.GET("/:id", userOnly, func(c *gin.Context) {
			GetUserHandler(c, users)
		})
		// PUT /api/users/{id}/search-history
		userGroup.PUT("/:id/search-history", userOnly, func(c *gin.Context) {
			AddSearchHistoryHandler(c, users)
		})
		// DELETE /api/users/{id}/search-history
		userGroup.DELETE("/:id/search-history", userOnly, func(c *gin.Context) {
			ClearSearchHistoryHandler(c, users)
		})
	}

	// Real-time catalog events
	router.GET("/ws", gin.WrapH(deps.Hub))

	router.GET("/healthz", func(c *gin.Context) {
		HealthHandler(c, catalog, users, deps.Hub)
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Storefront page
	web.Register(router)

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", utils.RequestIDHeader},
		ExposeHeaders:    []string{utils.RequestIDHeader},
		AllowWebSockets:  true,
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}
	for _, o := range origins {
		if o == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	if len(origins) == 0 {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
