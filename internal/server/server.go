package server

import (
	"context"
	"net/http"

	"github.com/MamzStore/ppobb/internal/auth"
	"github.com/MamzStore/ppobb/internal/catalog"
	"github.com/MamzStore/ppobb/internal/config"
	"github.com/MamzStore/ppobb/internal/ledger"
	"github.com/MamzStore/ppobb/internal/purchase"
	"github.com/MamzStore/ppobb/internal/topup"
	"github.com/MamzStore/ppobb/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, purchaseService purchase.Service, topupService topup.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	catalogHandler := catalog.NewHandler(db)
	ledgerHandler := ledger.NewHandler(db)
	purchaseHandler := purchase.NewHandler(purchaseService)
	topupHandler := topup.NewHandler(topupService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
	}

	router.GET("/api/categories", catalogHandler.ListCategories)
	router.GET("/api/products", catalogHandler.ListProducts)

	// Provider callbacks carry no auth; keep them rate-limited instead.
	router.POST("/api/topup/webhook", RateLimitMiddleware(10, 20), topupHandler.Webhook)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/api/balance", ledgerHandler.GetBalance)
		protected.GET("/api/balance/entries", ledgerHandler.ListEntries)
		protected.POST("/api/purchases", purchaseHandler.Place)
		protected.GET("/api/purchases", purchaseHandler.List)
		protected.GET("/api/purchases/:id", purchaseHandler.Get)
		protected.POST("/api/purchases/:id/check-status", purchaseHandler.CheckStatus)
		protected.POST("/api/topup/create", topupHandler.Create)
		protected.GET("/api/topup", topupHandler.List)
		protected.GET("/api/topup/:id", topupHandler.Get)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/users", userHandler.ListUsers)
		admin.POST("/users/:id/balance", ledgerHandler.AdjustBalance)
		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.POST("/products", catalogHandler.CreateProduct)
		admin.PUT("/products/:id", catalogHandler.UpdateProduct)
		admin.DELETE("/products/:id", catalogHandler.DeleteProduct)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router is exposed for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
