// Package server is a stand-in for the Bookify backend.
//
// It serves the same REST surface the client talks to, backed by SQLite, so the
// CLI can be developed and tested without the real backend. Payments are
// simulated: gateway orders are minted locally and signatures are HMACs keyed
// with the configured key secret.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookify-dev/bookify/internal/auth"
	"github.com/bookify-dev/bookify/internal/config"
	"github.com/bookify-dev/bookify/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router    *gin.Engine
	db        *gorm.DB
	config    config.StubConfig
	logger    zerolog.Logger
	validator *validator.Validate
	tokens    *auth.Issuer
	uploads   *uploadStore
	now       func() time.Time
}

// New creates a new server instance
func New(cfg config.StubConfig, zlog zerolog.Logger, issuerOpts ...auth.IssuerOption) (*Server, error) {
	db, err := initDatabase(cfg.DatabaseURL, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Generate a JWT secret when none is configured (64 hex characters = 32 bytes of randomness)
	if cfg.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		cfg.JWTSecret = hex.EncodeToString(secret)
		zlog.Debug().Msg("Generated ephemeral JWT secret")
	}

	tokens, err := auth.NewIssuer(cfg.JWTSecret, issuerOpts...)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:        db,
		config:    cfg,
		logger:    zlog,
		validator: newValidator(),
		tokens:    tokens,
		uploads:   newUploadStore(),
		now:       time.Now,
	}

	server.setupRouter()

	return server, nil
}

// initDatabase opens the SQLite database. A single connection keeps an
// in-memory database alive for the life of the server.
func initDatabase(url string, zlog zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(url), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stderr, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.Exec("PRAGMA foreign_keys=1").Error; err != nil {
		zlog.Warn().Err(err).Msg("Failed to enable foreign keys")
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")

	// Public auth endpoints
	public := api.Group("/auth")
	{
		public.POST("/login", s.login)
		public.POST("/register", s.register)
		public.POST("/register-admin", s.registerAdmin)
		public.POST("/forgot-password", s.forgotPassword)
		public.POST("/reset-password", s.resetPassword)
		public.GET("/email/:email", s.userIDByEmail)
		public.GET("/books", s.bookNames)
		public.GET("/authors", s.authorNames)
	}
	s.router.GET("/uploads/:name", s.serveUpload)

	authed := api.Group("")
	authed.Use(JWTAuthMiddleware(s.db, s.tokens, s.logger))
	{
		authed.GET("/auth/profile/:id", s.getProfile)
		authed.PUT("/auth/profile/:id", s.updateProfile)

		authed.GET("/user/books", s.listUserBooks)
		authed.GET("/user/books/search", s.searchUserBooks)

		authed.POST("/cart/:userId/:bookId", s.addToCart)
		authed.GET("/cart/:userId", s.getCart)
		authed.GET("/cart/:userId/name", s.getCartUserName)
		authed.DELETE("/cart/:userId/:itemId", s.removeFromCart)

		authed.POST("/wishlist/:userId/:bookId", s.addToWishlist)
		authed.GET("/wishlist/:userId", s.getWishlist)
		authed.DELETE("/wishlist/:userId/:itemId", s.removeFromWishlist)

		authed.POST("/order/place", s.placeOrder)
		authed.GET("/order/user/:userId", s.ordersByUser)
		authed.PUT("/order/edit/:orderId", s.editOrder)
		authed.DELETE("/order/:orderId", s.removeOrder)
		authed.DELETE("/order/:orderId/book/:bookId", s.removeOrderItem)
		authed.POST("/order/:orderId/book/:bookId/review", s.addReview)
		authed.GET("/order/:orderId/print/:status", s.printOrder)

		authed.GET("/payment/key", s.paymentKey)
		authed.POST("/payment/create-order", s.createGatewayOrder)
		authed.POST("/payment/verify", s.verifyPayment)
		authed.POST("/payment/place-order", s.placePaidOrder)
		authed.GET("/payment/info/:orderId", s.paymentInfo)

		authed.POST("/returns/request", s.createReturnRequest)
		authed.GET("/returns/user/:userId", s.returnRequestsByUser)
		authed.GET("/returns/:id", s.getReturnRequest)
		authed.PUT("/returns/:id", s.editReturnRequest)
		authed.DELETE("/returns/:id", s.deleteReturnRequest)
	}

	admin := api.Group("")
	admin.Use(JWTAuthMiddleware(s.db, s.tokens, s.logger), AdminOnlyMiddleware(s.logger))
	{
		admin.GET("/authors", s.listAuthors)
		admin.GET("/authors/names", s.authorIDNames)
		admin.GET("/authors/search", s.searchAuthors)
		admin.GET("/authors/:id", s.getAuthor)
		admin.POST("/authors", s.createAuthor)
		admin.PUT("/authors/:id", s.updateAuthor)
		admin.DELETE("/authors/:id", s.deleteAuthor)

		admin.GET("/books", s.listBooks)
		admin.GET("/books/search", s.searchBooks)
		admin.GET("/books/:id", s.getBook)
		admin.POST("/books", s.createBook)
		admin.PUT("/books/:id", s.updateBook)
		admin.DELETE("/books/:id", s.deleteBook)

		admin.GET("/admin/orders", s.allOrders)
		admin.PUT("/admin/orders/:id/status", s.updateOrderStatus)
		admin.GET("/admin/orders/info/:id", s.paymentInfoAdmin)
		admin.GET("/admin/orders/stats", s.orderStats)
		admin.POST("/admin/orders/stats/range", s.orderStatsByRange)
		admin.GET("/admin/orders/stats/weekly", s.weeklyStats)
		admin.GET("/admin/orders/stats/monthly", s.monthlyStats)

		admin.GET("/info/users", s.listUsers)
		admin.GET("/info/carts", s.listCarts)
		admin.GET("/info/wishlists", s.listWishlists)

		admin.GET("/admin/returns/all", s.allReturnRequests)
		admin.GET("/admin/returns/status/:status", s.returnRequestsByStatus)
		admin.PUT("/admin/returns/update-status/:id", s.updateReturnStatus)
		admin.PUT("/admin/returns/refund/:id", s.refundReturnRequest)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", c.GetHeader("X-Request-ID")).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "bookify-stub",
	})
}

// Handler exposes the router, for httptest servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// DB returns the database connection, for seeding
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Start serves on the configured address until SIGINT or SIGTERM
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-sigChan:
	}
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
