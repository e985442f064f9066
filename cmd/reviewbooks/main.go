package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/trannm/reviewbooks/internal/api"
	"github.com/trannm/reviewbooks/internal/auth"
	"github.com/trannm/reviewbooks/internal/catalog"
	"github.com/trannm/reviewbooks/internal/email"
	"github.com/trannm/reviewbooks/internal/storage"
)

func main() {
	// Command-line flags
	urlFlag := flag.String("url", "", "Server bind address (e.g., :8080 or 0.0.0.0:8080)")
	flag.Parse()

	// Configuration
	dataDir := getEnv("REVIEWBOOKS_DATA_DIR", "./data")
	dbPath := filepath.Join(dataDir, "reviewbooks.db")
	port := getEnv("REVIEWBOOKS_PORT", "8080")
	publicURL := getEnv("REVIEWBOOKS_PUBLIC_URL", "http://localhost:"+port)

	// Determine bind address: flag takes precedence, then env, then default
	bindAddr := ":" + port
	if *urlFlag != "" {
		bindAddr = *urlFlag
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	db, err := storage.NewDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Catalog resolver: explicit provider config, no ambient globals past here
	resolver := catalog.NewResolver(db, catalog.NewClient(), catalog.Config{
		BaseURL: getEnv("REVIEWBOOKS_CATALOG_URL", ""),
		APIKey:  getEnv("REVIEWBOOKS_CATALOG_KEY", ""),
	})

	// Mail: fall back to log delivery when no relay is configured
	var mail email.Sender = email.LogSender{}
	if host := os.Getenv("REVIEWBOOKS_SMTP_HOST"); host != "" {
		mail = email.NewSMTPSender(email.SMTPConfig{
			Host:     host,
			Port:     getEnv("REVIEWBOOKS_SMTP_PORT", "587"),
			Username: os.Getenv("REVIEWBOOKS_SMTP_USER"),
			Password: os.Getenv("REVIEWBOOKS_SMTP_PASS"),
			From:     getEnv("REVIEWBOOKS_SMTP_FROM", "noreply@reviewbooks.local"),
		})
	}

	// Initialize handlers
	handler := api.NewHandler(db, resolver)
	authHandler := api.NewAuthHandler(db, mail, publicURL)

	// Set up Gin router
	r := gin.Default()

	// Enable CORS for browser clients
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", handler.HealthCheck)

	// API routes
	apiGroup := r.Group("/api")
	{
		// Auth routes (public)
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.GET("/verify-email", authHandler.VerifyEmail)
			authGroup.POST("/resend-verification", authHandler.ResendVerification)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
		}

		// Public reads; optional auth so responses can be identity-aware
		public := apiGroup.Group("")
		public.Use(auth.OptionalAuthMiddleware())
		{
			public.GET("/books", handler.SearchBooks)
			public.GET("/books/:id", handler.GetBook)
			public.GET("/books/:id/reviews", handler.ListBookReviews)
			public.GET("/reviews/:id", handler.GetReview)
			public.GET("/users/:id", handler.GetUser)
			public.GET("/users/:id/reviews", handler.ListUserReviews)
			public.GET("/forum/posts", handler.ListPosts)
			public.GET("/forum/posts/:id", handler.GetPost)
			public.GET("/forum/posts/:id/comments", handler.ListComments)
		}

		// Protected routes (require authentication)
		protected := apiGroup.Group("")
		protected.Use(auth.AuthMiddleware())
		{
			protected.GET("/auth/me", authHandler.GetCurrentUser)

			// Users
			protected.PUT("/users/:id", handler.UpdateUser)
			protected.DELETE("/users/:id", handler.DeleteUser)

			// Reviews
			protected.POST("/reviews", handler.CreateReview)
			protected.PUT("/reviews/:id", handler.UpdateReview)
			protected.DELETE("/reviews/:id", handler.DeleteReview)

			// Favorites
			protected.GET("/favorites", handler.ListFavorites)
			protected.POST("/favorites/:bookId", handler.AddFavorite)
			protected.DELETE("/favorites/:bookId", handler.RemoveFavorite)
			protected.GET("/favorites/:bookId", handler.CheckFavorite)

			// Forum
			protected.POST("/forum/posts", handler.CreatePost)
			protected.PUT("/forum/posts/:id", handler.UpdatePost)
			protected.DELETE("/forum/posts/:id", handler.DeletePost)
			protected.POST("/forum/posts/:id/comments", handler.CreateComment)
			protected.PUT("/forum/comments/:id", handler.UpdateComment)
			protected.DELETE("/forum/comments/:id", handler.DeleteComment)

			// Moderation
			admin := protected.Group("")
			admin.Use(auth.AdminMiddleware())
			{
				admin.GET("/users", handler.ListUsers)
				admin.PUT("/users/:id/role", handler.SetUserRole)
				admin.PUT("/forum/posts/:id/moderate", handler.ModeratePost)
			}
		}
	}

	// Start server
	log.Printf("ReviewBooks server starting on %s", bindAddr)
	log.Printf("Data directory: %s", dataDir)
	if err := r.Run(bindAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
