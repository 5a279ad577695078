package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/memeconomy/backend/internal/config"
	"github.com/memeconomy/backend/internal/database"
	"github.com/memeconomy/backend/internal/handlers"
	mW "github.com/memeconomy/backend/internal/middleware"
	"github.com/memeconomy/backend/internal/services"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Memeconomy Backend API
// @version 1.0
// @description API for the meme economy game: ledger, earning actions, mini-games, shop
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	// Initialize config
	viper.SetConfigFile(".env") // explicitly point to .env file
	viper.AutomaticEnv()        // allow environment variables to override .env

	viper.SetEnvPrefix("")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	// Initialize storage
	db := database.InitDatabase()
	defer db.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	if err := database.SeedCatalog(db); err != nil {
		log.Printf("Warning: Failed to seed item catalog: %v", err)
	}

	// Initialize services
	economyConfig := config.LoadEconomyConfig()
	economyService := services.NewEconomyService(db, redisClient, economyConfig)
	gameService := services.NewGameService(db, redisClient)
	freemiumService := services.NewFreemiumService(db, redisClient, economyConfig)
	shopService := services.NewShopService(db, redisClient)
	userService := services.NewUserService(db)
	leaderboardService := services.NewLeaderboardService(db, redisClient)
	adminService := services.NewAdminService(db, redisClient)
	authService := services.NewAuthService(db, redisClient, economyService)
	qrService := services.NewQRService(db, redisClient)
	qrHandler := handlers.NewQRHandler(qrService)

	// Initialize auth middleware with Redis
	mW.InitAuthMiddleware(redisClient)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Throttle(100))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Static file server for item art
	r.Handle("/static/item-art/*", http.StripPrefix("/static/item-art/",
		mW.StaticFileServer("./static/item-art")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Post("/auth/register", authService.Register)
		r.Post("/auth/login", authService.Login)
		r.Post("/auth/logout", authService.Logout)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware)

			r.Get("/auth/account", authService.GetUserAccount)

			// Money movement
			r.Post("/economy/deposit", economyService.HandleDeposit)
			r.Post("/economy/withdraw", economyService.HandleWithdraw)
			r.Post("/economy/transfer", economyService.HandleTransfer)
			r.Post("/economy/rob", economyService.HandleRob)

			// Earning actions
			r.Post("/economy/daily", economyService.HandleDaily)
			r.Post("/economy/work", economyService.HandleWork)
			r.Post("/economy/beg", economyService.HandleBeg)
			r.Post("/economy/search", economyService.HandleSearch)
			r.Post("/economy/fish", economyService.HandleFish)
			r.Post("/economy/mine", economyService.HandleMine)
			r.Post("/economy/hunt", economyService.HandleHunt)
			r.Post("/economy/dig", economyService.HandleDig)
			r.Post("/economy/vote", economyService.HandleVote)
			r.Post("/economy/adventure", economyService.HandleAdventure)
			r.Post("/economy/crime", economyService.HandleCrime)
			r.Post("/economy/postmeme", economyService.HandlePostMeme)
			r.Post("/economy/stream", economyService.HandleStream)
			r.Post("/economy/scratch", economyService.HandleScratch)
			r.Post("/economy/highlow", economyService.HandleHighLow)

			// Mini-games
			r.Post("/games/blackjack", gameService.HandleBlackjack)
			r.Post("/games/slots", gameService.HandleSlots)
			r.Post("/games/coinflip", gameService.HandleCoinflip)
			r.Get("/games/trivia", gameService.HandleTriviaQuestion)
			r.Post("/games/trivia", gameService.HandleTriviaAnswer)

			// Freemium claims
			r.Post("/freemium/claim", freemiumService.HandleClaim)
			r.Get("/freemium/next", freemiumService.HandleNextClaim)

			// Shop
			r.Get("/shop/items", shopService.HandleListItems)
			r.Post("/shop/buy", shopService.HandleBuy)
			r.Post("/shop/equip", shopService.HandleEquip)

			// User surfaces
			r.Get("/user/profile", userService.HandleProfile)
			r.Get("/user/inventory", shopService.HandleInventory)
			r.Get("/user/transactions", userService.HandleTransactions)
			r.Get("/user/notifications", userService.HandleNotifications)
			r.Post("/user/notifications/{id}/read", userService.HandleMarkNotificationRead)

			// Leaderboard
			r.Get("/leaderboard", leaderboardService.HandleLeaderboard)

			// Transfer-request QR codes
			r.Post("/qr/generate", qrHandler.GenerateQR)
			r.Post("/qr/process", qrHandler.ProcessQR)

			// Admin console
			r.Group(func(r chi.Router) {
				r.Use(mW.RequireAdmin)

				r.Get("/admin/users", adminService.HandleListUsers)
				r.Post("/admin/users/{username}/ban", adminService.HandleBan)
				r.Post("/admin/users/{username}/unban", adminService.HandleUnban)
				r.Post("/admin/command", adminService.HandleCommand)
			})
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
