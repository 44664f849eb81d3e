package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/medtrack/internal/auth"
	"github.com/fkhayef/medtrack/internal/config"
	"github.com/fkhayef/medtrack/internal/database"
	"github.com/fkhayef/medtrack/internal/logger"
	"github.com/fkhayef/medtrack/internal/mailer"
	"github.com/fkhayef/medtrack/internal/medicine"
	"github.com/fkhayef/medtrack/internal/notification"
	"github.com/fkhayef/medtrack/internal/scanner"
	"github.com/fkhayef/medtrack/internal/user"
	"github.com/fkhayef/medtrack/internal/ws"
	mw "github.com/fkhayef/medtrack/pkg/middleware"
	"github.com/fkhayef/medtrack/pkg/response"
)

// @title           MedTrack API
// @version         1.0
// @description     Personal medicine inventory tracker with expiry alerts.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg)

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Connected to database successfully")

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiresIn)

	// Live notification channel
	hub := ws.NewHub(log)
	go hub.Run()

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, jwtManager)
	userHandler := user.NewHandler(userService)

	// Notification feature (alert store + dispatcher)
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo, userRepo, hub, mailer.New(cfg), log)
	notificationHandler := notification.NewHandler(notificationService)

	// Medicine feature
	medicineRepo := medicine.NewRepository(db)
	medicineService := medicine.NewService(medicineRepo, notificationRepo)
	medicineHandler := medicine.NewHandler(medicineService)

	// Expiry scanner
	expiryScanner := scanner.New(medicineRepo, notificationRepo, notificationService,
		cfg.ExpiryWarningDays, cfg.ExpiryCheckInterval, log)
	expiryScanner.Start()

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Live channel; browsers cannot set headers on websocket upgrades, so
	// the token is carried in the query string.
	r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		claims, err := jwtManager.ParseToken(req.URL.Query().Get("token"))
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}
		hub.ServeWS(w, req, claims.UserID)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", userHandler.AuthRoutes())

		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(jwtManager))
			r.Mount("/users", userHandler.Routes())
			r.Mount("/medicines", medicineHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	expiryScanner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}
