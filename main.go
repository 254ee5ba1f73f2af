package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	firebaseApp "firebase.google.com/go/v4"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"congregationAPI/handlers"
	"congregationAPI/internal/catalog"
	"congregationAPI/internal/config"
	"congregationAPI/internal/engine"
	"congregationAPI/internal/firebase"
	"congregationAPI/internal/notification"
	"congregationAPI/internal/store"
	"congregationAPI/middleware"
	"congregationAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	clerk.SetKey(cfg.ClerkSecretKey)
	log.Println("Clerk initialized successfully")

	// Clients created here keep ctx for token refresh, so it must not expire.
	ctx := context.Background()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load challenge catalog: ", err)
	}
	log.Printf("Loaded challenge catalog %s with %d templates", cat.Version(), len(cat.ListTemplates()))

	app, err := firebase.NewApp(ctx, cfg.FirebaseProjectID, cfg.FirebaseServiceAccount, cfg.FirebaseCredentialsFile)
	if err != nil {
		if cfg.StoreBackend == config.BackendFirestore {
			log.Fatal("Failed to initialize Firebase: ", err)
		}
		log.Printf("Warning: Could not initialize Firebase: %v", err)
		app = nil
	}

	db, err := store.Open(ctx, cfg, app)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer func() {
		log.Println("Closing store...")
		db.Close()
	}()

	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	progressEngine := engine.NewEngine(db,
		engine.WithLocation(cfg.Location),
		engine.WithLookbackDays(cfg.StreakLookbackDays),
	)

	dispatcher := services.NewNotificationDispatcher(db, cfg.NotificationWorkers)
	defer dispatcher.Stop()

	dispatcher.SetPushProvider(pushProvider(ctx, app))

	now := time.Now
	achievementService := services.NewAchievementService(db, cat)
	achievementService.SetNotifier(dispatcher)
	challengeService := services.NewChallengeService(cat, db, progressEngine, achievementService, now)
	goalService := services.NewGoalService(db, achievementService, now)

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	goalHandler := handlers.NewGoalHandler(goalService)
	achievementHandler := handlers.NewAchievementHandler(achievementService)
	notificationHandler := handlers.NewNotificationHandler(dispatcher)
	healthHandler := handlers.NewHealthHandler(db)

	r := mux.NewRouter()

	standardRouter := r.PathPrefix("/").Subrouter()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go rateLimiter.Cleanup(cleanupCtx, time.Minute, 10*time.Minute)

	standardRouter.Use(rateLimiter.Middleware)
	standardRouter.Use(middleware.MonitorMiddleware)

	standardRouter.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	standardRouter.HandleFunc("/health", healthHandler.Health).Methods("GET")

	api := standardRouter.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)
	handlers.RegisterProtectedRoutes(protected, challengeHandler, goalHandler, achievementHandler, notificationHandler)

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := ":" + cfg.Port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// pushProvider returns FCM when Firebase is available and a logging mock otherwise.
func pushProvider(ctx context.Context, app *firebaseApp.App) services.PushNotificationProvider {
	if app == nil {
		log.Println("Warning: Firebase unavailable, push notifications are logged only")
		return &services.MockPushProvider{}
	}
	fcmService, err := notification.NewFCMService(ctx, app)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
		return &services.MockPushProvider{}
	}
	log.Println("FCM Push Provider initialized successfully")
	return fcmService
}
