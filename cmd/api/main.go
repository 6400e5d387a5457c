package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"io.winapps.starlight/internal/ai"
	"io.winapps.starlight/internal/blob"
	"io.winapps.starlight/internal/calendar"
	"io.winapps.starlight/internal/config"
	"io.winapps.starlight/internal/db"
	"io.winapps.starlight/internal/entries"
	"io.winapps.starlight/internal/feed"
	firebaseutil "io.winapps.starlight/internal/firebase"
	"io.winapps.starlight/internal/handlers"
	"io.winapps.starlight/internal/live"
	"io.winapps.starlight/internal/logger"
	"io.winapps.starlight/internal/metrics"
	"io.winapps.starlight/internal/middleware"
	"io.winapps.starlight/internal/notify"
	"io.winapps.starlight/internal/profile"
	"io.winapps.starlight/internal/security"
	"io.winapps.starlight/internal/session"
	"io.winapps.starlight/internal/social"
	"io.winapps.starlight/internal/store"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.New(cfg.LogLevel, cfg.GinMode == gin.ReleaseMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize Firebase
	fb, err := firebaseutil.InitFirebase(ctx, cfg)
	if err != nil {
		zlog.Fatalw("Failed to initialize Firebase", "error", err)
	}
	defer fb.Close()

	// Initialize PostgreSQL
	postgresDB, err := db.InitPostgres()
	if err != nil {
		zlog.Fatalw("Failed to initialize PostgreSQL", "error", err)
	}
	defer postgresDB.Close()

	// Initialize Redis
	redisClient, err := db.InitRedis()
	if err != nil {
		zlog.Fatalw("Failed to initialize Redis", "error", err)
	}
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	docs := store.NewFirestore(fb.Firestore)
	sanitizer := security.NewSanitizer()

	// Push notifications
	pushTokens := notify.NewPGRegistry(postgresDB)
	dispatcher := notify.NewDispatcher(fb.Messaging, pushTokens, 256, recorder, zlog)
	dispatcher.Start(ctx, 4)

	// Live feed
	hub := live.NewHub(docs, zlog)
	go func() {
		if err := hub.Run(ctx); err != nil {
			zlog.Errorw("Entries listener gave up", "error", err)
		}
	}()

	// AI
	var generator ai.Generator
	if gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err == nil {
		generator = gemini
	} else {
		zlog.Warnw("AI features disabled", "error", err)
	}
	aiService := ai.NewService(generator, cfg.AILanguage, recorder, zlog)

	// Images
	var uploader entries.ImageUploader
	if fb.Bucket != nil {
		uploader = blob.NewUploader(blob.NewGCSBucket(fb.Bucket, fb.BucketName), cfg.MaxUploadBytes)
	} else {
		zlog.Warn("FIREBASE_STORAGE_BUCKET not set, image uploads disabled")
	}

	calendarService := calendar.NewService(docs, sanitizer, zlog)
	reminders := notify.NewReminders(calendarService, pushTokens, dispatcher, calendar.EventKey, zlog)
	if err := reminders.Start(ctx, cfg.ReminderCron); err != nil {
		zlog.Fatalw("Failed to schedule reminders", "error", err)
	}

	sessions := session.NewManager(fb.Auth, session.NewRedisCache(redisClient), docs, cfg.TokenCacheTTL, zlog)
	socialService := social.NewService(docs, docs, dispatcher, sanitizer, recorder, zlog)

	// Initialize Gin router
	router := gin.New()
	router.Use(
		middleware.RequestIDMiddleware(),
		middleware.RequestLoggingMiddleware(zlog),
		middleware.RecoveryMiddleware(zlog),
	)

	// Add CORS middleware for mobile app
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	routes := handlers.Routes{
		Auth:          handlers.NewAuthHandler(sessions, zlog),
		Entries:       handlers.NewEntryHandler(entries.NewService(docs, uploader, aiService, sanitizer, zlog), socialService, zlog),
		Users:         handlers.NewUsersHandler(profile.NewService(docs, sanitizer), socialService, zlog),
		Feed:          handlers.NewFeedHandler(hub, docs, feed.NewComposer(cfg.FeedCacheTTL, recorder), zlog),
		AI:            handlers.NewAIHandler(aiService, zlog),
		Calendar:      handlers.NewCalendarHandler(calendarService, zlog),
		Notifications: handlers.NewNotificationsHandler(pushTokens, zlog),

		RequireAuth:   middleware.AuthMiddleware(sessions),
		OptionalAuth:  middleware.OptionalAuth(sessions),
		RateLimit:     middleware.NewRateLimiter("api", cfg.RateLimitPerMinute).Middleware(),
		MutationLimit: middleware.NewRateLimiter("mutation", cfg.MutationRatePerMinute).Middleware(),
	}
	routes.Register(router.Group("/api/v1"))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		zlog.Infow("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("Shutting down server...")

	// Open feed streams only end once the hub closes their subscriptions
	hub.Close()
	reminders.Stop()

	// Give a 5 second timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Errorw("Server forced to shutdown", "error", err)
	}

	stop()
	dispatcher.Wait()
	zlog.Info("Server exited")
}
