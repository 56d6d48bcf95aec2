// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"promohub/internal/bot"
	"promohub/internal/config"
	"promohub/internal/dialog"
	"promohub/internal/export"
	"promohub/internal/media"
	"promohub/internal/metrics"
	promotionrepository "promohub/internal/promotion/repository"
	promotionservice "promohub/internal/promotion/service"
	promotionhttp "promohub/internal/promotion/transport/http"
	userrepository "promohub/internal/user/repository"
	userservice "promohub/internal/user/service"
	"promohub/pkg/db"
	"promohub/pkg/middleware"
)

func main() {
	log.Println("PromoHub starting...")
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	schemaCtx, schemaCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := db.EnsureSchema(schemaCtx, database); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}
	schemaCancel()

	metrics.InitMetrics()

	// --- ИНИЦИАЛИЗАЦИЯ СЛОЁВ ---
	userRepo := userrepository.NewPostgresUserRepository(database)
	userService := userservice.NewUserService(userRepo)
	promoRepo := promotionrepository.NewPostgresPromotionRepository(database)
	promoService := promotionservice.NewService(promoRepo, userService)

	adapter, err := bot.New(cfg.BotToken)
	if err != nil {
		log.Fatalf("Bot initialization failed: %v", err)
	}

	states := dialog.NewStore(cfg.DialogIdleTTL)
	machine := dialog.NewMachine(states, promoService, userService, adapter, cfg.WebAppURL)
	dispatcher := dialog.NewDispatcher(machine, adapter, cfg.AdminID)

	mediaService := media.NewService(adapter)
	h := promotionhttp.NewHandler(promoService, mediaService)

	// Бот читает апдейты в фоне
	go adapter.Run(ctx, dispatcher)

	// Суточный экспорт статистики
	scheduler := cron.New()
	if cfg.ExportPath != "" {
		exporter := export.NewExporter(cfg.ExportPath, promoRepo, userService)
		if err := exporter.Schedule(scheduler); err != nil {
			log.Fatalf("Export scheduling failed: %v", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	// --- РОУТЕР ---
	r := chi.NewRouter()

	// CORS: веб-вью открывается из Telegram, origin не ограничиваем
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Telegram-User-Id"},
		MaxAge:         300,
	}))
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.GlobalRateLimiter.Middleware)
	r.Use(middleware.ValidateRequest)

	r.Get("/api/promotions", h.ListPromotions)
	r.Get("/api/promotions/{id}", h.GetPromotion)
	r.Post("/api/promotions/{id}/click", h.LogClick)
	r.Get("/api/top-promotions", h.TopPromotions)
	r.Get("/api/image/{file_id}", h.ProxyImage)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if cfg.MetricsUser != "" && cfg.MetricsPass != "" {
		r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPass)).
			Handle("/metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:         ":" + cfg.WebPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Web server running on :%s", cfg.WebPort)

	// Graceful shutdown на сигналы ОС
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Println("Shutdown signal received, starting graceful shutdown")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown failed: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	log.Println("Server stopped")
}
