package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/config"
	"github.com/RenatoCabral2022/tonegrid/internal/fastb64"
	"github.com/RenatoCabral2022/tonegrid/internal/handler"
	"github.com/RenatoCabral2022/tonegrid/internal/middleware"
	"github.com/RenatoCabral2022/tonegrid/internal/sequencer"
	"github.com/RenatoCabral2022/tonegrid/internal/soundcache"
	"github.com/RenatoCabral2022/tonegrid/internal/store"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	logger.Info("tonegrid starting",
		zap.String("port", cfg.Port),
		zap.Int("sampleRate", cfg.SampleRate),
		zap.Int("bitsPerSample", cfg.BitsPerSample),
		zap.Int("channels", cfg.NumChannels),
		zap.String("store", cfg.StorePath),
	)

	var st store.Store = store.NewMemory()
	if cfg.StorePath != "" {
		fs, err := store.OpenFile(cfg.StorePath, logger)
		if err != nil {
			logger.Fatal("failed to open composition store", zap.Error(err))
		}
		st = fs
	}

	seq, err := sequencer.New(sequencer.Options{
		Format:            cfg.Format(),
		MaxRenderSeconds:  cfg.MaxRenderSeconds,
		GridSteps:         cfg.GridSteps,
		RenderConcurrency: cfg.RenderConcurrency,
	}, wave.NewEncoder(fastb64.NewEncoding()), soundcache.New(cfg.CacheEntries), logger.With(zap.String("component", "sequencer")))
	if err != nil {
		logger.Fatal("failed to create sequencer", zap.Error(err))
	}

	preloadCtx, cancelPreload := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seq.Preload(preloadCtx); err != nil {
		logger.Warn("note preload incomplete", zap.Error(err))
	}
	cancelPreload()

	h := handler.NewHandlers(seq, st, logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.With(middleware.Auth(cfg.APIKey)).Mount("/v1", h.Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}
