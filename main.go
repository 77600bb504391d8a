package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ocr-ai-service/internal/config"
	"ocr-ai-service/internal/db"
	"ocr-ai-service/internal/extract"
	httphandler "ocr-ai-service/internal/http"
	"ocr-ai-service/internal/imaging"
	"ocr-ai-service/internal/logger"
	"ocr-ai-service/internal/recognize"
	"ocr-ai-service/internal/repository"
	"ocr-ai-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Pretty)

	if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create upload dir")
	}

	var store repository.ResultStore
	switch cfg.Storage.Backend {
	case "postgres":
		gormDB, err := db.Connect(cfg.Database.DSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		store = repository.NewPostgresStore(gormDB)
		log.Info().Msg("using postgres result store")
	default:
		fileStore, err := repository.NewFileStore(cfg.Storage.ResultsDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create file store")
		}
		store = fileStore
		log.Info().Str("dir", cfg.Storage.ResultsDir).Msg("using file result store")
	}

	vision := extract.NewVisionExtractor(extract.VisionConfig{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
	}, log)

	ocrService := service.NewOCRService(
		imaging.NewPreprocessor(),
		extract.NewTesseractExtractor(log),
		vision,
		recognize.NewPlateRecognizer(),
		store,
		log,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(httphandler.RequestID(log))
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize

	handler := httphandler.NewHandler(ocrService, vision, cfg, log)
	handler.Register(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
