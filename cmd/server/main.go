package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"docex/internal/config"
	"docex/internal/extract"
	"docex/internal/handler"
	"docex/internal/logger"
	"docex/internal/parser"
	_ "docex/internal/parser/claude"
	_ "docex/internal/parser/gemini"
	_ "docex/internal/parser/openai"
	"docex/internal/port"
	"docex/internal/repository/postgres"
	"docex/internal/router"
	"docex/internal/service"
	s3storage "docex/internal/storage/s3"
	"docex/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.New(logger.Config{Format: cfg.Log.Format, Level: cfg.Log.Level})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	extractionRepo := postgres.NewExtractionRepo(db)

	// Initialize storage (optional)
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		log.Info().Msg("S3 bucket not configured, archiving disabled")
	}

	// Initialize the parser chain
	rules := parser.NewRuleParser(extract.New(cfg.Extract.Options()))
	docParser, err := parser.Build(&cfg.Parser, rules)
	if err != nil {
		return fmt.Errorf("failed to build parser chain: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWT)
	extractionSvc := service.NewExtractionService(
		extractionRepo,
		docParser,
		storage,
		validator.NewEngine(validator.DefaultRegistry()),
		service.ExtractionServiceConfig{
			MaxTextBytes:  cfg.Extract.MaxTextBytes,
			PresignExpiry: time.Duration(cfg.S3.PresignExpiry) * time.Second,
			MaxAttempts:   cfg.Queue.MaxRetries,
		},
	)

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(authSvc, extractionH, healthH, cfg.CORS.AllowedOrigins)

	var wg sync.WaitGroup
	if cfg.Queue.Enabled {
		worker := service.NewExtractionQueueWorker(extractionRepo, extractionSvc, service.QueueWorkerConfig{
			PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
			MaxRetries:   cfg.Queue.MaxRetries,
			Concurrency:  cfg.Queue.Concurrency,
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Port).Str("parser_mode", cfg.Parser.Mode).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	wg.Wait()
	return nil
}
