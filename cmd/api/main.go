package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"soundscape/internal/adapter/repo"
	"soundscape/internal/assembly"
	"soundscape/internal/http/handlers"
	"soundscape/internal/http/httpapi"
	"soundscape/internal/infra"
	"soundscape/internal/media"
	"soundscape/internal/planning"
	"soundscape/internal/queue"
	"soundscape/internal/queueing"
	"soundscape/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	runner := infra.NewSQLRunner(pool, logger)

	contents := repo.NewContentRepository(pool)
	requests := repo.NewRequestRepository(pool, logger)
	tracks := repo.NewTrackRepository(pool)
	compositions := repo.NewCompositionRepository(pool)
	videos := repo.NewVideoRepository(pool)

	queueSvc := queueing.NewService(queueing.Options{
		Contents: contents,
		Requests: requests,
		Notifier: queue.NewNotifier(runner),
		Plan:     planning.DefaultPlan,
		ModelID:  cfg.SunoModel,
		Logger:   logger,
	})

	execRunner := &media.ExecRunner{}
	prober := media.NewProber(execRunner, cfg.FFprobePath, &logger)
	assemblySvc := assembly.NewService(assembly.Options{
		Contents:     contents,
		Tracks:       tracks,
		Compositions: compositions,
		Videos:       videos,
		Store:        store,
		Concatenator: media.NewConcatenator(execRunner, cfg.FFmpegPath, &logger),
		Video:        media.NewVideoAssembler(execRunner, prober, cfg.FFmpegPath, cfg.FFprobePath, &logger),
		Logger:       logger,
	})

	app := &handlers.App{
		Contents:     contents,
		Tracks:       tracks,
		Queue:        queueSvc,
		Assembly:     assemblySvc,
		Compositions: compositions,
		Videos:       videos,
		DB:           pool,
		ArtworkPath:  cfg.ArtworkPath,
		Logger:       logger,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
