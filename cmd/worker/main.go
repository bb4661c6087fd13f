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

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"soundscape/internal/infra"
	"soundscape/internal/media"
	"soundscape/internal/naming"
	"soundscape/internal/providers/suno"
	"soundscape/internal/queue"
	"soundscape/internal/sqlinline"
	"soundscape/internal/storage"
)

type claimedRequest struct {
	ID        string
	ContentID string
	Prompt    string
	ModelID   string
}

type generationWorker struct {
	ctx          context.Context
	runner       *infra.SQLRunner
	logger       infra.Logger
	client       *suno.Client
	store        *storage.FileStore
	prober       *media.Prober
	listener     *queue.Listener
	pollInterval time.Duration
	taskInterval time.Duration
	taskTimeout  time.Duration
}

var errNoRequestAvailable = errors.New("no request available")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	client, err := suno.NewClient(suno.Options{
		APIKey:     cfg.SunoAPIKey,
		BaseURL:    cfg.SunoBaseURL,
		Model:      cfg.SunoModel,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure generation client")
	}

	worker := &generationWorker{
		ctx:          ctx,
		runner:       runner,
		logger:       logger,
		client:       client,
		store:        store,
		prober:       media.NewProber(&media.ExecRunner{}, cfg.FFprobePath, &logger),
		listener:     queue.NewListener(pool, logger),
		pollInterval: cfg.WorkerPollInterval,
		taskInterval: cfg.TaskPollInterval,
		taskTimeout:  cfg.TaskPollTimeout,
	}

	if err := worker.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

func (w *generationWorker) Run() error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		req, err := w.claimRequest()
		if err != nil {
			if errors.Is(err, errNoRequestAvailable) {
				w.idle()
				continue
			}
			w.logger.Error().Err(err).Msg("worker: failed to claim request")
			w.idle()
			continue
		}

		w.handleRequest(req)
	}
}

// idle blocks on the notification channel so freshly queued requests are
// picked up immediately; the poll interval bounds the wait either way.
func (w *generationWorker) idle() {
	if err := w.listener.Wait(w.ctx, w.pollInterval); err != nil && !errors.Is(err, context.Canceled) {
		w.logger.Warn().Err(err).Msg("worker: listen failed, falling back to sleep")
		select {
		case <-w.ctx.Done():
		case <-time.After(w.pollInterval):
		}
	}
}

func (w *generationWorker) claimRequest() (claimedRequest, error) {
	row := w.runner.QueryRow(w.ctx, sqlinline.QWorkerClaimRequest)
	var req claimedRequest
	if err := row.Scan(&req.ID, &req.ContentID, &req.Prompt, &req.ModelID); err != nil {
		if infra.IsNoRows(err) {
			return claimedRequest{}, errNoRequestAvailable
		}
		return claimedRequest{}, err
	}
	return req, nil
}

func (w *generationWorker) handleRequest(req claimedRequest) {
	w.logger.Info().Str("request_id", req.ID).Str("content_id", req.ContentID).Msg("worker: picked request")

	taskID, err := w.process(req)
	if err != nil {
		w.logger.Error().Err(err).Str("request_id", req.ID).Msg("worker: request failed")
		if _, execErr := w.runner.Exec(w.ctx, sqlinline.QFailRequest, req.ID, taskID, err.Error()); execErr != nil {
			w.logger.Error().Err(execErr).Str("request_id", req.ID).Msg("worker: mark failed errored")
		}
		return
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QCompleteRequest, req.ID, taskID); err != nil {
		w.logger.Error().Err(err).Str("request_id", req.ID).Msg("worker: mark completed errored")
	}
}

// process runs one request end to end and returns the remote task id it was
// bound to, empty if submission itself failed.
func (w *generationWorker) process(req claimedRequest) (string, error) {
	taskID, err := w.client.Submit(w.ctx, req.Prompt, suno.SubmitOptions{Instrumental: true})
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if _, err := w.runner.Exec(w.ctx, sqlinline.QRecordTaskID, req.ID, taskID); err != nil {
		w.logger.Warn().Err(err).Str("request_id", req.ID).Msg("worker: record task id failed")
	}

	if err := w.awaitCompletion(taskID); err != nil {
		return taskID, err
	}

	clips, err := w.client.FetchResult(w.ctx, taskID)
	if err != nil {
		return taskID, fmt.Errorf("fetch result: %w", err)
	}
	if len(clips) == 0 {
		return taskID, errors.New("task produced no audio")
	}

	for idx, clip := range clips {
		if err := w.persistClip(req, clip, idx); err != nil {
			return taskID, err
		}
	}
	return taskID, nil
}

func (w *generationWorker) awaitCompletion(taskID string) error {
	deadline := time.Now().Add(w.taskTimeout)
	ticker := time.NewTicker(w.taskInterval)
	defer ticker.Stop()

	for {
		status, err := w.client.PollStatus(w.ctx, taskID)
		if err != nil {
			return fmt.Errorf("poll status: %w", err)
		}
		if status.State == suno.TaskComplete {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("task %s timed out after %s", taskID, w.taskTimeout)
		}
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *generationWorker) persistClip(req claimedRequest, clip suno.ClipMetadata, idx int) error {
	data, err := w.client.DownloadAudio(w.ctx, clip.AudioURL)
	if err != nil {
		return fmt.Errorf("download audio: %w", err)
	}

	key := fmt.Sprintf("contents/%s/tracks/%s.mp3", req.ContentID, uuid.NewString())
	if _, err := w.store.Write(w.ctx, key, data); err != nil {
		return fmt.Errorf("store audio: %w", err)
	}

	duration := clip.DurationSeconds
	if duration <= 0 {
		path, pathErr := w.store.AbsPath(key)
		if pathErr != nil {
			return pathErr
		}
		duration = w.prober.Duration(w.ctx, path)
	}

	title := naming.TrackTitle(clip.Title, req.Prompt, idx+1)
	var trackID string
	row := w.runner.QueryRow(w.ctx, sqlinline.QInsertTrack, req.ContentID, req.ID, title, key, duration)
	if err := row.Scan(&trackID); err != nil {
		return fmt.Errorf("insert track: %w", err)
	}
	w.logger.Info().
		Str("request_id", req.ID).
		Str("track_id", trackID).
		Float64("duration_seconds", duration).
		Msg("worker: track stored")
	return nil
}
