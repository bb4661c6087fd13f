package queueing

import (
	"context"

	"github.com/rs/zerolog"

	"soundscape/internal/domain"
	"soundscape/internal/planning"
)

// ContentStore is the slice of content persistence queueing needs.
type ContentStore interface {
	GetByID(ctx context.Context, id string) (*domain.Content, error)
}

// RequestStore creates and counts generation requests. CreateBatch is
// expected to enforce the per-content track capacity atomically.
type RequestStore interface {
	CountByContent(ctx context.Context, contentID string) (int, error)
	CreateBatch(ctx context.Context, content *domain.Content, toCreate, tracksPerRequest int, modelID string) ([]domain.GenerationRequest, error)
}

// RequestNotifier wakes workers after requests are committed.
type RequestNotifier interface {
	Enqueue(ctx context.Context, requestID string) error
}

// Service decides how many generation requests a content still needs and
// creates them.
type Service struct {
	contents ContentStore
	requests RequestStore
	notifier RequestNotifier
	plan     planning.Plan
	modelID  string
	logger   zerolog.Logger
}

type Options struct {
	Contents ContentStore
	Requests RequestStore
	Notifier RequestNotifier
	Plan     planning.Plan
	ModelID  string
	Logger   zerolog.Logger
}

func NewService(opts Options) *Service {
	plan := opts.Plan
	if plan.MinutesPerTrack == 0 {
		plan = planning.DefaultPlan
	}
	return &Service{
		contents: opts.Contents,
		requests: opts.Requests,
		notifier: opts.Notifier,
		plan:     plan,
		modelID:  opts.ModelID,
		logger:   opts.Logger,
	}
}

// QueueBatch tops a content up to its required request count. When enough
// requests already exist it is a no-op and returns an empty slice.
func (s *Service) QueueBatch(ctx context.Context, contentID string) ([]domain.GenerationRequest, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := content.Queueable(); err != nil {
		return nil, err
	}

	required := s.plan.RequiredRequestCount(content.TargetDurationMinutes)
	existing, err := s.requests.CountByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	toCreate := required - existing
	if toCreate <= 0 {
		s.logger.Debug().
			Str("content_id", contentID).
			Int("required", required).
			Int("existing", existing).
			Msg("content already fully queued")
		return []domain.GenerationRequest{}, nil
	}
	return s.create(ctx, content, toCreate)
}

// QueueSingle queues exactly one request for the content.
func (s *Service) QueueSingle(ctx context.Context, contentID string) (*domain.GenerationRequest, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := content.Queueable(); err != nil {
		return nil, err
	}
	created, err := s.create(ctx, content, 1)
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// QueueBulk queues count requests regardless of how many already exist. A
// non-positive count falls back to the content's required request count.
func (s *Service) QueueBulk(ctx context.Context, contentID string, count int) ([]domain.GenerationRequest, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := content.Queueable(); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = s.plan.RequiredRequestCount(content.TargetDurationMinutes)
	}
	return s.create(ctx, content, count)
}

func (s *Service) create(ctx context.Context, content *domain.Content, toCreate int) ([]domain.GenerationRequest, error) {
	created, err := s.requests.CreateBatch(ctx, content, toCreate, s.plan.TracksPerRequest, s.modelID)
	if err != nil {
		return nil, err
	}
	for _, req := range created {
		if err := s.notifier.Enqueue(ctx, req.ID); err != nil {
			// Workers poll anyway; a lost wake-up only adds latency.
			s.logger.Warn().Err(err).Str("request_id", req.ID).Msg("notify failed")
		}
	}
	s.logger.Info().
		Str("content_id", content.ID).
		Int("created", len(created)).
		Msg("generation requests queued")
	return created, nil
}
