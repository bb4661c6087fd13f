package assembly

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"soundscape/internal/composer"
	"soundscape/internal/domain"
	"soundscape/internal/media"
	"soundscape/internal/naming"
)

// ContentStore is the slice of content persistence assembly needs.
type ContentStore interface {
	GetByID(ctx context.Context, id string) (*domain.Content, error)
}

// TrackStore lists the finished tracks eligible for composition.
type TrackStore interface {
	ListCompletedByContent(ctx context.Context, contentID string) ([]domain.Track, error)
}

// CompositionStore persists composition lifecycle transitions.
type CompositionStore interface {
	Create(ctx context.Context, c *domain.Composition) error
	MarkCompleted(ctx context.Context, id, audioKey string, totalSeconds float64, trackIDs []string) error
	MarkFailed(ctx context.Context, id, reason string) error
	GetByID(ctx context.Context, id string) (*domain.Composition, error)
}

// VideoStore persists music video lifecycle transitions.
type VideoStore interface {
	Create(ctx context.Context, v *domain.MusicVideo) error
	MarkCompleted(ctx context.Context, id, videoKey string, resolution *string, durationSeconds *float64, fileSizeBytes int64) error
	MarkFailed(ctx context.Context, id, reason string) error
	GetByID(ctx context.Context, id string) (*domain.MusicVideo, error)
}

// ArtifactStore maps storage keys onto filesystem paths.
type ArtifactStore interface {
	AbsPath(key string) (string, error)
}

// Concatenator joins audio files end to end.
type Concatenator interface {
	Concatenate(ctx context.Context, audioPaths []string, outputPath string) (string, error)
}

// VideoGenerator renders a still-image video for an audio file.
type VideoGenerator interface {
	Generate(ctx context.Context, audioPath, artworkPath, outputPath string, onProgress media.ProgressFunc) (*media.VideoMetadata, error)
}

// Service orchestrates composition and video assembly. Every attempt leaves
// a persisted artifact row, completed or failed, so callers can inspect what
// happened.
type Service struct {
	contents     ContentStore
	tracks       TrackStore
	compositions CompositionStore
	videos       VideoStore
	store        ArtifactStore
	selector     *composer.Selector
	concat       Concatenator
	video        VideoGenerator
	logger       zerolog.Logger
}

type Options struct {
	Contents     ContentStore
	Tracks       TrackStore
	Compositions CompositionStore
	Videos       VideoStore
	Store        ArtifactStore
	Selector     *composer.Selector
	Concatenator Concatenator
	Video        VideoGenerator
	Logger       zerolog.Logger
}

func NewService(opts Options) *Service {
	selector := opts.Selector
	if selector == nil {
		selector = composer.NewSelector(nil)
	}
	return &Service{
		contents:     opts.Contents,
		tracks:       opts.Tracks,
		compositions: opts.Compositions,
		videos:       opts.Videos,
		store:        opts.Store,
		selector:     selector,
		concat:       opts.Concatenator,
		video:        opts.Video,
		logger:       opts.Logger,
	}
}

// ComposeAudio selects tracks for the content and concatenates them into a
// single audio artifact. Selection failure is recorded on the composition
// row and returned; no partial audio is ever produced.
func (s *Service) ComposeAudio(ctx context.Context, contentID string) (*domain.Composition, error) {
	content, err := s.contents.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	tracks, err := s.tracks.ListCompletedByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	comp := &domain.Composition{
		ContentID: contentID,
		Title:     naming.TitleFromPrompt(content.GenerationPrompt),
		Status:    domain.ArtifactStatusProcessing,
	}
	if err := s.compositions.Create(ctx, comp); err != nil {
		return nil, err
	}

	result, err := s.selector.Select(tracks, content.TargetDurationSeconds())
	if err != nil {
		s.fail(ctx, "composition", comp.ID, err, s.compositions.MarkFailed)
		return nil, err
	}

	paths := make([]string, 0, len(result.Tracks))
	trackIDs := make([]string, 0, len(result.Tracks))
	for _, track := range result.Tracks {
		p, err := s.store.AbsPath(track.AudioKey)
		if err != nil {
			s.fail(ctx, "composition", comp.ID, err, s.compositions.MarkFailed)
			return nil, err
		}
		paths = append(paths, p)
		trackIDs = append(trackIDs, track.ID)
	}

	audioKey := fmt.Sprintf("contents/%s/compositions/%s.mp3", contentID, comp.ID)
	outputPath, err := s.prepareOutput(audioKey)
	if err != nil {
		s.fail(ctx, "composition", comp.ID, err, s.compositions.MarkFailed)
		return nil, err
	}

	if _, err := s.concat.Concatenate(ctx, paths, outputPath); err != nil {
		s.fail(ctx, "composition", comp.ID, err, s.compositions.MarkFailed)
		return nil, err
	}

	if err := s.compositions.MarkCompleted(ctx, comp.ID, audioKey, result.TotalDurationSeconds, trackIDs); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("composition_id", comp.ID).
		Str("content_id", contentID).
		Int("tracks", result.TrackCount).
		Float64("total_seconds", result.TotalDurationSeconds).
		Msg("composition assembled")
	return s.compositions.GetByID(ctx, comp.ID)
}

// RenderVideo renders a still-image music video for a completed composition.
// The artwork path must point at an existing image file.
func (s *Service) RenderVideo(ctx context.Context, compositionID, artworkPath string) (*domain.MusicVideo, error) {
	comp, err := s.compositions.GetByID(ctx, compositionID)
	if err != nil {
		return nil, err
	}
	if comp.Status != domain.ArtifactStatusCompleted || comp.AudioKey == "" {
		return nil, domain.ErrArtifactNotReady
	}
	audioPath, err := s.store.AbsPath(comp.AudioKey)
	if err != nil {
		return nil, err
	}

	video := &domain.MusicVideo{
		CompositionID: compositionID,
		Status:        domain.ArtifactStatusProcessing,
	}
	if err := s.videos.Create(ctx, video); err != nil {
		return nil, err
	}

	videoKey := fmt.Sprintf("compositions/%s/videos/%s.mp4", compositionID, video.ID)
	outputPath, err := s.prepareOutput(videoKey)
	if err != nil {
		s.fail(ctx, "video", video.ID, err, s.videos.MarkFailed)
		return nil, err
	}

	lastReported := -1
	meta, err := s.video.Generate(ctx, audioPath, artworkPath, outputPath, func(fraction float64) {
		// Log at 10% steps to keep the output readable on long renders.
		step := int(fraction * 10)
		if step > lastReported {
			lastReported = step
			s.logger.Debug().
				Str("video_id", video.ID).
				Int("percent", step*10).
				Msg("video render progress")
		}
	})
	if err != nil {
		s.fail(ctx, "video", video.ID, err, s.videos.MarkFailed)
		return nil, err
	}

	if err := s.videos.MarkCompleted(ctx, video.ID, videoKey, meta.Resolution, meta.DurationSeconds, meta.FileSizeBytes); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("video_id", video.ID).
		Str("composition_id", compositionID).
		Msg("music video rendered")
	return s.videos.GetByID(ctx, video.ID)
}

func (s *Service) prepareOutput(key string) (string, error) {
	outputPath, err := s.store.AbsPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("assembly: create output dir: %w", err)
	}
	return outputPath, nil
}

func (s *Service) fail(ctx context.Context, kind, id string, cause error, mark func(context.Context, string, string) error) {
	if err := mark(ctx, id, cause.Error()); err != nil {
		s.logger.Error().Err(err).Str("id", id).Msgf("mark %s failed", kind)
	}
}
