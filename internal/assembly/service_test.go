package assembly

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"soundscape/internal/composer"
	"soundscape/internal/domain"
	"soundscape/internal/media"
)

type fakeContents struct {
	content *domain.Content
}

func (f *fakeContents) GetByID(_ context.Context, id string) (*domain.Content, error) {
	if f.content == nil || f.content.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.content, nil
}

type fakeTracks struct {
	tracks []domain.Track
}

func (f *fakeTracks) ListCompletedByContent(context.Context, string) ([]domain.Track, error) {
	return f.tracks, nil
}

type fakeCompositions struct {
	byID map[string]*domain.Composition

	completedID     string
	completedKey    string
	completedTotal  float64
	completedTracks []string
	failedID        string
	failedReason    string
}

func newFakeCompositions() *fakeCompositions {
	return &fakeCompositions{byID: map[string]*domain.Composition{}}
}

func (f *fakeCompositions) Create(_ context.Context, c *domain.Composition) error {
	if c.ID == "" {
		c.ID = "comp-1"
	}
	clone := *c
	f.byID[c.ID] = &clone
	return nil
}

func (f *fakeCompositions) MarkCompleted(_ context.Context, id, audioKey string, totalSeconds float64, trackIDs []string) error {
	f.completedID = id
	f.completedKey = audioKey
	f.completedTotal = totalSeconds
	f.completedTracks = trackIDs
	if c, ok := f.byID[id]; ok {
		c.Status = domain.ArtifactStatusCompleted
		c.AudioKey = audioKey
		c.TotalDurationSeconds = totalSeconds
		c.TrackIDs = trackIDs
	}
	return nil
}

func (f *fakeCompositions) MarkFailed(_ context.Context, id, reason string) error {
	f.failedID = id
	f.failedReason = reason
	if c, ok := f.byID[id]; ok {
		c.Status = domain.ArtifactStatusFailed
		c.ErrorMessage = reason
	}
	return nil
}

func (f *fakeCompositions) GetByID(_ context.Context, id string) (*domain.Composition, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

type fakeVideos struct {
	byID map[string]*domain.MusicVideo

	completedID  string
	completedKey string
	meta         *media.VideoMetadata
	failedID     string
	failedReason string
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{byID: map[string]*domain.MusicVideo{}}
}

func (f *fakeVideos) Create(_ context.Context, v *domain.MusicVideo) error {
	if v.ID == "" {
		v.ID = "video-1"
	}
	clone := *v
	f.byID[v.ID] = &clone
	return nil
}

func (f *fakeVideos) MarkCompleted(_ context.Context, id, videoKey string, resolution *string, durationSeconds *float64, fileSizeBytes int64) error {
	f.completedID = id
	f.completedKey = videoKey
	f.meta = &media.VideoMetadata{Resolution: resolution, DurationSeconds: durationSeconds, FileSizeBytes: fileSizeBytes}
	if v, ok := f.byID[id]; ok {
		v.Status = domain.ArtifactStatusCompleted
		v.VideoKey = videoKey
		v.Resolution = resolution
		v.DurationSeconds = durationSeconds
		v.FileSizeBytes = fileSizeBytes
	}
	return nil
}

func (f *fakeVideos) MarkFailed(_ context.Context, id, reason string) error {
	f.failedID = id
	f.failedReason = reason
	return nil
}

func (f *fakeVideos) GetByID(_ context.Context, id string) (*domain.MusicVideo, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

type fakeStore struct {
	base string
}

func (f *fakeStore) AbsPath(key string) (string, error) {
	return filepath.Join(f.base, filepath.FromSlash(key)), nil
}

type fakeConcat struct {
	paths  []string
	output string
	err    error
}

func (f *fakeConcat) Concatenate(_ context.Context, audioPaths []string, outputPath string) (string, error) {
	f.paths = audioPaths
	f.output = outputPath
	if f.err != nil {
		return "", f.err
	}
	return outputPath, nil
}

type fakeVideoGen struct {
	audio   string
	artwork string
	output  string
	meta    *media.VideoMetadata
	err     error
}

func (f *fakeVideoGen) Generate(_ context.Context, audioPath, artworkPath, outputPath string, onProgress media.ProgressFunc) (*media.VideoMetadata, error) {
	f.audio = audioPath
	f.artwork = artworkPath
	f.output = outputPath
	if onProgress != nil {
		onProgress(0.4)
		onProgress(1)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.meta, nil
}

func completedTrack(id string, seconds float64) domain.Track {
	d := seconds
	return domain.Track{
		ID:              id,
		ContentID:       "content-1",
		Status:          domain.TrackStatusCompleted,
		AudioKey:        "contents/content-1/tracks/" + id + ".mp3",
		DurationSeconds: &d,
	}
}

func TestComposeAudioHappyPath(t *testing.T) {
	compositions := newFakeCompositions()
	concat := &fakeConcat{}
	svc := NewService(Options{
		Contents: &fakeContents{content: &domain.Content{
			ID:                    "content-1",
			GenerationPrompt:      "gentle piano with rain",
			TargetDurationMinutes: 10,
		}},
		Tracks: &fakeTracks{tracks: []domain.Track{
			completedTrack("t1", 200),
			completedTrack("t2", 200),
			completedTrack("t3", 200),
			completedTrack("t4", 200),
		}},
		Compositions: compositions,
		Videos:       newFakeVideos(),
		Store:        &fakeStore{base: t.TempDir()},
		Selector:     composer.NewSelector(rand.New(rand.NewSource(1))),
		Concatenator: concat,
		Logger:       zerolog.Nop(),
	})

	comp, err := svc.ComposeAudio(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("ComposeAudio: %v", err)
	}
	if comp.Status != domain.ArtifactStatusCompleted {
		t.Fatalf("status = %q, want completed", comp.Status)
	}
	if comp.TotalDurationSeconds < 600 {
		t.Fatalf("total = %v, want >= 600", comp.TotalDurationSeconds)
	}
	if len(concat.paths) != len(comp.TrackIDs) {
		t.Fatalf("concatenated %d paths for %d tracks", len(concat.paths), len(comp.TrackIDs))
	}
	if compositions.completedKey == "" {
		t.Fatal("audio key was not persisted")
	}
	if comp.Title == "" {
		t.Fatal("composition title was not derived from the prompt")
	}
}

func TestComposeAudioInsufficientTracks(t *testing.T) {
	compositions := newFakeCompositions()
	concat := &fakeConcat{}
	svc := NewService(Options{
		Contents: &fakeContents{content: &domain.Content{
			ID:                    "content-1",
			GenerationPrompt:      "gentle piano",
			TargetDurationMinutes: 60,
		}},
		Tracks:       &fakeTracks{tracks: []domain.Track{completedTrack("t1", 180)}},
		Compositions: compositions,
		Videos:       newFakeVideos(),
		Store:        &fakeStore{base: t.TempDir()},
		Concatenator: concat,
		Logger:       zerolog.Nop(),
	})

	_, err := svc.ComposeAudio(context.Background(), "content-1")
	var insufficient *composer.InsufficientTracksError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientTracksError", err)
	}
	if concat.paths != nil {
		t.Fatal("concatenation ran despite selection failure")
	}
	if compositions.failedID == "" {
		t.Fatal("failed composition was not recorded")
	}
}

func TestComposeAudioConcatFailureMarksFailed(t *testing.T) {
	compositions := newFakeCompositions()
	svc := NewService(Options{
		Contents: &fakeContents{content: &domain.Content{
			ID:                    "content-1",
			GenerationPrompt:      "gentle piano",
			TargetDurationMinutes: 5,
		}},
		Tracks:       &fakeTracks{tracks: []domain.Track{completedTrack("t1", 400)}},
		Compositions: compositions,
		Videos:       newFakeVideos(),
		Store:        &fakeStore{base: t.TempDir()},
		Concatenator: &fakeConcat{err: errors.New("ffmpeg exited with status 1")},
		Logger:       zerolog.Nop(),
	})

	_, err := svc.ComposeAudio(context.Background(), "content-1")
	if err == nil {
		t.Fatal("expected concatenation error")
	}
	if compositions.failedID == "" || compositions.failedReason == "" {
		t.Fatal("failure was not recorded on the composition")
	}
}

func TestRenderVideoHappyPath(t *testing.T) {
	compositions := newFakeCompositions()
	comp := &domain.Composition{
		ID:        "comp-1",
		ContentID: "content-1",
		Status:    domain.ArtifactStatusCompleted,
		AudioKey:  "contents/content-1/compositions/comp-1.mp3",
	}
	_ = compositions.Create(context.Background(), comp)

	videos := newFakeVideos()
	res := "1920x1080"
	dur := 601.5
	gen := &fakeVideoGen{meta: &media.VideoMetadata{Resolution: &res, DurationSeconds: &dur, FileSizeBytes: 1024}}
	svc := NewService(Options{
		Compositions: compositions,
		Videos:       videos,
		Store:        &fakeStore{base: t.TempDir()},
		Video:        gen,
		Logger:       zerolog.Nop(),
	})

	video, err := svc.RenderVideo(context.Background(), "comp-1", "/art/cover.png")
	if err != nil {
		t.Fatalf("RenderVideo: %v", err)
	}
	if video.Status != domain.ArtifactStatusCompleted {
		t.Fatalf("status = %q, want completed", video.Status)
	}
	if video.Resolution == nil || *video.Resolution != "1920x1080" {
		t.Fatalf("resolution = %v, want 1920x1080", video.Resolution)
	}
	if gen.artwork != "/art/cover.png" {
		t.Fatalf("artwork path = %q", gen.artwork)
	}
	if videos.completedKey == "" {
		t.Fatal("video key was not persisted")
	}
}

func TestRenderVideoRequiresCompletedComposition(t *testing.T) {
	compositions := newFakeCompositions()
	_ = compositions.Create(context.Background(), &domain.Composition{
		ID:        "comp-1",
		ContentID: "content-1",
		Status:    domain.ArtifactStatusProcessing,
	})
	svc := NewService(Options{
		Compositions: compositions,
		Videos:       newFakeVideos(),
		Store:        &fakeStore{base: t.TempDir()},
		Video:        &fakeVideoGen{},
		Logger:       zerolog.Nop(),
	})

	_, err := svc.RenderVideo(context.Background(), "comp-1", "/art/cover.png")
	if !errors.Is(err, domain.ErrArtifactNotReady) {
		t.Fatalf("err = %v, want ErrArtifactNotReady", err)
	}
}

func TestRenderVideoFailureMarksFailed(t *testing.T) {
	compositions := newFakeCompositions()
	_ = compositions.Create(context.Background(), &domain.Composition{
		ID:       "comp-1",
		Status:   domain.ArtifactStatusCompleted,
		AudioKey: "contents/content-1/compositions/comp-1.mp3",
	})
	videos := newFakeVideos()
	svc := NewService(Options{
		Compositions: compositions,
		Videos:       videos,
		Store:        &fakeStore{base: t.TempDir()},
		Video:        &fakeVideoGen{err: errors.New("render failed")},
		Logger:       zerolog.Nop(),
	})

	_, err := svc.RenderVideo(context.Background(), "comp-1", "/art/cover.png")
	if err == nil {
		t.Fatal("expected render error")
	}
	if videos.failedID == "" {
		t.Fatal("failure was not recorded on the video")
	}
}
