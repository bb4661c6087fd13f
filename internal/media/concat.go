package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"soundscape/internal/infra"
)

var (
	// ErrNoTracks is returned when concatenation is requested with an
	// empty input list.
	ErrNoTracks = errors.New("media: no tracks to concatenate")
)

// MissingAudioError identifies an input without a usable audio file,
// detected before any external process is spawned.
type MissingAudioError struct {
	Index int
	Path  string
}

func (e *MissingAudioError) Error() string {
	return fmt.Sprintf("media: input %d has no audio file (%q)", e.Index, e.Path)
}

// ConcatenationError surfaces a failed external concatenation command.
type ConcatenationError struct {
	Err error
}

func (e *ConcatenationError) Error() string {
	return fmt.Sprintf("media: concatenation failed: %v", e.Err)
}

func (e *ConcatenationError) Unwrap() error {
	return e.Err
}

// Concatenator joins audio files into one artifact using ffmpeg's concat
// demuxer with stream copy.
type Concatenator struct {
	runner     CommandRunner
	ffmpegPath string
	logger     *infra.Logger
}

func NewConcatenator(runner CommandRunner, ffmpegPath string, logger *infra.Logger) *Concatenator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Concatenator{runner: runner, ffmpegPath: ffmpegPath, logger: logger}
}

// Concatenate joins the given audio files, in order, into outputPath. The
// temporary playlist file is removed on every exit path. A failed external
// command surfaces as *ConcatenationError.
func (c *Concatenator) Concatenate(ctx context.Context, audioPaths []string, outputPath string) (string, error) {
	if len(audioPaths) == 0 {
		return "", ErrNoTracks
	}
	for i, p := range audioPaths {
		if strings.TrimSpace(p) == "" {
			return "", &MissingAudioError{Index: i, Path: p}
		}
		if _, err := os.Stat(p); err != nil {
			return "", &MissingAudioError{Index: i, Path: p}
		}
	}

	playlist, err := writePlaylist(audioPaths)
	if err != nil {
		return "", fmt.Errorf("media: write playlist: %w", err)
	}
	defer os.Remove(playlist)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("media: ensure output directory: %w", err)
	}

	_, err = c.runner.Run(ctx, c.ffmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", playlist,
		"-c", "copy",
		outputPath,
	)
	if err != nil {
		return "", &ConcatenationError{Err: err}
	}

	c.logger.Info().Int("tracks", len(audioPaths)).Str("output", outputPath).Msg("media: concatenated audio")
	return outputPath, nil
}

// writePlaylist emits a concat-demuxer list file, one entry per line. Paths
// are escaped so a quote inside a filename cannot break out of the entry.
func writePlaylist(paths []string) (string, error) {
	f, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "file '%s'\n", escapePlaylistPath(p))
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func escapePlaylistPath(p string) string {
	return strings.ReplaceAll(p, "'", `'\''`)
}
