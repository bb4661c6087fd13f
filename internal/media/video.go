package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"soundscape/internal/infra"
)

var supportedAudioExts = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".aac": true, ".flac": true, ".ogg": true,
}

var supportedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// GenerationError reports a failed video generation: bad inputs, a failed
// transcode or an empty output.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media: video generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("media: video generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// VideoMetadata describes the finished artifact. Resolution and
// DurationSeconds are nil when probing the output failed; generation still
// succeeded in that case.
type VideoMetadata struct {
	DurationSeconds *float64
	Resolution      *string
	FileSizeBytes   int64
}

// ProgressFunc receives the transcode completion fraction in [0, 1],
// monotonically non-decreasing, on the calling goroutine.
type ProgressFunc func(fraction float64)

// VideoAssembler renders a static artwork image looped over an audio track
// into an H.264/AAC video at a fixed 1920x1080 profile.
type VideoAssembler struct {
	runner      CommandRunner
	prober      *Prober
	ffmpegPath  string
	ffprobePath string
	logger      *infra.Logger
}

func NewVideoAssembler(runner CommandRunner, prober *Prober, ffmpegPath, ffprobePath string, logger *infra.Logger) *VideoAssembler {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &VideoAssembler{
		runner:      runner,
		prober:      prober,
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// Generate muxes audioPath and artworkPath into outputPath, reporting
// progress through onProgress when supplied. The output is verified to exist
// and be non-empty before metadata is probed.
func (v *VideoAssembler) Generate(ctx context.Context, audioPath, artworkPath, outputPath string, onProgress ProgressFunc) (*VideoMetadata, error) {
	if err := validateInput(audioPath, supportedAudioExts, "audio"); err != nil {
		return nil, err
	}
	if err := validateInput(artworkPath, supportedImageExts, "artwork"); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, &GenerationError{Reason: "ensure output directory", Err: err}
	}

	// Total duration drives the progress fraction; the probe fallback is
	// acceptable here since progress is advisory.
	totalSeconds := v.prober.Duration(ctx, audioPath)

	progress := newProgressParser(totalSeconds, onProgress)
	err := v.runner.RunProgress(ctx, progress.consume, v.ffmpegPath,
		"-y",
		"-loop", "1",
		"-i", artworkPath,
		"-i", audioPath,
		"-c:v", "libx264",
		"-tune", "stillimage",
		"-preset", "medium",
		"-vf", "scale=1920:1080:force_original_aspect_ratio=decrease,pad=1920:1080:(ow-iw)/2:(oh-ih)/2",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-r", "30",
		"-shortest",
		"-nostats",
		"-progress", "pipe:1",
		outputPath,
	)
	if err != nil {
		return nil, &GenerationError{Reason: "transcode", Err: err}
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, &GenerationError{Reason: "output missing", Err: err}
	}
	if info.Size() == 0 {
		return nil, &GenerationError{Reason: "output is empty"}
	}

	meta := v.probeOutput(ctx, outputPath)
	meta.FileSizeBytes = info.Size()
	v.logger.Info().Str("output", outputPath).Int64("bytes", meta.FileSizeBytes).Msg("media: generated video")
	return meta, nil
}

func validateInput(path string, allowed map[string]bool, kind string) error {
	if _, err := os.Stat(path); err != nil {
		return &GenerationError{Reason: fmt.Sprintf("%s file %q not found", kind, path), Err: err}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !allowed[ext] {
		return &GenerationError{Reason: fmt.Sprintf("unsupported %s format %q", kind, ext)}
	}
	return nil
}

// probeOutput extracts duration and resolution from the finished file. A
// probe failure degrades to nil fields rather than failing the generation.
func (v *VideoAssembler) probeOutput(ctx context.Context, path string) *VideoMetadata {
	meta := &VideoMetadata{}
	out, err := v.runner.Run(ctx, v.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		v.logger.Warn().Err(err).Str("path", path).Msg("media: output probe failed, returning partial metadata")
		return meta
	}

	var probed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &probed); err != nil {
		v.logger.Warn().Err(err).Str("path", path).Msg("media: unparsable probe output, returning partial metadata")
		return meta
	}

	if seconds, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil && seconds > 0 {
		meta.DurationSeconds = &seconds
	}
	for _, s := range probed.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			res := fmt.Sprintf("%dx%d", s.Width, s.Height)
			meta.Resolution = &res
			break
		}
	}
	return meta
}

// progressParser turns ffmpeg -progress key=value lines into a monotonically
// non-decreasing completion fraction.
type progressParser struct {
	totalSeconds float64
	last         float64
	onProgress   ProgressFunc
}

func newProgressParser(totalSeconds float64, onProgress ProgressFunc) *progressParser {
	return &progressParser{totalSeconds: totalSeconds, onProgress: onProgress}
}

func (p *progressParser) consume(line string) {
	if p.onProgress == nil || p.totalSeconds <= 0 {
		return
	}
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}
	var elapsed float64
	switch key {
	case "out_time_us", "out_time_ms":
		// Both keys carry microseconds; out_time_ms predates out_time_us
		// and kept its historical unit.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return
		}
		elapsed = float64(us) / 1e6
	case "progress":
		if value == "end" {
			p.report(1)
		}
		return
	default:
		return
	}
	p.report(elapsed / p.totalSeconds)
}

func (p *progressParser) report(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	if fraction < p.last {
		return
	}
	p.last = fraction
	p.onProgress(fraction)
}
