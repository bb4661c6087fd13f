// Package media invokes external transcoding binaries to measure, join and
// render audio and video artifacts.
package media

import (
	"context"
	"strconv"
	"strings"
	"time"

	"soundscape/internal/infra"
)

const (
	probeTimeout = 5 * time.Second

	// FallbackDurationSeconds is assumed for a track whose audio could not
	// be probed. A wrong-but-plausible duration keeps composition working;
	// a propagated probe error would not.
	FallbackDurationSeconds = 180.0
)

// Prober measures audio durations with ffprobe.
type Prober struct {
	runner      CommandRunner
	ffprobePath string
	logger      *infra.Logger
}

func NewProber(runner CommandRunner, ffprobePath string, logger *infra.Logger) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{runner: runner, ffprobePath: ffprobePath, logger: logger}
}

// Duration reads the container duration in seconds. Any failure, including a
// hang converted to an error by the probe timeout, yields the fallback
// duration rather than propagating.
func (p *Prober) Duration(ctx context.Context, path string) float64 {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("media: duration probe failed, using fallback")
		return FallbackDurationSeconds
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || seconds <= 0 {
		p.logger.Warn().Str("path", path).Str("output", strings.TrimSpace(string(out))).Msg("media: unparsable probe output, using fallback")
		return FallbackDurationSeconds
	}
	return seconds
}
