// Package planning holds the pure sizing arithmetic that translates a target
// duration into generation request and track counts. Two independently
// evolved formulas exist for what is conceptually the same quantity; they
// gate different call paths and are deliberately not unified (see DESIGN.md).
package planning

import "math"

// Plan carries the provisioning constants for request sizing.
type Plan struct {
	MinutesPerTrack  int
	TracksPerRequest int
	BufferRequests   int
}

// DefaultPlan matches the repository defaults: each request yields two
// tracks of roughly three minutes, with five extra requests of headroom.
var DefaultPlan = Plan{
	MinutesPerTrack:  3,
	TracksPerRequest: 2,
	BufferRequests:   5,
}

// RequiredRequestCount returns how many generation requests are needed to
// cover durationMinutes, always rounding up. Returns 0 only for a
// non-positive duration; otherwise the result is at least 1.
func (p Plan) RequiredRequestCount(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	minutesPerRequest := p.MinutesPerTrack * p.TracksPerRequest
	n := int(math.Ceil(float64(durationMinutes)/float64(minutesPerRequest) + float64(p.BufferRequests)))
	if n < 1 {
		n = 1
	}
	return n
}

// RequiredTrackCount is the second call path's formula: how many completed
// tracks a content should have before composition is considered ready.
// Its constants are literal and independent of Plan. Returns a floor of 5
// when the duration is unset or non-positive.
func RequiredTrackCount(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 5
	}
	return int(math.Ceil(float64(durationMinutes)/(3*2) + 5))
}
