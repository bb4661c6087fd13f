// Package composer picks a duration-satisfying subset of completed tracks.
//
// A minimal-overshoot subset-sum is NP-hard in general; random greedy
// accumulation is a cheap approximation that works well when tracks are
// numerous and roughly uniform in length. The result may exceed the target.
package composer

import (
	"fmt"
	"math/rand"
	"time"

	"soundscape/internal/domain"
)

// InsufficientTracksError reports that the pool cannot satisfy the target
// duration; no partial result is ever returned.
type InsufficientTracksError struct {
	TargetSeconds    float64
	AvailableSeconds float64
	PoolSize         int
}

func (e *InsufficientTracksError) Error() string {
	return fmt.Sprintf("composer: %d tracks totalling %.1fs cannot satisfy target %.1fs",
		e.PoolSize, e.AvailableSeconds, e.TargetSeconds)
}

// Result is the ephemeral outcome of one selection. It is recomputed on each
// composition request and never cached.
type Result struct {
	Tracks               []domain.Track
	TotalDurationSeconds float64
	TrackCount           int
}

// Selector shuffles and accumulates tracks. The RNG is injectable so tests
// can fix the seed.
type Selector struct {
	rng *rand.Rand
}

// NewSelector returns a selector; a nil rng yields a time-seeded one.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Select picks a subset of the pool whose combined duration reaches
// targetSeconds. Only completed tracks with a known duration participate.
// Selection never repeats a track and stops as soon as the target is met.
func (s *Selector) Select(pool []domain.Track, targetSeconds float64) (*Result, error) {
	eligible := make([]domain.Track, 0, len(pool))
	var available float64
	for _, t := range pool {
		if !t.Selectable() {
			continue
		}
		eligible = append(eligible, t)
		available += t.Duration()
	}

	if len(eligible) == 0 {
		return nil, &InsufficientTracksError{TargetSeconds: targetSeconds, PoolSize: 0}
	}
	if available < targetSeconds {
		return nil, &InsufficientTracksError{
			TargetSeconds:    targetSeconds,
			AvailableSeconds: available,
			PoolSize:         len(eligible),
		}
	}

	shuffled := make([]domain.Track, len(eligible))
	copy(shuffled, eligible)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var selected []domain.Track
	var total float64
	for _, t := range shuffled {
		selected = append(selected, t)
		total += t.Duration()
		if total >= targetSeconds {
			break
		}
	}

	// The feasibility check above should make this unreachable, but the
	// invariant is cheap to re-assert.
	if total < targetSeconds {
		return nil, &InsufficientTracksError{
			TargetSeconds:    targetSeconds,
			AvailableSeconds: total,
			PoolSize:         len(eligible),
		}
	}

	return &Result{
		Tracks:               selected,
		TotalDurationSeconds: total,
		TrackCount:           len(selected),
	}, nil
}
