// Package scoring implements the weighted-decay relevance formula used to
// rank memories at retrieval time:
//
//	score = w_r*similarity + w_t*recency_decay + w_a*access_frequency
//
// All functions are pure; callers supply the clock.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/rcliao/hippo/internal/model"
)

// Weights holds the tunable parameters of the scoring formula. The weights
// are not required to sum to 1; any non-negative combination is accepted.
type Weights struct {
	Relevance    float64 `yaml:"relevance" json:"relevance"`
	Recency      float64 `yaml:"recency" json:"recency"`
	Access       float64 `yaml:"access" json:"access"`
	HalfLifeDays float64 `yaml:"half_life_days" json:"half_life_days"`
}

// DefaultWeights returns the standard scoring configuration.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.6, Recency: 0.3, Access: 0.1, HalfLifeDays: 14}
}

// accessSaturation is the access count at which AccessScore reaches 1.0.
const accessSaturation = 50

// RecencyDecay returns exp(-ln2 * ageDays / halfLifeDays): 1.0 for a
// brand-new record, 0.5 at exactly one half-life. Age is clamped at zero so
// future timestamps score as new rather than above 1.
//
// halfLifeDays must be strictly positive; zero or negative values are a
// contract violation, not a guarded case.
func RecencyDecay(createdAt time.Time, halfLifeDays float64, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-math.Ln2 * ageDays / halfLifeDays)
}

// AccessScore returns a log-scaled access frequency in [0,1], saturating
// around 50 accesses. Zero or negative counts score exactly 0.
func AccessScore(count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(float64(count))/math.Log1p(accessSaturation))
}

// CompositeScore blends similarity, recency and access frequency. The
// similarity input is clamped into [0,1] before weighting, but the result
// is deliberately not clamped: weights summing above 1 push the score
// above 1, and that headroom is left to the caller.
func CompositeScore(cosineSim float64, createdAt time.Time, accessCount int, now time.Time, w Weights) float64 {
	r := math.Max(0, math.Min(1, cosineSim))
	t := RecencyDecay(createdAt, w.HalfLifeDays, now)
	a := AccessScore(accessCount)
	return w.Relevance*r + w.Recency*t + w.Access*a
}

// Scored pairs a memory with its composite score.
type Scored struct {
	Memory model.Memory `json:"memory"`
	Score  float64      `json:"score"`
}

// Rank scores each memory with the similarity supplied by simFn and returns
// the records ordered by descending score. simFn is typically backed by an
// external embedding service; this package never computes similarity itself.
func Rank(memories []model.Memory, simFn func(m model.Memory) float64, w Weights, now time.Time) []Scored {
	scored := make([]Scored, 0, len(memories))
	for _, m := range memories {
		scored = append(scored, Scored{
			Memory: m,
			Score:  CompositeScore(simFn(m), m.CreatedAt, m.AccessCount, now, w),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
