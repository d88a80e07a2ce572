// Package sampling spreads a fixed number of samples evenly over a frame
// sequence using fractional accumulation.
package sampling

import (
	"fmt"
	"iter"
	"math"

	"github.com/qwp-look/frame-extractor/internal/domain/entity"
)

// Plan maps output slots onto source frame indices. The zero value is an
// empty plan.
type Plan struct {
	total int
	count int
}

// ValidateSampleCount rejects counts that are neither positive nor
// entity.ExtractAll.
func ValidateSampleCount(sampleCount int) error {
	if sampleCount <= 0 && sampleCount != entity.ExtractAll {
		return fmt.Errorf("%w: got %d", entity.ErrInvalidSampleCount, sampleCount)
	}
	return nil
}

// NewPlan builds a plan for a stream of totalFrames frames. A sampleCount of
// entity.ExtractAll selects every frame; counts above totalFrames are capped.
func NewPlan(totalFrames, sampleCount int) (Plan, error) {
	if err := ValidateSampleCount(sampleCount); err != nil {
		return Plan{}, err
	}
	if totalFrames <= 0 {
		return Plan{}, fmt.Errorf("%w: frame count %d", entity.ErrEmptyVideo, totalFrames)
	}
	if sampleCount == entity.ExtractAll || sampleCount > totalFrames {
		sampleCount = totalFrames
	}
	return Plan{total: totalFrames, count: sampleCount}, nil
}

// Len is the number of output frames.
func (p Plan) Len() int { return p.count }

// TotalFrames is the source frame count the plan was built for.
func (p Plan) TotalFrames() int { return p.total }

// All yields (output index, source index) pairs in order. Source indices
// start at 0, never decrease and never exceed TotalFrames()-1.
func (p Plan) All() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if p.count == 0 {
			return
		}
		step := float64(p.total) / float64(p.count)
		last := p.total - 1
		acc := 0.0
		next := 0
		for i := 0; i < p.count; i++ {
			if !yield(i, next) {
				return
			}
			acc += step
			next = int(math.Ceil(acc))
			// float drift near the end of the stream can overshoot the last frame
			if acc+step > float64(last) {
				next = last
			}
		}
	}
}

// Indices collects the source indices of All.
func (p Plan) Indices() []int {
	out := make([]int, 0, p.count)
	for _, src := range p.All() {
		out = append(out, src)
	}
	return out
}
