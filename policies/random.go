package policies

import (
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// NewSource returns a seeded source, a zero seed picks a time based one
func NewSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

// sampler draws from a single seeded source so that a run is reproducible
type sampler struct {
	src  rand.Source
	rand *rand.Rand
}

func newSampler(src rand.Source) *sampler {
	if src == nil {
		src = NewSource(0)
	}
	return &sampler{
		src:  src,
		rand: rand.New(src),
	}
}

func (s *sampler) Float64() float64 {
	return s.rand.Float64()
}

// Uniform picks an index in [0, n) with equal weights
func (s *sampler) Uniform(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1
	}
	return sampleuv.NewWeighted(weights, s.src).Take()
}
