package die

import (
	"math/rand"
	"time"
)

// Source is the randomness every roll and every computer decision draws from.
// Tests inject scripted implementations; production uses NewSource.
type Source interface {
	// Face returns a uniform face in [1,6].
	Face() Face
	// Float64 returns a uniform value in [0,1).
	Float64() float64
	// Bool returns a fair coin flip.
	Bool() bool
}

type rngSource struct {
	rng *rand.Rand
}

// NewSource returns a math/rand backed Source. seed 0 => time-based.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &rngSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *rngSource) Face() Face       { return Face(s.rng.Intn(Sides) + 1) }
func (s *rngSource) Float64() float64 { return s.rng.Float64() }
func (s *rngSource) Bool() bool       { return s.rng.Intn(2) == 1 }
