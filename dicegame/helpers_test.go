package dicegame

import (
	"testing"

	"dice-lite/dicegame/npc"
	"dice-lite/die"
)

// scriptedSource hands out queued values, then falls back to fixed ones.
type scriptedSource struct {
	faces  []die.Face
	floats []float64
	bools  []bool

	fallbackFace  die.Face
	fallbackFloat float64
}

func newScripted(fallback die.Face) *scriptedSource {
	// 0.99 makes the rule brain stop on every decision unless scripted otherwise.
	return &scriptedSource{fallbackFace: fallback, fallbackFloat: 0.99}
}

func (s *scriptedSource) Face() die.Face {
	if len(s.faces) == 0 {
		return s.fallbackFace
	}
	f := s.faces[0]
	s.faces = s.faces[1:]
	return f
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return s.fallbackFloat
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) Bool() bool {
	if len(s.bools) == 0 {
		return false
	}
	v := s.bools[0]
	s.bools = s.bools[1:]
	return v
}

func (s *scriptedSource) queueSet(faces ...die.Face) {
	s.faces = append(s.faces, faces...)
}

// countingBrain wraps a brain and counts Decide calls.
type countingBrain struct {
	inner npc.BrainDecider
	calls int
}

func (b *countingBrain) Name() string { return "counting" }

func (b *countingBrain) Decide(view npc.TurnView) npc.Decision {
	b.calls++
	return b.inner.Decide(view)
}

func newTestGame(t *testing.T, cfg Config) *Game {
	t.Helper()
	if cfg.TargetScore == 0 {
		cfg.TargetScore = DefaultTargetScore
	}
	g, err := NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

func sixes() []die.Face { return []die.Face{6, 6, 6, 6, 6} }
func ones() []die.Face  { return []die.Face{1, 1, 1, 1, 1} }
