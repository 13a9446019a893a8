package die

import (
	"fmt"
	"strings"
)

// Count is the number of dice each player throws.
const Count = 5

// Set is one player's five dice, replaced wholesale on every roll.
type Set [Count]Face

// HoldMask marks which positions of a Set survive the next reroll.
type HoldMask [Count]bool

// NoHold is the all-false mask every turn starts with.
var NoHold HoldMask

// Sum is the score value of the set.
func (s Set) Sum() int {
	total := 0
	for _, f := range s {
		total += int(f)
	}
	return total
}

// Valid reports whether every die shows a face in [1,6].
func (s Set) Valid() bool {
	for _, f := range s {
		if !f.Valid() {
			return false
		}
	}
	return true
}

// MustValid panics when the set holds an out-of-range face. A bad face can
// only come from an engine bug, never from input.
func (s Set) MustValid() Set {
	for i, f := range s {
		if !f.Valid() {
			panic(fmt.Sprintf("die: invalid face %d at position %d", f, i))
		}
	}
	return s
}

// Ints returns the faces as plain ints, mostly for encoders.
func (s Set) Ints() []int {
	out := make([]int, Count)
	for i, f := range s {
		out[i] = int(f)
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, Count)
	for i, f := range s {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// SetFromInts builds a Set from exactly Count faces.
func SetFromInts(faces []int) (Set, error) {
	var s Set
	if len(faces) != Count {
		return s, fmt.Errorf("need %d dice, got %d", Count, len(faces))
	}
	for i, n := range faces {
		if n < 1 || n > Sides {
			return Set{}, fmt.Errorf("die %d: face %d out of range [1,%d]", i, n, Sides)
		}
		s[i] = Face(n)
	}
	return s, nil
}

// ParseSet parses "3,4,4,6,1" (spaces allowed).
func ParseSet(raw string) (Set, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != Count {
		return Set{}, fmt.Errorf("need %d dice, got %d in %q", Count, len(fields), raw)
	}
	var s Set
	for i, field := range fields {
		f, err := ParseFace(field)
		if err != nil {
			return Set{}, fmt.Errorf("die %d: %w", i, err)
		}
		s[i] = f
	}
	return s, nil
}

// Roll returns five fresh dice.
func Roll(src Source) Set {
	var s Set
	for i := range s {
		s[i] = src.Face()
	}
	return s.MustValid()
}

// Reroll regenerates every unheld position and keeps the held ones.
func (s Set) Reroll(src Source, hold HoldMask) Set {
	out := s
	for i := range out {
		if hold[i] {
			continue
		}
		out[i] = src.Face()
	}
	return out.MustValid()
}

// Held counts the held positions.
func (m HoldMask) Held() int {
	n := 0
	for _, h := range m {
		if h {
			n++
		}
	}
	return n
}

// Indexes lists held positions in ascending order.
func (m HoldMask) Indexes() []int {
	out := make([]int, 0, Count)
	for i, h := range m {
		if h {
			out = append(out, i)
		}
	}
	return out
}

// MaskFromBools converts a wire-level slice; the length must be Count.
func MaskFromBools(b []bool) (HoldMask, error) {
	var m HoldMask
	if len(b) != Count {
		return m, fmt.Errorf("hold mask needs %d entries, got %d", Count, len(b))
	}
	copy(m[:], b)
	return m, nil
}

// MaskFromIndexes marks the given positions as held. Duplicates are rejected.
func MaskFromIndexes(idx []int) (HoldMask, error) {
	var m HoldMask
	for _, i := range idx {
		if i < 0 || i >= Count {
			return NoHold, fmt.Errorf("hold index %d out of range [0,%d)", i, Count)
		}
		if m[i] {
			return NoHold, fmt.Errorf("duplicate hold index %d", i)
		}
		m[i] = true
	}
	return m, nil
}
