package die

import (
	"fmt"
	"strconv"
	"strings"
)

// Face 骰子点数 1..6
type Face byte

const (
	FaceInvalid Face = 0
	FaceOne     Face = 1
	FaceTwo     Face = 2
	FaceThree   Face = 3
	FaceFour    Face = 4
	FaceFive    Face = 5
	FaceSix     Face = 6
)

// Sides is the number of faces on every die in the game.
const Sides = 6

func (f Face) Valid() bool { return f >= FaceOne && f <= FaceSix }

func (f Face) String() string {
	if !f.Valid() {
		return "Invalid"
	}
	return strconv.Itoa(int(f))
}

// ParseFace converts "1".."6" into a Face.
func ParseFace(s string) (Face, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return FaceInvalid, fmt.Errorf("invalid die face %q", s)
	}
	if n < 1 || n > Sides {
		return FaceInvalid, fmt.Errorf("die face %d out of range [1,%d]", n, Sides)
	}
	return Face(n), nil
}

// MustFace panics when n is not a legal face.
func MustFace(n int) Face {
	if n < 1 || n > Sides {
		panic(fmt.Sprintf("die: face %d out of range [1,%d]", n, Sides))
	}
	return Face(n)
}
