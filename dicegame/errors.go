package dicegame

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrIllegalAction        = errors.New("illegal action")

	ErrMatchEnded       = fmt.Errorf("%w: match already ended", ErrIllegalAction)
	ErrNoRollsRemaining = fmt.Errorf("%w: no rolls remaining", ErrIllegalAction)
	ErrNoRollYet        = fmt.Errorf("%w: nothing rolled this turn", ErrIllegalAction)
	ErrTieBreakPending  = fmt.Errorf("%w: tie-break is settled by throwing", ErrIllegalAction)
)

// InvalidStateError marks a broken engine invariant. It is only ever panicked.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
