package dicegame

import (
	"fmt"
	"sync"
)

// WinTally is told exactly once per finished match who won. It owns the
// session's win totals; the engine never reads them back.
type WinTally interface {
	OnHumanWin()
	OnComputerWin()
}

type noopTally struct{}

func (noopTally) OnHumanWin()    {}
func (noopTally) OnComputerWin() {}

// Tally is an in-memory WinTally.
type Tally struct {
	mu       sync.Mutex
	human    int
	computer int
}

func (t *Tally) OnHumanWin() {
	t.mu.Lock()
	t.human++
	t.mu.Unlock()
}

func (t *Tally) OnComputerWin() {
	t.mu.Lock()
	t.computer++
	t.mu.Unlock()
}

// Totals returns human and computer wins.
func (t *Tally) Totals() (human, computer int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.human, t.computer
}

// String renders "H:x/C:y".
func (t *Tally) String() string {
	h, c := t.Totals()
	return Label(h, c)
}

// Label formats win totals the way the score bar shows them.
func Label(human, computer int) string {
	return fmt.Sprintf("H:%d/C:%d", human, computer)
}
