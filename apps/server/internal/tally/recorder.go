package tally

import (
	"context"
	"log"
	"time"

	"dice-lite/dicegame"
)

// Recorder is the engine-facing WinTally for one session. It counts in memory
// first so the score bar label never depends on the store being healthy.
type Recorder struct {
	sessionID string
	store     Service
	mem       dicegame.Tally
}

var _ dicegame.WinTally = (*Recorder)(nil)

func NewRecorder(sessionID string, store Service) *Recorder {
	if store == nil {
		store = &noopService{}
	}
	return &Recorder{sessionID: sessionID, store: store}
}

func (r *Recorder) OnHumanWin() {
	r.mem.OnHumanWin()
	r.persist(dicegame.SideHuman)
}

func (r *Recorder) OnComputerWin() {
	r.mem.OnComputerWin()
	r.persist(dicegame.SideComputer)
}

// Label renders the session's totals as "H:x/C:y".
func (r *Recorder) Label() string { return r.mem.String() }

func (r *Recorder) Totals() (human, computer int) { return r.mem.Totals() }

func (r *Recorder) persist(side dicegame.Side) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.store.RecordWin(ctx, r.sessionID, side); err != nil {
		log.Printf("[Tally] record win failed: session=%s side=%s err=%v", r.sessionID, side, err)
	}
}
