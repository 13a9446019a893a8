package dicegame

import "dice-lite/die"

// PlayerSnapshot is one side's view. Dice are all zero before the first roll
// of a match.
type PlayerSnapshot struct {
	Side           Side
	Score          int
	TieBreakScore  int
	Dice           die.Set
	Hold           die.HoldMask
	RollsRemaining int
	FirstRoll      bool
}

type Snapshot struct {
	Match       int
	Turn        int
	TargetScore int
	Outcome     Outcome

	TieBreak      bool
	TieBreakRound int

	Human    PlayerSnapshot
	Computer PlayerSnapshot

	LastTurn *TurnResult
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		Match:         g.match,
		Turn:          g.turn,
		TargetScore:   g.target,
		Outcome:       g.outcome,
		TieBreak:      g.tieBreak,
		TieBreakRound: g.tieBreakRound,
		Human: PlayerSnapshot{
			Side:           SideHuman,
			Score:          g.humanScore,
			TieBreakScore:  g.tieBreakHumanScore,
			Dice:           g.human.Dice,
			Hold:           g.human.Hold,
			RollsRemaining: g.human.RollsRemaining,
			FirstRoll:      g.human.FirstRoll,
		},
		Computer: PlayerSnapshot{
			Side:           SideComputer,
			Score:          g.computerScore,
			TieBreakScore:  g.tieBreakComputerScore,
			Dice:           g.computer.Dice,
			Hold:           g.computer.Hold,
			RollsRemaining: g.computer.RollsRemaining,
			FirstRoll:      g.computer.FirstRoll,
		},
	}
	if g.lastTurn != nil {
		lt := *g.lastTurn
		s.LastTurn = &lt
	}
	return s
}
