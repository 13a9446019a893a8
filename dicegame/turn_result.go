package dicegame

import "dice-lite/die"

// TurnResult describes a completed turn or tie-break round.
type TurnResult struct {
	Turn          int
	TieBreak      bool
	TieBreakRound int

	HumanDice    die.Set
	ComputerDice die.Set
	// Sums of the final dice. For a tie-break round these are the tie-break scores.
	HumanSum    int
	ComputerSum int

	// Cumulative scores after the turn.
	HumanScore    int
	ComputerScore int

	EnteredTieBreak bool
	Outcome         Outcome
}

// Winner returns the winning side when the turn ended the match.
func (r *TurnResult) Winner() (Side, bool) {
	if r == nil {
		return 0, false
	}
	switch r.Outcome {
	case OutcomeHumanWon:
		return SideHuman, true
	case OutcomeComputerWon:
		return SideComputer, true
	}
	return 0, false
}
