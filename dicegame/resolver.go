package dicegame

// resolveLocked runs once per completed turn, after scores were added.
func (g *Game) resolveLocked(res *TurnResult) {
	humanReached := g.humanScore >= g.target
	computerReached := g.computerScore >= g.target

	switch {
	case humanReached && computerReached && !g.tieBreak:
		g.tieBreak = true
		g.tieBreakRound = 0
		g.tieBreakHumanScore = 0
		g.tieBreakComputerScore = 0
		g.resetTurnsLocked(RollsPerTieBreak)
		res.EnteredTieBreak = true

	case humanReached && computerReached:
		switch {
		case g.tieBreakHumanScore > g.tieBreakComputerScore:
			g.tieBreak = false
			g.finishLocked(OutcomeHumanWon)
		case g.tieBreakComputerScore > g.tieBreakHumanScore:
			g.tieBreak = false
			g.finishLocked(OutcomeComputerWon)
		default:
			g.tieBreakRound++
			g.tieBreakHumanScore = 0
			g.tieBreakComputerScore = 0
			g.resetTurnsLocked(RollsPerTieBreak)
		}

	case humanReached:
		g.finishLocked(OutcomeHumanWon)

	case computerReached:
		g.finishLocked(OutcomeComputerWon)
	}

	res.HumanScore = g.humanScore
	res.ComputerScore = g.computerScore
	res.Outcome = g.outcome
}

// finishLocked moves to a terminal outcome and notifies the tally exactly once.
func (g *Game) finishLocked(o Outcome) {
	if g.outcome.Terminal() || !o.Terminal() {
		return
	}
	g.outcome = o
	switch o {
	case OutcomeHumanWon:
		g.tally.OnHumanWin()
	case OutcomeComputerWon:
		g.tally.OnComputerWin()
	}
}
