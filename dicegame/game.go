package dicegame

import (
	"sync"

	"dice-lite/dicegame/npc"
	"dice-lite/die"
)

// ChangeHook receives a snapshot after every command that changed state.
type ChangeHook func(snap Snapshot)

// Game is a single human-vs-computer match engine. Every command runs to
// completion before it returns; the computer acts inline.
type Game struct {
	cfg   Config
	src   die.Source
	brain npc.BrainDecider
	tally WinTally

	mu sync.Mutex

	human    TurnState
	computer TurnState

	// match state
	match         int
	turn          int
	target        int
	humanScore    int
	computerScore int
	outcome       Outcome
	// turnOpen is true between the human's first roll of a turn and its scoring.
	turnOpen bool

	tieBreak              bool
	tieBreakHumanScore    int
	tieBreakComputerScore int
	tieBreakRound         int

	lastTurn *TurnResult
	hooks    []ChangeHook
}

// NewGame validates cfg and starts the first match.
func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	src := cfg.Source
	if src == nil {
		src = die.NewSource(cfg.Seed)
	}
	brain := cfg.Brain
	if brain == nil {
		brain = npc.NewRuleBrain(src)
	}
	tally := cfg.Tally
	if tally == nil {
		tally = noopTally{}
	}
	g := &Game{
		cfg:   cfg,
		src:   src,
		brain: brain,
		tally: tally,
	}
	g.resetMatchLocked(cfg.TargetScore)
	return g, nil
}

// OnChange registers a hook. Hooks run after the engine lock is released and
// must not block.
func (g *Game) OnChange(h ChangeHook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, h)
}

// StartMatch abandons the current match and starts a new one racing to target.
// An invalid target is rejected before anything changes.
func (g *Game) StartMatch(target int) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	_, err := g.apply(func() (*TurnResult, error) {
		g.resetMatchLocked(target)
		return nil, nil
	})
	return err
}

// ThrowDice rolls the human's dice and gives the computer one strategy step.
// hold is ignored on the first roll of a turn and during a tie-break.
// turnEnd != nil means this throw completed the turn.
func (g *Game) ThrowDice(hold die.HoldMask) (turnEnd *TurnResult, err error) {
	return g.apply(func() (*TurnResult, error) {
		return g.throwLocked(hold)
	})
}

// ScoreNow ends the human's turn without further rolls.
func (g *Game) ScoreNow() (*TurnResult, error) {
	return g.apply(func() (*TurnResult, error) {
		switch {
		case g.outcome.Terminal():
			return nil, ErrMatchEnded
		case g.tieBreak:
			return nil, ErrTieBreakPending
		case !g.turnOpen:
			return nil, ErrNoRollYet
		case g.human.RollsRemaining <= 0:
			return nil, ErrNoRollsRemaining
		}
		return g.finalizeTurnLocked(), nil
	})
}

// AcknowledgeMatchEnd resets scores and turn state for a new match at the
// same target. Win totals held by the tally are untouched.
func (g *Game) AcknowledgeMatchEnd() {
	_, _ = g.apply(func() (*TurnResult, error) {
		g.resetMatchLocked(g.target)
		return nil, nil
	})
}

func (g *Game) apply(fn func() (*TurnResult, error)) (*TurnResult, error) {
	g.mu.Lock()
	res, err := fn()
	if err != nil {
		g.mu.Unlock()
		return nil, err
	}
	snap := g.snapshotLocked()
	hooks := append([]ChangeHook(nil), g.hooks...)
	g.mu.Unlock()

	for _, h := range hooks {
		h(snap)
	}
	return res, nil
}

func (g *Game) resetMatchLocked(target int) {
	g.match++
	g.turn = 1
	g.target = target
	g.humanScore = 0
	g.computerScore = 0
	g.outcome = OutcomeInProgress
	g.turnOpen = false
	g.tieBreak = false
	g.tieBreakHumanScore = 0
	g.tieBreakComputerScore = 0
	g.tieBreakRound = 0
	g.lastTurn = nil
	g.human = TurnState{}
	g.computer = TurnState{}
	g.resetTurnsLocked(RollsPerTurn)
}

func (g *Game) resetTurnsLocked(rolls int) {
	g.human.resetForTurn(rolls)
	g.computer.resetForTurn(rolls)
}

func (g *Game) throwLocked(hold die.HoldMask) (*TurnResult, error) {
	if g.outcome.Terminal() {
		return nil, ErrMatchEnded
	}
	if g.human.RollsRemaining <= 0 {
		return nil, ErrNoRollsRemaining
	}
	if g.tieBreak {
		return g.tieBreakThrowLocked(), nil
	}

	g.human.roll(g.src, hold)
	g.turnOpen = true
	g.computerStepLocked()
	g.human.mustValid(RollsPerTurn)
	g.computer.mustValid(RollsPerTurn)

	if g.human.RollsRemaining == 0 {
		return g.finalizeTurnLocked(), nil
	}
	return nil, nil
}

// computerStepLocked asks the brain for exactly one step. With no rolls left
// the brain is still consulted but nothing changes.
func (g *Game) computerStepLocked() npc.Decision {
	before := g.computer.RollsRemaining
	d := g.brain.Decide(npc.TurnView{
		Dice:           g.computer.Dice,
		RollsRemaining: before,
		FirstRoll:      g.computer.FirstRoll,
		TieBreak:       g.tieBreak,
	})
	if before == 0 {
		return d
	}
	if d.RollsRemaining < 0 || d.RollsRemaining >= before {
		panic(ErrInvalidState("computer strategy must spend at least one roll"))
	}
	g.computer.Dice = d.Dice.MustValid()
	g.computer.Hold = d.Hold
	g.computer.RollsRemaining = d.RollsRemaining
	g.computer.FirstRoll = false
	return d
}

// finalizeTurnLocked sweeps the computer's remaining rolls, scores both sets
// and runs the resolver. A turn already scored is never scored again.
func (g *Game) finalizeTurnLocked() *TurnResult {
	if !g.turnOpen || g.outcome.Terminal() {
		return nil
	}
	for i := 0; i < RollsPerTurn && g.computer.RollsRemaining > 0; i++ {
		g.computerStepLocked()
	}
	if g.computer.RollsRemaining != 0 {
		panic(ErrInvalidState("computer rolls not exhausted after sweep"))
	}
	g.human.RollsRemaining = 0
	g.turnOpen = false

	humanSum := g.human.Dice.MustValid().Sum()
	computerSum := g.computer.Dice.MustValid().Sum()
	g.humanScore += humanSum
	g.computerScore += computerSum

	res := &TurnResult{
		Turn:         g.turn,
		HumanDice:    g.human.Dice,
		ComputerDice: g.computer.Dice,
		HumanSum:     humanSum,
		ComputerSum:  computerSum,
	}
	g.resolveLocked(res)
	g.lastTurn = res

	if !g.outcome.Terminal() {
		g.turn++
		if !g.tieBreak {
			g.resetTurnsLocked(RollsPerTurn)
		}
	}
	return res
}

// tieBreakThrowLocked rolls both sides once with no holds and settles the round.
func (g *Game) tieBreakThrowLocked() *TurnResult {
	g.human.Dice = die.Roll(g.src)
	g.human.Hold = die.NoHold
	g.human.RollsRemaining = 0
	g.human.FirstRoll = false
	g.computerStepLocked()
	if g.computer.RollsRemaining != 0 {
		panic(ErrInvalidState("tie-break computer roll left rolls behind"))
	}

	g.tieBreakHumanScore = g.human.Dice.Sum()
	g.tieBreakComputerScore = g.computer.Dice.Sum()

	res := &TurnResult{
		Turn:          g.turn,
		TieBreak:      true,
		TieBreakRound: g.tieBreakRound,
		HumanDice:     g.human.Dice,
		ComputerDice:  g.computer.Dice,
		HumanSum:      g.tieBreakHumanScore,
		ComputerSum:   g.tieBreakComputerScore,
	}
	g.resolveLocked(res)
	g.lastTurn = res
	if !g.outcome.Terminal() {
		g.turn++
	}
	return res
}
