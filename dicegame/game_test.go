package dicegame

import (
	"errors"
	"testing"

	"dice-lite/dicegame/npc"
	"dice-lite/die"
)

func TestNewGame_RejectsLowTarget(t *testing.T) {
	_, err := NewGame(Config{TargetScore: 9, Seed: 1})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestStartMatch_InvalidTargetLeavesStateAlone(t *testing.T) {
	g := newTestGame(t, Config{TargetScore: 50, Seed: 1})
	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatalf("ThrowDice err: %v", err)
	}
	before := g.Snapshot()

	if err := g.StartMatch(MinTargetScore - 1); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	after := g.Snapshot()
	if after.TargetScore != 50 || after.Human != before.Human || after.Match != before.Match {
		t.Fatalf("state changed on rejected StartMatch: before=%+v after=%+v", before, after)
	}

	if err := g.StartMatch(MinTargetScore); err != nil {
		t.Fatalf("StartMatch(%d) err: %v", MinTargetScore, err)
	}
	snap := g.Snapshot()
	if snap.TargetScore != MinTargetScore || snap.Match != before.Match+1 || snap.Human.RollsRemaining != RollsPerTurn {
		t.Fatalf("unexpected state after StartMatch: %+v", snap)
	}
}

func TestThrowDice_FirstRollIgnoresHold(t *testing.T) {
	src := newScripted(4)
	src.queueSet(1, 2, 3, 4, 5)
	g := newTestGame(t, Config{Source: src})

	allHeld := die.HoldMask{true, true, true, true, true}
	if _, err := g.ThrowDice(allHeld); err != nil {
		t.Fatalf("ThrowDice err: %v", err)
	}
	snap := g.Snapshot()
	if want := (die.Set{1, 2, 3, 4, 5}); snap.Human.Dice != want {
		t.Fatalf("first roll must generate every die: got %v want %v", snap.Human.Dice, want)
	}
	if snap.Human.Hold != die.NoHold {
		t.Fatalf("first roll should not record a hold mask, got %v", snap.Human.Hold)
	}
	if snap.Human.RollsRemaining != 2 || snap.Human.FirstRoll {
		t.Fatalf("unexpected human turn state: %+v", snap.Human)
	}
	// Opening computer roll happens in the same action.
	if snap.Computer.RollsRemaining != 2 || snap.Computer.Dice != (die.Set{4, 4, 4, 4, 4}) {
		t.Fatalf("unexpected computer turn state: %+v", snap.Computer)
	}
}

func TestThrowDice_HeldDiceSurviveReroll(t *testing.T) {
	src := newScripted(6)
	src.queueSet(1, 2, 3, 4, 5)
	g := newTestGame(t, Config{Source: src})

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatalf("first ThrowDice err: %v", err)
	}
	hold := die.HoldMask{true, false, true, false, false}
	if _, err := g.ThrowDice(hold); err != nil {
		t.Fatalf("second ThrowDice err: %v", err)
	}
	snap := g.Snapshot()
	if want := (die.Set{1, 6, 3, 6, 6}); snap.Human.Dice != want {
		t.Fatalf("unexpected dice after hold: got %v want %v", snap.Human.Dice, want)
	}
	if snap.Human.Hold != hold {
		t.Fatalf("hold mask not recorded: %v", snap.Human.Hold)
	}
}

func TestComputerTakesOneStepPerHumanAction(t *testing.T) {
	src := newScripted(3)
	// Always reroll so the computer keeps spending rolls while it can.
	src.fallbackFloat = 0.1
	brain := &countingBrain{inner: npc.NewRuleBrain(src)}
	g := newTestGame(t, Config{Source: src, Brain: brain})

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	if brain.calls != 1 || g.Snapshot().Computer.RollsRemaining != 2 {
		t.Fatalf("after throw 1: calls=%d computer=%+v", brain.calls, g.Snapshot().Computer)
	}
	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	if brain.calls != 2 || g.Snapshot().Computer.RollsRemaining != 1 {
		t.Fatalf("after throw 2: calls=%d computer=%+v", brain.calls, g.Snapshot().Computer)
	}
	res, err := g.ThrowDice(die.NoHold)
	if err != nil {
		t.Fatal(err)
	}
	if res == nil {
		t.Fatalf("third throw must complete the turn")
	}
	// Third action spent the last computer roll, so the sweep had nothing to do.
	if brain.calls != 3 {
		t.Fatalf("expected 3 strategy calls for 3 human throws, got %d", brain.calls)
	}
	snap := g.Snapshot()
	if snap.Turn != 2 || snap.Human.RollsRemaining != RollsPerTurn || snap.Computer.RollsRemaining != RollsPerTurn {
		t.Fatalf("next turn not initialized: %+v", snap)
	}
	if !snap.Human.FirstRoll || !snap.Computer.FirstRoll || snap.Human.Hold != die.NoHold {
		t.Fatalf("turn flags not reset: %+v", snap)
	}
}

func TestScoreNow_SweepsComputerRolls(t *testing.T) {
	src := newScripted(2)
	src.fallbackFloat = 0.1
	brain := &countingBrain{inner: npc.NewRuleBrain(src)}
	g := newTestGame(t, Config{Source: src, Brain: brain})

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	res, err := g.ScoreNow()
	if err != nil {
		t.Fatalf("ScoreNow err: %v", err)
	}
	if brain.calls != 3 {
		t.Fatalf("expected opening step plus 2 sweep steps, got %d", brain.calls)
	}
	if res.HumanSum != 10 || res.ComputerSum != 10 {
		t.Fatalf("unexpected sums: %+v", res)
	}
	snap := g.Snapshot()
	if snap.Human.Score != 10 || snap.Computer.Score != 10 {
		t.Fatalf("scores not accumulated: %+v", snap)
	}
}

func TestScoreNow_IllegalActions(t *testing.T) {
	g := newTestGame(t, Config{Seed: 5})
	if _, err := g.ScoreNow(); !errors.Is(err, ErrNoRollYet) || !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("expected ErrNoRollYet, got %v", err)
	}

	g.tieBreak = true
	if _, err := g.ScoreNow(); !errors.Is(err, ErrTieBreakPending) {
		t.Fatalf("expected ErrTieBreakPending, got %v", err)
	}
}

func TestFinalizeTurn_DoesNotDoubleCount(t *testing.T) {
	g := newTestGame(t, Config{Source: newScripted(3)})
	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}

	g.mu.Lock()
	first := g.finalizeTurnLocked()
	second := g.finalizeTurnLocked()
	g.mu.Unlock()

	if first == nil {
		t.Fatalf("first finalize should score the turn")
	}
	if second != nil {
		t.Fatalf("second finalize should be a no-op, got %+v", second)
	}
	snap := g.Snapshot()
	if snap.Human.Score != 15 || snap.Computer.Score != 15 {
		t.Fatalf("scores double counted: human=%d computer=%d", snap.Human.Score, snap.Computer.Score)
	}
}

func TestNonTiedWin_NotifiesOnce(t *testing.T) {
	tally := &Tally{}
	src := newScripted(1)
	g := newTestGame(t, Config{TargetScore: 101, Source: src, Tally: tally})
	g.humanScore = 96
	g.computerScore = 75

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	res, err := g.ScoreNow()
	if err != nil {
		t.Fatalf("ScoreNow err: %v", err)
	}
	if res.HumanScore != 101 || res.ComputerScore != 80 {
		t.Fatalf("unexpected cumulative scores: %+v", res)
	}
	if res.Outcome != OutcomeHumanWon {
		t.Fatalf("expected human win, got %v", res.Outcome)
	}
	if side, ok := res.Winner(); !ok || side != SideHuman {
		t.Fatalf("Winner() = %v,%v", side, ok)
	}
	if h, c := tally.Totals(); h != 1 || c != 0 {
		t.Fatalf("expected exactly one human win notification, got H:%d C:%d", h, c)
	}

	before := g.Snapshot()
	if _, err := g.ThrowDice(die.NoHold); !errors.Is(err, ErrMatchEnded) {
		t.Fatalf("expected ErrMatchEnded, got %v", err)
	}
	if _, err := g.ScoreNow(); !errors.Is(err, ErrMatchEnded) {
		t.Fatalf("expected ErrMatchEnded, got %v", err)
	}
	after := g.Snapshot()
	if after.Human != before.Human || after.Computer != before.Computer {
		t.Fatalf("terminal match mutated: before=%+v after=%+v", before, after)
	}
	if tally.String() != "H:1/C:0" {
		t.Fatalf("unexpected tally label %q", tally.String())
	}
}

func TestComputerWin(t *testing.T) {
	tally := &Tally{}
	src := newScripted(1)
	src.queueSet(ones()...)
	src.queueSet(sixes()...)
	g := newTestGame(t, Config{TargetScore: 40, Source: src, Tally: tally})
	g.computerScore = 10

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	res, err := g.ScoreNow()
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != OutcomeComputerWon || res.ComputerScore != 40 {
		t.Fatalf("expected computer win at 40, got %+v", res)
	}
	if h, c := tally.Totals(); h != 0 || c != 1 {
		t.Fatalf("expected one computer win, got H:%d C:%d", h, c)
	}
}

func TestAcknowledgeMatchEnd_ResetsMatchOnly(t *testing.T) {
	tally := &Tally{}
	src := newScripted(1)
	src.queueSet(sixes()...)
	g := newTestGame(t, Config{TargetScore: 20, Source: src, Tally: tally})

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ScoreNow(); err != nil {
		t.Fatal(err)
	}
	if snap := g.Snapshot(); snap.Outcome != OutcomeHumanWon {
		t.Fatalf("expected human win before acknowledge, got %+v", snap)
	}

	g.AcknowledgeMatchEnd()
	snap := g.Snapshot()
	if snap.Human.Score != 0 || snap.Computer.Score != 0 {
		t.Fatalf("scores not reset: %+v", snap)
	}
	if snap.Outcome != OutcomeInProgress || snap.TieBreak || snap.TieBreakRound != 0 {
		t.Fatalf("match state not reset: %+v", snap)
	}
	if snap.TargetScore != 20 || snap.Match != 2 || snap.Turn != 1 {
		t.Fatalf("unexpected match bookkeeping: %+v", snap)
	}
	if snap.Human.RollsRemaining != RollsPerTurn || snap.Computer.RollsRemaining != RollsPerTurn {
		t.Fatalf("turn state not reset: %+v", snap)
	}
	if h, c := tally.Totals(); h != 1 || c != 0 {
		t.Fatalf("win totals must survive reset, got H:%d C:%d", h, c)
	}
}

func TestOnChange_ReceivesSnapshotPerCommand(t *testing.T) {
	g := newTestGame(t, Config{Seed: 11})
	var got []Snapshot
	g.OnChange(func(s Snapshot) { got = append(got, s) })

	if _, err := g.ScoreNow(); err == nil {
		t.Fatalf("expected ScoreNow to fail before any roll")
	}
	if len(got) != 0 {
		t.Fatalf("rejected command must not notify, got %d", len(got))
	}

	if _, err := g.ThrowDice(die.NoHold); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Human.RollsRemaining != 2 {
		t.Fatalf("expected one snapshot after throw, got %+v", got)
	}
	g.AcknowledgeMatchEnd()
	if len(got) != 2 || got[1].Match != 2 {
		t.Fatalf("expected snapshot after acknowledge, got %+v", got)
	}
}

func TestRandomPlay_InvariantsHold(t *testing.T) {
	src := die.NewSource(2024)
	tally := &Tally{}
	g := newTestGame(t, Config{TargetScore: 40, Source: src, Tally: tally})

	finished := 0
	tieBreaks := 0
	for step := 0; step < 20000; step++ {
		before := g.Snapshot()
		if before.Outcome.Terminal() {
			finished++
			g.AcknowledgeMatchEnd()
			continue
		}

		var hold die.HoldMask
		for i := range hold {
			hold[i] = src.Bool()
		}

		var (
			res   *TurnResult
			err   error
			threw bool
		)
		if !before.TieBreak && !before.Human.FirstRoll && src.Float64() < 0.2 {
			res, err = g.ScoreNow()
		} else {
			threw = true
			res, err = g.ThrowDice(hold)
		}
		if err != nil {
			t.Fatalf("step %d: unexpected error %v (state %+v)", step, err, before)
		}

		after := g.Snapshot()
		checkRanges(t, step, after)
		if after.TieBreak && !before.TieBreak {
			tieBreaks++
		}

		// Held dice survive a normal non-opening reroll.
		if threw && !before.TieBreak && !before.Human.FirstRoll {
			final := after.Human.Dice
			if res != nil {
				final = res.HumanDice
			}
			for i := range hold {
				if hold[i] && final[i] != before.Human.Dice[i] {
					t.Fatalf("step %d: held die %d changed %v -> %v", step, i, before.Human.Dice, final)
				}
			}
		}
	}
	if g.Snapshot().Outcome.Terminal() {
		finished++
	}
	if finished == 0 {
		t.Fatalf("expected some finished matches")
	}
	h, c := tally.Totals()
	if h+c != finished {
		t.Fatalf("tally %d+%d does not match %d finished matches", h, c, finished)
	}
	if tieBreaks == 0 {
		t.Fatalf("expected at least one tie-break across %d matches", finished)
	}
}

func checkRanges(t *testing.T, step int, s Snapshot) {
	t.Helper()
	maxRolls := RollsPerTurn
	if s.TieBreak {
		maxRolls = RollsPerTieBreak
	}
	for _, p := range []PlayerSnapshot{s.Human, s.Computer} {
		if p.RollsRemaining < 0 || p.RollsRemaining > maxRolls {
			t.Fatalf("step %d: %v rolls out of range: %d (tie-break=%v)", step, p.Side, p.RollsRemaining, s.TieBreak)
		}
		if p.Dice != (die.Set{}) && !p.Dice.Valid() {
			t.Fatalf("step %d: %v has invalid dice %v", step, p.Side, p.Dice)
		}
		if p.Score < 0 {
			t.Fatalf("step %d: negative score %d", step, p.Score)
		}
	}
}
