package dicegame

// Outcome 对局结果
type Outcome byte

const (
	OutcomeInProgress  Outcome = 0
	OutcomeHumanWon    Outcome = 1
	OutcomeComputerWon Outcome = 2
)

var OutcomeDictionary = map[Outcome]string{
	OutcomeInProgress:  "in_progress",
	OutcomeHumanWon:    "human_won",
	OutcomeComputerWon: "computer_won",
}

func (o Outcome) String() string {
	if s, ok := OutcomeDictionary[o]; ok {
		return s
	}
	return "unknown"
}

// Terminal reports whether the match is over.
func (o Outcome) Terminal() bool { return o != OutcomeInProgress }

// Side identifies a player.
type Side byte

const (
	SideHuman    Side = 0
	SideComputer Side = 1
)

var SideDictionary = map[Side]string{
	SideHuman:    "human",
	SideComputer: "computer",
}

func (s Side) String() string {
	if v, ok := SideDictionary[s]; ok {
		return v
	}
	return "unknown"
}

const (
	// RollsPerTurn is the roll budget of a normal turn.
	RollsPerTurn = 3
	// RollsPerTieBreak is the roll budget of a tie-break turn.
	RollsPerTieBreak = 1
	// MinTargetScore is the smallest accepted target.
	MinTargetScore = 10
	// DefaultTargetScore is used when a caller has no preference.
	DefaultTargetScore = 101
)
