package game

// Win reasons carried in gameOver.
const (
	ReasonMoreTricks   = "won more tricks"
	ReasonMoreTens     = "captured more tens"
	ReasonTie          = "tie"
	ReasonTensMajority = "captured more than two tens"
)

// tensMajority is the number of tens a team must exceed to take the match
// outright when the shortcut rule is on.
const tensMajority = 2

// Outcome is the result of a finished match. WinningTeam is NoTeam on a tie.
type Outcome struct {
	WinningTeam Team
	Reason      string
}

// DecideOutcome compares tricks first, then tens, and otherwise declares a tie.
func DecideOutcome(tricks, tens Tally) Outcome {
	switch {
	case tricks[Team1] > tricks[Team2]:
		return Outcome{WinningTeam: Team1, Reason: ReasonMoreTricks}
	case tricks[Team2] > tricks[Team1]:
		return Outcome{WinningTeam: Team2, Reason: ReasonMoreTricks}
	case tens[Team1] > tens[Team2]:
		return Outcome{WinningTeam: Team1, Reason: ReasonMoreTens}
	case tens[Team2] > tens[Team1]:
		return Outcome{WinningTeam: Team2, Reason: ReasonMoreTens}
	default:
		return Outcome{WinningTeam: NoTeam, Reason: ReasonTie}
	}
}

// tensShortcut reports the team holding more than two tens, if any.
func tensShortcut(tens Tally) (Team, bool) {
	for _, t := range []Team{Team1, Team2} {
		if tens[t] > tensMajority {
			return t, true
		}
	}
	return NoTeam, false
}
