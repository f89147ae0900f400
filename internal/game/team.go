package game

import "fmt"

// Team identifies a partnership. Seats 0 and 2 form team 1, seats 1 and 3
// form team 2.
type Team int

const (
	// NoTeam is the winning team reported for a tied match.
	NoTeam Team = 0
	Team1  Team = 1
	Team2  Team = 2
)

// TeamForSeat derives a team from a zero-based seat (join order).
func TeamForSeat(seat int) Team {
	if seat%2 == 0 {
		return Team1
	}
	return Team2
}

// String returns the string representation of the team
func (t Team) String() string {
	switch t {
	case Team1, Team2:
		return fmt.Sprintf("team %d", int(t))
	default:
		return "none"
	}
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == Team1 {
		return Team2
	}
	return Team1
}

// Tally is a per-team counter. It encodes as {"1":n,"2":m}.
type Tally map[Team]int

func newTally() Tally {
	return Tally{Team1: 0, Team2: 0}
}

// Total sums both teams.
func (t Tally) Total() int {
	return t[Team1] + t[Team2]
}

// Clone returns an independent copy safe to hand to the transport.
func (t Tally) Clone() Tally {
	out := make(Tally, 2)
	out[Team1] = t[Team1]
	out[Team2] = t[Team2]
	return out
}
