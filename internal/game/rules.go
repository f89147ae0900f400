package game

import (
	"fmt"
	"time"
)

// LeavePolicy controls what happens when a player leaves mid-match.
type LeavePolicy string

const (
	// LeaveAbort abandons the match and sends the rest back to the waiting room.
	LeaveAbort LeavePolicy = "abort"
	// LeaveStall vacates the seat and lets the match stall on its turn.
	LeaveStall LeavePolicy = "stall"
)

// ParseLeavePolicy accepts "abort" or "stall". Empty means LeaveAbort.
func ParseLeavePolicy(s string) (LeavePolicy, error) {
	switch LeavePolicy(s) {
	case "", LeaveAbort:
		return LeaveAbort, nil
	case LeaveStall:
		return LeaveStall, nil
	default:
		return "", fmt.Errorf("unknown leave policy %q (want abort or stall)", s)
	}
}

// Rules are the tunable parts of a session.
type Rules struct {
	// StartDelay is how long the session waits after the fourth join
	// before dealing.
	StartDelay time.Duration
	// TensShortcut ends the match as soon as one team holds more than
	// two tens.
	TensShortcut bool
	LeavePolicy  LeavePolicy
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		StartDelay:   time.Second,
		TensShortcut: false,
		LeavePolicy:  LeaveAbort,
	}
}
