package game

import "errors"

// Capacity errors are returned to the joining caller only.
var ErrRoomFull = errors.New("room full")

// Illegal plays. The session rejects these without changing state or
// broadcasting; the transport may report them to the offender.
var (
	ErrNotPlaying    = errors.New("no match in progress")
	ErrGameOver      = errors.New("game already over")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNoHand        = errors.New("player has no hand")
	ErrCardNotInHand = errors.New("card not in hand")
)

// ErrMalformedTrick signals a trick with neither trump nor lead-suit cards,
// which the dealing and play invariants rule out.
var ErrMalformedTrick = errors.New("malformed trick: no trump or lead-suit card")
