// Package game implements a four-player Mendicot room.
//
// The main type is Session, which owns the roster, deals a shuffled deck
// once four players have joined, enforces turn order, resolves each trick
// under trump and lead-suit rules and decides the match.
//
// # Basic Usage
//
// A Session never touches the network. Outbound events go through a Sender
// and inbound events arrive as method calls:
//
//	s := game.NewSession(sender, logger, game.WithRNG(randutil.New(42)))
//	_ = s.AddPlayer("alice")
//	// ... three more joins, then the start delay elapses ...
//	err := s.PlayCard("alice", card)
//	if errors.Is(err, game.ErrNotYourTurn) {
//	    // tell alice
//	}
//
// # Deterministic Testing
//
// Inject a seeded *rand.Rand with WithRNG and a quartz mock clock with
// WithClock. The start delay then only elapses when the test advances the
// clock, and the same seed always deals the same hands and trump.
//
// # Rules
//
//   - Seats 0 and 2 are team 1, seats 1 and 3 are team 2.
//   - Any card in hand may be played; suit need not be followed.
//   - The highest trump wins a trick, otherwise the highest lead-suit card.
//   - The trick winner leads next.
//   - Most tricks wins the match, then most tens captured, otherwise a tie.
package game
