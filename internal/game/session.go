package game

import (
	rand "math/rand/v2"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/gameid"
	"github.com/lox/mendicot/internal/randutil"
)

const (
	// SeatCount is the number of players in a match.
	SeatCount = 4
	// HandSize is the number of cards dealt to each seat.
	HandSize = deck.Size / SeatCount
)

// Phase is the lifecycle stage of the session.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseStarting Phase = "starting"
	PhasePlaying  Phase = "playing"
	PhaseOver     Phase = "over"
)

type seat struct {
	id   string
	team Team
	hand []deck.Card
	// vacant marks a seat whose player left under LeaveStall.
	vacant bool
}

// Session is the single four-player game room. All exported methods are
// safe for concurrent use; each holds the session lock for the whole event,
// including outbound sends.
type Session struct {
	mu     sync.Mutex
	sender Sender
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand
	ids    *gameid.Generator
	rules  Rules

	seats []*seat
	phase Phase

	matchID    string
	trump      deck.Suit
	lead       *deck.Suit
	trick      []Play
	turn       int
	teamScores Tally
	tensWon    Tally
	tricksWon  Tally
	outcome    *Outcome

	startTimer *quartz.Timer
	// startGen invalidates start timers armed for an earlier roster.
	startGen uint64
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for the start delay.
func WithClock(clock quartz.Clock) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// WithRNG sets the random source used for shuffling and trump selection.
func WithRNG(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithRules overrides DefaultRules.
func WithRules(rules Rules) Option {
	return func(s *Session) {
		s.rules = rules
	}
}

// NewSession creates an empty session that reports events through sender.
func NewSession(sender Sender, logger *log.Logger, opts ...Option) *Session {
	s := &Session{
		sender: sender,
		logger: logger.WithPrefix("session"),
		clock:  quartz.NewReal(),
		rules:  DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng, _ = randutil.FromOptionalSeed(nil)
	}
	if s.rules.LeavePolicy == "" {
		s.rules.LeavePolicy = LeaveAbort
	}
	s.ids = gameid.NewGenerator(s.rng)
	s.resetMatch()
	return s
}

// Rules returns the rules the session was created with.
func (s *Session) Rules() Rules {
	return s.rules
}

// AddPlayer seats id. Joining twice is a no-op. A full room replies
// roomFull to id and returns ErrRoomFull. The fourth join arms the start
// timer.
func (s *Session) AddPlayer(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.seats) == 0 {
		s.resetMatch()
	}

	if s.seatOf(id) >= 0 {
		return nil
	}

	if len(s.seats) >= SeatCount {
		s.logger.Info("Rejecting player, room full", "player", id)
		s.sender.Send(id, EventRoomFull, RoomFull{Message: "Game room is full"})
		return ErrRoomFull
	}

	n := len(s.seats)
	s.seats = append(s.seats, &seat{id: id, team: TeamForSeat(n)})
	s.logger.Info("Player joined", "player", id, "seat", n, "team", int(TeamForSeat(n)))

	if len(s.seats) == SeatCount {
		s.turn = 0
		s.phase = PhaseStarting
		s.armStartTimer()
	}

	s.broadcastWaiting()
	return nil
}

// RemovePlayer unseats id. Unknown ids are ignored.
func (s *Session) RemovePlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.seatOf(id)
	if idx < 0 {
		return
	}
	s.logger.Info("Player left", "player", id, "phase", s.phase)

	switch s.phase {
	case PhasePlaying:
		if s.rules.LeavePolicy == LeaveStall {
			s.seats[idx].vacant = true
			if s.occupied() == 0 {
				s.seats = nil
				s.resetMatch()
				return
			}
			s.logger.Warn("Seat vacated mid-match, match will stall", "player", id, "seat", idx, "match", s.matchID)
			s.broadcastState()
			return
		}

		s.removeSeat(idx)
		if len(s.seats) == 0 {
			s.resetMatch()
			return
		}
		s.logger.Warn("Match aborted", "player", id, "match", s.matchID)
		for _, st := range s.seats {
			s.sender.Send(st.id, EventGameAborted, GameAborted{
				Reason:   "player left",
				PlayerID: id,
			})
		}
	default:
		s.removeSeat(idx)
	}

	if s.occupied() == 0 {
		s.seats = nil
		s.resetMatch()
		return
	}

	if s.phase != PhaseWaiting {
		s.resetMatch()
	}
	s.reseat()
	s.broadcastWaiting()
}

// PlayCard plays card from id's hand. Illegal plays return an error and
// leave the session untouched.
func (s *Session) PlayCard(id string, card deck.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhasePlaying:
	case PhaseOver:
		return ErrGameOver
	default:
		return ErrNotPlaying
	}

	idx := s.seatOf(id)
	if idx < 0 || idx != s.turn {
		return ErrNotYourTurn
	}
	st := s.seats[idx]
	if st.hand == nil {
		return ErrNoHand
	}
	pos := slices.Index(st.hand, card)
	if pos < 0 {
		return ErrCardNotInHand
	}

	trick := append(cloneTrick(s.trick), Play{PlayerID: id, Card: card})
	lead := card.Suit
	if s.lead != nil {
		lead = *s.lead
	}

	var winner Play
	if len(trick) == SeatCount {
		w, err := ResolveTrick(trick, lead, s.trump)
		if err != nil {
			s.logger.Error("Failed to resolve trick", "match", s.matchID, "error", err)
			return err
		}
		winner = w
	}

	st.hand = slices.Delete(st.hand, pos, pos+1)
	s.trick = trick
	s.lead = &lead
	s.turn = (s.turn + 1) % SeatCount
	s.logger.Debug("Card played", "player", id, "card", card, "match", s.matchID)

	var outcome *Outcome
	if len(s.trick) == SeatCount {
		outcome = s.completeTrick(winner)
	}

	s.broadcastState()
	if outcome != nil {
		s.broadcastGameOver(*outcome)
	}
	return nil
}

// completeTrick credits the winner, clears the trick and hands the lead to
// the winner. It returns the outcome when the trick ended the match.
func (s *Session) completeTrick(winner Play) *Outcome {
	idx := s.seatOf(winner.PlayerID)
	team := s.seats[idx].team

	s.teamScores[team]++
	s.tricksWon[team]++
	if winner.Card.IsTen() {
		s.tensWon[team]++
	}

	s.logger.Info("Trick complete",
		"match", s.matchID,
		"winner", winner.PlayerID,
		"card", winner.Card,
		"team", int(team))

	payload := TrickComplete{
		WinnerID:    winner.PlayerID,
		WinningTeam: team,
		WinningCard: winner.Card,
		Trick:       s.trick,
		TricksWon:   s.tricksWon.Clone(),
		TensWon:     s.tensWon.Clone(),
	}
	for _, st := range s.seats {
		if !st.vacant {
			s.sender.Send(st.id, EventTrickComplete, payload)
		}
	}

	s.trick = nil
	s.lead = nil
	s.turn = idx

	if s.handsEmpty() {
		return s.finish(DecideOutcome(s.tricksWon, s.tensWon))
	}
	if s.rules.TensShortcut {
		if t, ok := tensShortcut(s.tensWon); ok {
			return s.finish(Outcome{WinningTeam: t, Reason: ReasonTensMajority})
		}
	}
	return nil
}

func (s *Session) finish(outcome Outcome) *Outcome {
	s.phase = PhaseOver
	s.outcome = &outcome
	s.logger.Info("Match over",
		"match", s.matchID,
		"winner", int(outcome.WinningTeam),
		"reason", outcome.Reason)
	return &outcome
}

func (s *Session) armStartTimer() {
	s.startGen++
	gen := s.startGen
	s.startTimer = s.clock.AfterFunc(s.rules.StartDelay, func() {
		s.startGame(gen)
	})
}

func (s *Session) cancelStartTimer() {
	s.startGen++
	if s.startTimer != nil {
		s.startTimer.Stop()
		s.startTimer = nil
	}
}

// startGame is the start timer callback. It deals only if the roster has
// not changed since gen was armed.
func (s *Session) startGame(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.startGen || s.phase != PhaseStarting || len(s.seats) != SeatCount {
		s.logger.Debug("Ignoring stale start timer")
		return
	}
	s.startTimer = nil

	s.matchID = s.ids.New(gameid.PrefixMatch)
	d := deck.NewShuffled(s.rng)
	s.trump = deck.RandomSuit(s.rng)
	s.logger.Debug("Shuffled deck", "match", s.matchID, "order", d.Cards())
	for _, st := range s.seats {
		st.hand = d.DealN(HandSize)
	}
	if n := d.CardsRemaining(); n != 0 {
		s.logger.Warn("Cards left undealt", "match", s.matchID, "count", n)
	}
	s.trick = nil
	s.lead = nil
	s.turn = 0
	s.teamScores = newTally()
	s.tensWon = newTally()
	s.tricksWon = newTally()
	s.outcome = nil
	s.phase = PhasePlaying

	s.logger.Info("Match started", "match", s.matchID, "trump", s.trump.Name())

	players := s.playerInfos()
	for i, st := range s.seats {
		s.sender.Send(st.id, EventGameStart, GameStart{
			MatchID:    s.matchID,
			Hand:       slices.Clone(st.hand),
			YourIndex:  i,
			YourID:     st.id,
			Players:    players,
			Turn:       s.turnID(),
			TurnIndex:  s.turn,
			TrumpSuit:  s.trump,
			Team:       st.team,
			TeamScores: s.teamScores.Clone(),
		})
	}
}

// resetMatch clears all match state. The roster is left alone.
func (s *Session) resetMatch() {
	s.cancelStartTimer()
	s.phase = PhaseWaiting
	s.matchID = ""
	s.trick = nil
	s.lead = nil
	s.turn = 0
	s.teamScores = newTally()
	s.tensWon = newTally()
	s.tricksWon = newTally()
	s.outcome = nil
	for _, st := range s.seats {
		st.hand = nil
	}
}

func (s *Session) removeSeat(idx int) {
	s.seats = slices.Delete(s.seats, idx, idx+1)
	if s.phase == PhaseStarting {
		s.cancelStartTimer()
		s.phase = PhaseWaiting
	}
}

// reseat drops vacated seats and re-derives teams from join order.
func (s *Session) reseat() {
	s.seats = slices.DeleteFunc(s.seats, func(st *seat) bool { return st.vacant })
	for i, st := range s.seats {
		st.team = TeamForSeat(i)
	}
}

func (s *Session) seatOf(id string) int {
	return slices.IndexFunc(s.seats, func(st *seat) bool {
		return st.id == id && !st.vacant
	})
}

func (s *Session) occupied() int {
	n := 0
	for _, st := range s.seats {
		if !st.vacant {
			n++
		}
	}
	return n
}

func (s *Session) handsEmpty() bool {
	for _, st := range s.seats {
		if len(st.hand) > 0 {
			return false
		}
	}
	return true
}

func (s *Session) playerInfos() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(s.seats))
	for _, st := range s.seats {
		players = append(players, PlayerInfo{ID: st.id, Team: st.team, Vacant: st.vacant})
	}
	return players
}

// turnID is the id of the seat due to play, or empty outside a match.
func (s *Session) turnID() string {
	if s.phase != PhasePlaying && s.phase != PhaseOver {
		return ""
	}
	if s.turn < 0 || s.turn >= len(s.seats) {
		return ""
	}
	return s.seats[s.turn].id
}

func (s *Session) handCounts() map[string]int {
	counts := make(map[string]int, len(s.seats))
	for _, st := range s.seats {
		counts[st.id] = len(st.hand)
	}
	return counts
}

func (s *Session) broadcastWaiting() {
	players := s.playerInfos()
	needed := SeatCount - len(s.seats)
	for _, st := range s.seats {
		s.sender.Send(st.id, EventWaitingForPlayers, WaitingForPlayers{
			PlayersConnected: len(s.seats),
			PlayersNeeded:    needed,
			Players:          players,
			YourID:           st.id,
		})
	}
}

func (s *Session) broadcastState() {
	players := s.playerInfos()
	counts := s.handCounts()
	var lead *deck.Suit
	if s.lead != nil {
		l := *s.lead
		lead = &l
	}
	for _, st := range s.seats {
		if st.vacant {
			continue
		}
		s.sender.Send(st.id, EventGameState, GameState{
			HandsRemaining: len(st.hand),
			HandCounts:     counts,
			Hand:           slices.Clone(st.hand),
			CurrentTrick:   cloneTrick(s.trick),
			LeadSuit:       lead,
			Turn:           s.turnID(),
			TurnIndex:      s.turn,
			YourID:         st.id,
			Players:        players,
			TeamScores:     s.teamScores.Clone(),
			TensWon:        s.tensWon.Clone(),
			TricksWon:      s.tricksWon.Clone(),
			GameOver:       s.phase == PhaseOver,
		})
	}
}

func (s *Session) broadcastGameOver(outcome Outcome) {
	payload := GameOver{
		WinningTeam: outcome.WinningTeam,
		WinReason:   outcome.Reason,
		TensWon:     s.tensWon.Clone(),
		TricksWon:   s.tricksWon.Clone(),
		TeamScores:  s.teamScores.Clone(),
	}
	for _, st := range s.seats {
		if !st.vacant {
			s.sender.Send(st.id, EventGameOver, payload)
		}
	}
}
