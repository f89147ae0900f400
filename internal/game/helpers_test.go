package game

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/randutil"
	"github.com/stretchr/testify/require"
)

type sentEvent struct {
	to      string
	event   EventType
	payload any
}

// recorder is a Sender that keeps everything it is asked to send.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Send(playerID string, event EventType, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{to: playerID, event: event, payload: payload})
}

func (r *recorder) all() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) ofType(et EventType) []sentEvent {
	var out []sentEvent
	for _, e := range r.all() {
		if e.event == et {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) lastTo(id string, et EventType) (any, bool) {
	events := r.all()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].to == id && events[i].event == et {
			return events[i].payload, true
		}
	}
	return nil, false
}

var fourPlayers = []string{"A", "B", "C", "D"}

type harness struct {
	session *Session
	sent    *recorder
	clock   *quartz.Mock
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{sent: &recorder{}, clock: quartz.NewMock(t)}
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	opts = append([]Option{WithClock(h.clock), WithRNG(randutil.New(42))}, opts...)
	h.session = NewSession(h.sent, logger, opts...)
	return h
}

func (h *harness) join(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, h.session.AddPlayer(id))
	}
}

func (h *harness) elapseStartDelay(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(h.session.Rules().StartDelay).MustWait(ctx)
}

// start seats A-D and lets the start delay elapse.
func (h *harness) start(t *testing.T) {
	t.Helper()
	h.join(t, fourPlayers...)
	h.elapseStartDelay(t)
	require.Equal(t, PhasePlaying, h.session.View().Phase)
}

// rig replaces the dealt hands and trump so a test can script tricks.
func (h *harness) rig(t *testing.T, trump deck.Suit, hands ...string) {
	t.Helper()
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Equal(t, PhasePlaying, s.phase)
	require.Len(t, hands, SeatCount)
	s.trump = trump
	for i, hand := range hands {
		s.seats[i].hand = deck.MustParseCards(hand)
	}
	s.turn = 0
}

func (h *harness) play(t *testing.T, id, card string) {
	t.Helper()
	c, err := deck.ParseCard(card)
	require.NoError(t, err)
	require.NoError(t, h.session.PlayCard(id, c))
}

func cardsOf(t *testing.T, raw string) []deck.Card {
	t.Helper()
	cards, err := deck.ParseCards(raw)
	require.NoError(t, err)
	return cards
}
