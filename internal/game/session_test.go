package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lox/mendicot/internal/deck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinAssignsAlternatingTeams(t *testing.T) {
	h := newHarness(t)
	h.join(t, fourPlayers...)

	v := h.session.View()
	require.Len(t, v.Players, 4)
	for i, want := range []Team{Team1, Team2, Team1, Team2} {
		assert.Equal(t, fourPlayers[i], v.Players[i].ID)
		assert.Equal(t, want, v.Players[i].Team)
	}

	payload, ok := h.sent.lastTo("C", EventWaitingForPlayers)
	require.True(t, ok)
	waiting := payload.(WaitingForPlayers)
	assert.Equal(t, "C", waiting.YourID)
	assert.Equal(t, 4, waiting.PlayersConnected)
	assert.Equal(t, 0, waiting.PlayersNeeded)
}

func TestWaitingBroadcastIsAddressedToEachPlayer(t *testing.T) {
	h := newHarness(t)
	h.join(t, "A", "B")

	// A's join sends one event, B's join sends one each to A and B.
	events := h.sent.ofType(EventWaitingForPlayers)
	require.Len(t, events, 3)
	for _, e := range events {
		assert.Equal(t, e.to, e.payload.(WaitingForPlayers).YourID)
	}
	last := events[2].payload.(WaitingForPlayers)
	assert.Equal(t, 2, last.PlayersConnected)
	assert.Equal(t, 2, last.PlayersNeeded)
}

func TestAddPlayerIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.join(t, "A")
	h.sent.reset()

	require.NoError(t, h.session.AddPlayer("A"))

	assert.Len(t, h.session.View().Players, 1)
	assert.Empty(t, h.sent.all())
}

func TestRoomFull(t *testing.T) {
	h := newHarness(t)
	h.join(t, fourPlayers...)
	h.sent.reset()
	before := h.session.View()

	err := h.session.AddPlayer("E")
	require.ErrorIs(t, err, ErrRoomFull)

	events := h.sent.all()
	require.Len(t, events, 1)
	assert.Equal(t, "E", events[0].to)
	assert.Equal(t, EventRoomFull, events[0].event)
	assert.Equal(t, before, h.session.View())
}

func TestMatchStartsAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.join(t, fourPlayers...)

	assert.Equal(t, PhaseStarting, h.session.View().Phase)
	assert.Empty(t, h.sent.ofType(EventGameStart))

	h.elapseStartDelay(t)

	starts := h.sent.ofType(EventGameStart)
	require.Len(t, starts, 4)

	seen := make(map[deck.Card]bool)
	for i, e := range starts {
		gs := e.payload.(GameStart)
		assert.Equal(t, e.to, gs.YourID)
		assert.Equal(t, fourPlayers[i], gs.YourID)
		assert.Equal(t, i, gs.YourIndex)
		assert.Equal(t, TeamForSeat(i), gs.Team)
		assert.Equal(t, "A", gs.Turn, "first joiner leads")
		assert.Equal(t, 0, gs.TurnIndex)
		assert.NotEmpty(t, gs.MatchID)
		require.Len(t, gs.Hand, HandSize)
		for _, c := range gs.Hand {
			assert.False(t, seen[c], "card %s dealt twice", c)
			seen[c] = true
		}
	}
	assert.Len(t, seen, deck.Size)

	trump, ok := h.session.Trump()
	require.True(t, ok)
	assert.Equal(t, trump, starts[0].payload.(GameStart).TrumpSuit)
}

func TestSameSeedDealsSameHands(t *testing.T) {
	a := newHarness(t)
	a.start(t)
	b := newHarness(t)
	b.start(t)

	for _, id := range fourPlayers {
		ha, ok := a.session.Hand(id)
		require.True(t, ok)
		hb, ok := b.session.Hand(id)
		require.True(t, ok)
		assert.Equal(t, ha, hb)
	}
	ta, _ := a.session.Trump()
	tb, _ := b.session.Trump()
	assert.Equal(t, ta, tb)
}

func TestLeaveDuringStartCancelsTimer(t *testing.T) {
	h := newHarness(t)
	h.join(t, fourPlayers...)

	h.session.mu.Lock()
	staleGen := h.session.startGen
	h.session.mu.Unlock()

	h.session.RemovePlayer("D")
	assert.Equal(t, PhaseWaiting, h.session.View().Phase)

	h.join(t, "E")
	assert.Equal(t, PhaseStarting, h.session.View().Phase)

	h.session.startGame(staleGen)
	assert.Equal(t, PhaseStarting, h.session.View().Phase)
	assert.Empty(t, h.sent.ofType(EventGameStart))

	h.elapseStartDelay(t)
	assert.Equal(t, PhasePlaying, h.session.View().Phase)
	assert.Len(t, h.sent.ofType(EventGameStart), 4)
}

func TestPlayCardRejections(t *testing.T) {
	t.Run("before the match starts", func(t *testing.T) {
		h := newHarness(t)
		h.join(t, fourPlayers...)
		err := h.session.PlayCard("A", deck.NewCard(deck.Spades, deck.Ace))
		assert.ErrorIs(t, err, ErrNotPlaying)
	})

	t.Run("illegal plays leave state untouched", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		h.rig(t, deck.Spades, "5h 2c", "Kh 3c", "2s 4c", "Ah 5c")
		h.sent.reset()

		before := h.session.View()
		handA, _ := h.session.Hand("A")
		handB, _ := h.session.Hand("B")

		assert.ErrorIs(t, h.session.PlayCard("B", cardsOf(t, "Kh")[0]), ErrNotYourTurn)
		assert.ErrorIs(t, h.session.PlayCard("Z", cardsOf(t, "Kh")[0]), ErrNotYourTurn)
		assert.ErrorIs(t, h.session.PlayCard("A", cardsOf(t, "Kh")[0]), ErrCardNotInHand)

		assert.Equal(t, before, h.session.View())
		afterA, _ := h.session.Hand("A")
		afterB, _ := h.session.Hand("B")
		assert.Equal(t, handA, afterA)
		assert.Equal(t, handB, afterB)
		assert.Empty(t, h.sent.all())
	})
}

func TestHandsRemainingIsPerRecipient(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	hand, ok := h.session.Hand("A")
	require.True(t, ok)
	h.sent.reset()

	require.NoError(t, h.session.PlayCard("A", hand[0]))

	stateA, ok := h.sent.lastTo("A", EventGameState)
	require.True(t, ok)
	assert.Equal(t, HandSize-1, stateA.(GameState).HandsRemaining)

	stateB, ok := h.sent.lastTo("B", EventGameState)
	require.True(t, ok)
	gs := stateB.(GameState)
	assert.Equal(t, HandSize, gs.HandsRemaining)
	assert.Equal(t, map[string]int{"A": HandSize - 1, "B": HandSize, "C": HandSize, "D": HandSize}, gs.HandCounts)
}

func TestTrickWinnerLeadsNext(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.rig(t, deck.Spades, "5h 2c", "Kh 3c", "2s 4c", "Ah 5c")
	h.sent.reset()

	h.play(t, "A", "5h")
	v := h.session.View()
	require.NotNil(t, v.LeadSuit)
	assert.Equal(t, deck.Hearts, *v.LeadSuit)
	assert.Equal(t, "B", v.Turn)
	assert.Equal(t, 1, v.TurnIndex)

	states := h.sent.ofType(EventGameState)
	require.Len(t, states, 4)
	for _, e := range states {
		gs := e.payload.(GameState)
		assert.Equal(t, "B", gs.Turn)
		assert.Equal(t, 1, gs.TurnIndex)
		assert.Equal(t, 1, gs.HandCounts["A"])
		assert.Equal(t, 2, gs.HandCounts["B"])
	}
	stateA, ok := h.sent.lastTo("A", EventGameState)
	require.True(t, ok)
	assert.Equal(t, 1, stateA.(GameState).HandsRemaining)
	stateB, ok := h.sent.lastTo("B", EventGameState)
	require.True(t, ok)
	assert.Equal(t, 2, stateB.(GameState).HandsRemaining)

	h.play(t, "B", "Kh")
	h.play(t, "C", "2s")
	h.play(t, "D", "Ah")

	completes := h.sent.ofType(EventTrickComplete)
	require.Len(t, completes, 4)
	tc := completes[0].payload.(TrickComplete)
	assert.Equal(t, "C", tc.WinnerID)
	assert.Equal(t, Team1, tc.WinningTeam)
	assert.Equal(t, deck.NewCard(deck.Spades, deck.Two), tc.WinningCard)
	assert.Len(t, tc.Trick, 4)

	v = h.session.View()
	assert.Equal(t, "C", v.Turn, "trick winner should lead")
	assert.Equal(t, 2, v.TurnIndex)
	leadState, ok := h.sent.lastTo("A", EventGameState)
	require.True(t, ok)
	assert.Equal(t, "C", leadState.(GameState).Turn)
	assert.Empty(t, v.CurrentTrick)
	assert.Nil(t, v.LeadSuit)
	assert.Equal(t, 1, v.TeamScores[Team1])
	assert.Equal(t, 1, v.TricksWon[Team1])
	assert.Equal(t, 0, v.TensWon[Team1])

	assert.ErrorIs(t, h.session.PlayCard("A", cardsOf(t, "2c")[0]), ErrNotYourTurn)

	h.play(t, "C", "4c")
	h.play(t, "D", "5c")
	h.play(t, "A", "2c")
	h.play(t, "B", "3c")

	v = h.session.View()
	assert.True(t, v.GameOver)
	require.NotNil(t, v.WinningTeam)
	assert.Equal(t, NoTeam, *v.WinningTeam)
	assert.Equal(t, ReasonTie, v.WinReason)

	overs := h.sent.ofType(EventGameOver)
	require.Len(t, overs, 4)
	gameOver := overs[0].payload.(GameOver)
	assert.Equal(t, NoTeam, gameOver.WinningTeam)
	assert.Equal(t, ReasonTie, gameOver.WinReason)

	// The final gameState already reports the match as over.
	state, ok := h.sent.lastTo("A", EventGameState)
	require.True(t, ok)
	assert.True(t, state.(GameState).GameOver)

	assert.ErrorIs(t, h.session.PlayCard("C", cardsOf(t, "4c")[0]), ErrGameOver)
}

func TestWinningTenIsCounted(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.rig(t, deck.Spades, "10h", "2h", "3h", "4h")

	h.play(t, "A", "10h")
	h.play(t, "B", "2h")
	h.play(t, "C", "3h")
	h.play(t, "D", "4h")

	v := h.session.View()
	assert.Equal(t, 1, v.TensWon[Team1])
	assert.Equal(t, 0, v.TensWon[Team2])
	require.NotNil(t, v.WinningTeam)
	assert.Equal(t, Team1, *v.WinningTeam)
	assert.Equal(t, ReasonMoreTricks, v.WinReason)
}

func TestTiedTricksDecidedByTens(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	// Team 2 takes the first trick with a ten, team 1 the second without.
	h.rig(t, deck.Spades, "2h 3c", "10h 2c", "3h Ac", "4h 4c")

	h.play(t, "A", "2h")
	h.play(t, "B", "10h")
	h.play(t, "C", "3h")
	h.play(t, "D", "4h")

	h.play(t, "B", "2c")
	h.play(t, "C", "Ac")
	h.play(t, "D", "4c")
	h.play(t, "A", "3c")

	v := h.session.View()
	assert.Equal(t, 1, v.TricksWon[Team1])
	assert.Equal(t, 1, v.TricksWon[Team2])
	require.NotNil(t, v.WinningTeam)
	assert.Equal(t, Team2, *v.WinningTeam)
	assert.Equal(t, ReasonMoreTens, v.WinReason)
}

func TestTensShortcut(t *testing.T) {
	hands := []string{"10h 10d 10c Ah", "2h 2d 2c 5s", "3h 3d 3c 6s", "4h 4d 4c 7s"}
	playThreeTricks := func(t *testing.T, h *harness) {
		for _, suit := range []string{"h", "d", "c"} {
			h.play(t, "A", "10"+suit)
			h.play(t, "B", "2"+suit)
			h.play(t, "C", "3"+suit)
			h.play(t, "D", "4"+suit)
		}
	}

	t.Run("disabled plays on", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		h.rig(t, deck.Spades, hands...)
		playThreeTricks(t, h)

		v := h.session.View()
		assert.False(t, v.GameOver)
		assert.Equal(t, 3, v.TensWon[Team1])
	})

	t.Run("enabled ends the match", func(t *testing.T) {
		rules := DefaultRules()
		rules.TensShortcut = true
		h := newHarness(t, WithRules(rules))
		h.start(t)
		h.rig(t, deck.Spades, hands...)
		playThreeTricks(t, h)

		v := h.session.View()
		assert.True(t, v.GameOver)
		require.NotNil(t, v.WinningTeam)
		assert.Equal(t, Team1, *v.WinningTeam)
		assert.Equal(t, ReasonTensMajority, v.WinReason)
		assert.ErrorIs(t, h.session.PlayCard("A", cardsOf(t, "Ah")[0]), ErrGameOver)
	})
}

func TestFullMatchKeepsInvariants(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	for i := 0; i < deck.Size; i++ {
		v := h.session.View()
		require.False(t, v.GameOver)
		id := v.Turn
		require.Equal(t, v.Players[v.TurnIndex].ID, id)
		hand, ok := h.session.Hand(id)
		require.True(t, ok)
		require.NoError(t, h.session.PlayCard(id, hand[len(hand)/2]))

		v = h.session.View()
		held := 0
		for _, n := range v.HandsRemaining {
			held += n
		}
		resolved := v.TricksWon.Total()
		assert.Equal(t, deck.Size, held+4*resolved+len(v.CurrentTrick))
		assert.Equal(t, resolved, v.TeamScores.Total())
		assert.Equal(t, (i+1)/4, resolved)
	}

	v := h.session.View()
	assert.True(t, v.GameOver)
	assert.Equal(t, HandSize, v.TricksWon.Total())
	assert.Len(t, h.sent.ofType(EventGameOver), 4)
	assert.Len(t, h.sent.ofType(EventTrickComplete), 4*HandSize)
	assert.Len(t, h.sent.ofType(EventGameState), 4*deck.Size)
}

func TestLeaveMidMatchAborts(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	firstMatch := h.session.View().MatchID
	hand, _ := h.session.Hand("A")
	require.NoError(t, h.session.PlayCard("A", hand[0]))
	h.sent.reset()

	h.session.RemovePlayer("B")

	aborted := h.sent.ofType(EventGameAborted)
	require.Len(t, aborted, 3)
	for _, e := range aborted {
		assert.NotEqual(t, "B", e.to)
		assert.Equal(t, "B", e.payload.(GameAborted).PlayerID)
	}

	v := h.session.View()
	assert.Equal(t, PhaseWaiting, v.Phase)
	assert.Empty(t, v.CurrentTrick)
	assert.Equal(t, []PlayerInfo{{ID: "A", Team: Team1}, {ID: "C", Team: Team2}, {ID: "D", Team: Team1}}, v.Players)
	_, ok := h.session.Hand("A")
	assert.False(t, ok)

	waiting, ok := h.sent.lastTo("D", EventWaitingForPlayers)
	require.True(t, ok)
	assert.Equal(t, 1, waiting.(WaitingForPlayers).PlayersNeeded)

	h.join(t, "E")
	h.elapseStartDelay(t)
	v = h.session.View()
	assert.Equal(t, PhasePlaying, v.Phase)
	assert.NotEqual(t, firstMatch, v.MatchID)
	assert.Equal(t, Team2, v.Players[3].Team)
}

func TestLeaveMidMatchStalls(t *testing.T) {
	rules := DefaultRules()
	rules.LeavePolicy = LeaveStall
	h := newHarness(t, WithRules(rules))
	h.start(t)
	h.rig(t, deck.Spades, "5h 2c", "Kh 3c", "2s 4c", "Ah 5c")

	h.sent.reset()
	h.session.RemovePlayer("B")
	assert.Equal(t, PhasePlaying, h.session.View().Phase)
	assert.Empty(t, h.sent.ofType(EventGameAborted))

	state, ok := h.sent.lastTo("A", EventGameState)
	require.True(t, ok)
	players := state.(GameState).Players
	require.Len(t, players, SeatCount)
	assert.Equal(t, PlayerInfo{ID: "B", Team: Team2, Vacant: true}, players[1])
	assert.False(t, players[0].Vacant)
	_, ok = h.sent.lastTo("B", EventGameState)
	assert.False(t, ok, "vacant seat gets no updates")

	assert.ErrorIs(t, h.session.AddPlayer("E"), ErrRoomFull)

	h.play(t, "A", "5h")
	// B's seat is on turn and nobody can fill it.
	assert.ErrorIs(t, h.session.PlayCard("C", cardsOf(t, "2s")[0]), ErrNotYourTurn)
	assert.ErrorIs(t, h.session.PlayCard("B", cardsOf(t, "Kh")[0]), ErrNotYourTurn)

	for _, id := range []string{"A", "C", "D"} {
		h.session.RemovePlayer(id)
	}
	v := h.session.View()
	assert.Equal(t, PhaseWaiting, v.Phase)
	assert.Empty(t, v.Players)

	require.NoError(t, h.session.AddPlayer("E"))
	assert.Equal(t, []PlayerInfo{{ID: "E", Team: Team1}}, h.session.View().Players)
}

func TestLastPlayerLeavingResets(t *testing.T) {
	h := newHarness(t)
	h.start(t)

	for _, id := range fourPlayers {
		h.session.RemovePlayer(id)
	}
	h.session.RemovePlayer("A")

	v := h.session.View()
	assert.Equal(t, PhaseWaiting, v.Phase)
	assert.Empty(t, v.Players)
	assert.Empty(t, v.MatchID)
	assert.Equal(t, 0, v.TricksWon.Total())
}

func TestLeaveAfterMatchReturnsToWaiting(t *testing.T) {
	h := newHarness(t, WithRules(Rules{StartDelay: 2 * time.Second}))
	h.start(t)
	h.rig(t, deck.Spades, "10h", "2h", "3h", "4h")
	for i, c := range []string{"10h", "2h", "3h", "4h"} {
		h.play(t, fourPlayers[i], c)
	}
	require.True(t, h.session.View().GameOver)

	h.session.RemovePlayer("C")
	v := h.session.View()
	assert.Equal(t, PhaseWaiting, v.Phase)
	assert.False(t, v.GameOver)
	assert.Len(t, v.Players, 3)
	assert.Empty(t, h.sent.ofType(EventGameAborted))
}

func TestTallyJSON(t *testing.T) {
	data, err := json.Marshal(Tally{Team1: 3, Team2: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":3,"2":1}`, string(data))

	var back Tally
	require.NoError(t, json.Unmarshal([]byte(`{"1":0,"2":7}`), &back))
	assert.Equal(t, 7, back[Team2])
}
