package game

import (
	"testing"

	"github.com/fivecrowns/server/internal/cards"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoPlayerGame(t *testing.T, seed int64) (*GameState, uuid.UUID, uuid.UUID) {
	t.Helper()
	p0, p1 := uuid.New(), uuid.New()
	g := New(uuid.New(), []uuid.UUID{p0, p1}, seed)
	require.NoError(t, g.StartGame())
	return g, p0, p1
}

func setHand(g *GameState, seat int, hand []cards.Card) {
	g.Players[seat].Hand = hand
}

func TestConservationHoldsThroughASequence(t *testing.T) {
	g, p0, p1 := newTwoPlayerGame(t, 1)
	require.Equal(t, cards.TotalCards, g.ConservationTotal())

	require.NoError(t, g.DrawFromStock(p0))
	assert.Equal(t, cards.TotalCards, g.ConservationTotal())
	assert.Len(t, g.Players[0].Hand, g.RoundNumber+3, "after draw, before discard")

	card := g.Players[0].Hand[0]
	require.NoError(t, g.Discard(p0, card))
	assert.Equal(t, cards.TotalCards, g.ConservationTotal())
	assert.Len(t, g.Players[0].Hand, g.RoundNumber+2, "just discarded, turn advanced")

	require.NoError(t, g.DrawFromStock(p1))
	require.NoError(t, g.Discard(p1, g.Players[1].Hand[0]))
	assert.Equal(t, cards.TotalCards, g.ConservationTotal())
}

// S1: round-1 valid run, then discard, melds recorded, hand empty, turn advances.
func TestScenarioS1_RoundOneValidRun(t *testing.T) {
	g, p0, _ := newTwoPlayerGame(t, 7)
	setHand(g, 0, []cards.Card{
		mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6"), mustDecode(t, "H7"),
	})
	g.TurnPhase = MustDiscard

	require.NoError(t, g.LayMelds(p0, [][]cards.Card{
		{mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6")},
	}))
	require.Len(t, g.Players[0].Melds, 1)
	require.Len(t, g.Players[0].Hand, 1)

	require.NoError(t, g.Discard(p0, mustDecode(t, "H7")))
	assert.Empty(t, g.Players[0].Hand)
	assert.Equal(t, 1, g.TurnIndex, "turn advances to seat 1")
}

// S5: cross-player lay-off.
func TestScenarioS5_CrossPlayerLayOff(t *testing.T) {
	g, p0, p1 := newTwoPlayerGame(t, 3)
	setHand(g, 0, []cards.Card{
		mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6"), mustDecode(t, "SQ"),
	})
	g.TurnPhase = MustDiscard
	require.NoError(t, g.LayMelds(p0, [][]cards.Card{
		{mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6")},
	}))
	require.NoError(t, g.Discard(p0, mustDecode(t, "SQ")))
	require.Equal(t, 1, g.TurnIndex)

	setHand(g, 1, append(g.Players[1].Hand, mustDecode(t, "H7")))
	require.NoError(t, g.DrawFromStock(p1))
	handBefore := len(g.Players[1].Hand)

	require.NoError(t, g.LayOff(p1, 0, 0, []cards.Card{mustDecode(t, "H7")}))
	assert.Len(t, g.Players[0].Melds[0].Cards, 4)
	assert.Len(t, g.Players[1].Hand, handBefore-1)
}

// S6: final-turn lockout.
func TestScenarioS6_FinalTurnLockout(t *testing.T) {
	g, p0, p1 := newTwoPlayerGame(t, 9)
	setHand(g, 0, []cards.Card{
		mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6"), mustDecode(t, "C8"),
	})
	g.TurnPhase = MustDiscard

	require.NoError(t, g.GoOut(p0, [][]cards.Card{
		{mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6")},
	}, mustDecode(t, "C8")))

	assert.True(t, g.IsFinalTurnPhase)
	require.Equal(t, 1, g.TurnIndex)

	require.NoError(t, g.DrawFromStock(p1))
	err := g.LayOff(p1, 0, 0, []cards.Card{mustDecode(t, "H7")})
	require.Error(t, err)
	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, CodeFinalTurnPhase, re.Code)
}

func TestNotYourTurnRejected(t *testing.T) {
	g, _, p1 := newTwoPlayerGame(t, 11)
	err := g.DrawFromStock(p1)
	require.Error(t, err)
	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotYourTurn, re.Code)
}

func TestWrongPhaseRejected(t *testing.T) {
	g, p0, _ := newTwoPlayerGame(t, 13)
	err := g.Discard(p0, g.Players[0].Hand[0])
	require.Error(t, err)
	re, ok := AsRuleError(err)
	require.True(t, ok)
	assert.Equal(t, CodeWrongPhase, re.Code)
}

func TestRoundEndScoresAndAdvances(t *testing.T) {
	g, p0, p1 := newTwoPlayerGame(t, 5)
	setHand(g, 0, []cards.Card{
		mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6"), mustDecode(t, "C8"),
	})
	setHand(g, 1, []cards.Card{mustDecode(t, "D9"), mustDecode(t, "DX")})
	g.TurnPhase = MustDiscard

	require.NoError(t, g.GoOut(p0, [][]cards.Card{
		{mustDecode(t, "H4"), mustDecode(t, "H5"), mustDecode(t, "H6")},
	}, mustDecode(t, "C8")))

	// Seat 1 takes its single final turn, ending the round.
	require.NoError(t, g.DrawFromStock(p1))
	require.NoError(t, g.Discard(p1, g.Players[1].Hand[0]))

	assert.Equal(t, 2, g.RoundNumber, "round advanced")
	assert.False(t, g.IsFinalTurnPhase)
	assert.Greater(t, g.Players[1].Score, 0, "loser scored the remaining deadwood")
	assert.Equal(t, 0, g.Players[0].Score, "winner scores nothing")
}

func mustDecode(t *testing.T, code string) cards.Card {
	t.Helper()
	c, err := cards.Decode(code)
	require.NoError(t, err)
	return c
}
