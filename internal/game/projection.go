package game

import (
	"github.com/fivecrowns/server/internal/cards"
	"github.com/google/uuid"
)

// PlayerView is the public-facing slice of one player as seen by someone
// else at the table: melds and score are public, but the hand is elided
// down to a count.
type PlayerView struct {
	UserID    uuid.UUID `json:"userId"`
	Seat      int       `json:"seat"`
	Melds     []Meld    `json:"melds"`
	Score     int       `json:"score"`
	HandCount int       `json:"handCount"`
}

// Projection is the per-player snapshot sent over the wire: everyone's
// public state, plus the viewer's own hand in full.
type Projection struct {
	GameID           uuid.UUID    `json:"gameId"`
	Status           Status       `json:"status"`
	RoundNumber      int          `json:"roundNumber"`
	TurnIndex        int          `json:"turnIndex"`
	TurnPhase        Phase        `json:"turnPhase"`
	IsFinalTurnPhase bool         `json:"isFinalTurnPhase"`
	StockCount       int          `json:"stockCount"`
	DiscardTop       *cards.Card  `json:"discardTop,omitempty"`
	Players          []PlayerView `json:"players"`
	YourSeat         int          `json:"yourSeat"`
	YourHand         []cards.Card `json:"yourHand"`
}

// Project builds the filtered snapshot for forUserID: every player's
// melds/score/seat are visible, but only forUserID's own hand is sent in
// full; everyone else's hand is reduced to a count.
func (g *GameState) Project(forUserID uuid.UUID) (Projection, error) {
	seat, ok := g.seatOf(forUserID)
	if !ok {
		return Projection{}, illegalState(CodeNotInGame, "user is not a member of this game")
	}

	views := make([]PlayerView, len(g.Players))
	for i, p := range g.Players {
		views[i] = PlayerView{
			UserID:    p.UserID,
			Seat:      p.Seat,
			Melds:     p.Melds,
			Score:     p.Score,
			HandCount: len(p.Hand),
		}
	}

	proj := Projection{
		GameID:           g.GameID,
		Status:           g.Status,
		RoundNumber:      g.RoundNumber,
		TurnIndex:        g.TurnIndex,
		TurnPhase:        g.TurnPhase,
		IsFinalTurnPhase: g.IsFinalTurnPhase,
		StockCount:       len(g.DeckStock),
		Players:          views,
		YourSeat:         seat,
		YourHand:         append([]cards.Card{}, g.Players[seat].Hand...),
	}
	if len(g.DiscardPile) > 0 {
		top := g.DiscardPile[len(g.DiscardPile)-1]
		proj.DiscardTop = &top
	}
	return proj, nil
}
