package game

import (
	"github.com/fivecrowns/server/internal/cards"
	"github.com/fivecrowns/server/internal/rules"
	"github.com/google/uuid"
)

// DrawFromStock appends the top of the stock to the acting player's hand.
// Requires MustDraw. If the stock is empty, the discard pile (all but its
// top card) is reshuffled back into the stock first.
func (g *GameState) DrawFromStock(userID uuid.UUID) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDraw {
		return illegalState(CodeWrongPhase, "player must discard before drawing again")
	}
	if len(g.DeckStock) == 0 {
		g.reshuffleDiscardIntoStock()
	}
	if len(g.DeckStock) == 0 {
		return illegalState(CodeWrongPhase, "no cards left to draw")
	}

	card := g.DeckStock[len(g.DeckStock)-1]
	g.DeckStock = g.DeckStock[:len(g.DeckStock)-1]
	p := g.currentPlayer()
	p.Hand = append(p.Hand, card)
	g.TurnPhase = MustDiscard
	return nil
}

// DrawFromDiscard pops the discard pile's top card onto the acting
// player's hand. Requires MustDraw and a non-empty discard pile.
func (g *GameState) DrawFromDiscard(userID uuid.UUID) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDraw {
		return illegalState(CodeWrongPhase, "player must discard before drawing again")
	}
	if len(g.DiscardPile) == 0 {
		return illegalState(CodeWrongPhase, "discard pile is empty")
	}

	card := g.DiscardPile[len(g.DiscardPile)-1]
	g.DiscardPile = g.DiscardPile[:len(g.DiscardPile)-1]
	p := g.currentPlayer()
	p.Hand = append(p.Hand, card)
	g.TurnPhase = MustDiscard
	return nil
}

// LayMelds validates and lays down one or more melds from the acting
// player's hand. Requires MustDiscard. Does not change phase.
func (g *GameState) LayMelds(userID uuid.UUID, proposedMelds [][]cards.Card) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDiscard {
		return illegalState(CodeWrongPhase, "player must draw before melding")
	}

	p := g.currentPlayer()
	hand := p.Hand
	built := make([]Meld, 0, len(proposedMelds))
	for _, meldCards := range proposedMelds {
		meldType, ok := rules.GetMeldType(meldCards, g.RoundNumber)
		if !ok {
			return illegalState(CodeInvalidMeld, "meld does not form a valid run or book")
		}
		next, ok := consumeCards(hand, meldCards)
		if !ok {
			return notFound("card not in hand")
		}
		hand = next
		built = append(built, Meld{Type: meldType, Cards: append([]cards.Card{}, meldCards...)})
	}

	p.Hand = hand
	p.Melds = append(p.Melds, built...)
	return nil
}

// LayOff extends another (or the same) player's existing meld with cards
// from the acting player's hand. Requires MustDiscard and
// !IsFinalTurnPhase.
func (g *GameState) LayOff(userID uuid.UUID, targetPlayerIdx, meldIdx int, addCards []cards.Card) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDiscard {
		return illegalState(CodeWrongPhase, "player must draw before laying off")
	}
	if g.IsFinalTurnPhase {
		return illegalState(CodeFinalTurnPhase, "lay-off is disabled during the final-turn phase")
	}
	if targetPlayerIdx < 0 || targetPlayerIdx >= len(g.Players) {
		return notFound("target player does not exist")
	}
	target := g.Players[targetPlayerIdx]
	if meldIdx < 0 || meldIdx >= len(target.Melds) {
		return notFound("target meld does not exist")
	}
	existing := target.Melds[meldIdx]

	if !rules.CanExtendMeld(existing.Type, existing.Cards, addCards, g.RoundNumber) {
		return illegalState(CodeCannotExtendMeld, "cards cannot extend the target meld")
	}

	acting := g.currentPlayer()
	nextHand, ok := consumeCards(acting.Hand, addCards)
	if !ok {
		return notFound("card not in hand")
	}
	acting.Hand = nextHand

	target.Melds[meldIdx] = Meld{
		Type:  existing.Type,
		Cards: append(append([]cards.Card{}, existing.Cards...), addCards...),
	}
	return nil
}

// Discard removes card from the acting player's hand, pushes it onto the
// discard pile, and advances the turn (or ends the round/game). Requires
// MustDiscard.
func (g *GameState) Discard(userID uuid.UUID, card cards.Card) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDiscard {
		return illegalState(CodeWrongPhase, "player must draw before discarding")
	}

	p := g.currentPlayer()
	nextHand, ok := removeCard(p.Hand, card)
	if !ok {
		return notFound("card not in hand")
	}
	p.Hand = nextHand
	g.DiscardPile = append(g.DiscardPile, card)

	g.advanceAfterDiscard()
	return nil
}

// GoOut atomically lays the proposed melds and discards the final card,
// marking the acting player as having gone out and starting the
// final-turn phase for everyone else.
func (g *GameState) GoOut(userID uuid.UUID, proposedMelds [][]cards.Card, discard cards.Card) error {
	if err := g.requireActingPlayer(userID); err != nil {
		return err
	}
	if g.TurnPhase != MustDiscard {
		return illegalState(CodeWrongPhase, "player must draw before going out")
	}

	p := g.currentPlayer()
	if !rules.CanGoOut(p.Hand, proposedMelds, discard, g.RoundNumber) {
		return illegalState(CodeCannotGoOut, "proposed melds and discard do not account for the whole hand")
	}

	if err := g.LayMelds(userID, proposedMelds); err != nil {
		return err
	}

	seat := g.TurnIndex
	g.PlayerWhoWentOut = &seat
	g.Players[seat].HasGoneOut = true
	g.finalTurnsRemaining = map[int]bool{}
	for i, other := range g.Players {
		if i != seat {
			g.finalTurnsRemaining[other.Seat] = true
		}
	}

	return g.Discard(userID, discard)
}

// advanceAfterDiscard implements the post-discard turn/round bookkeeping:
// if a final-turn phase is active and everyone else has had their one
// last turn, the round ends and scores are computed; otherwise the turn
// moves to the next seat.
func (g *GameState) advanceAfterDiscard() {
	if g.PlayerWhoWentOut != nil {
		delete(g.finalTurnsRemaining, g.currentPlayer().Seat)
		if len(g.finalTurnsRemaining) == 0 {
			g.endRound()
			return
		}
	}

	g.TurnIndex = (g.TurnIndex + 1) % len(g.Players)
	g.TurnPhase = MustDraw
	if g.PlayerWhoWentOut != nil {
		g.IsFinalTurnPhase = true
	}
}

// endRound scores every player's hand against the winner (the player who
// went out), advances to the next round, or finishes the game after round
// 11.
func (g *GameState) endRound() {
	winnerSeat := *g.PlayerWhoWentOut
	for i, p := range g.Players {
		if i == winnerSeat {
			continue
		}
		p.Score += handPoints(p, g.RoundNumber)
	}

	if g.RoundNumber >= MaxRounds {
		g.Status = Finished
		g.IsFinalTurnPhase = false
		return
	}

	g.TurnIndex = (winnerSeat + 1) % len(g.Players)
	g.startRound()
}

func handPoints(p *Player, round int) int {
	total := 0
	for _, c := range p.Hand {
		total += c.PointValue(round)
	}
	return total
}

// Winner returns the seat index with the lowest total score once the game
// has finished, and true. It returns (0, false) if the game has not
// finished yet.
func (g *GameState) Winner() (int, bool) {
	if g.Status != Finished {
		return 0, false
	}
	best := 0
	for i, p := range g.Players {
		if p.Score < g.Players[best].Score {
			best = i
		}
	}
	return best, true
}
