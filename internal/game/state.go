// Package game implements the Five Crowns GameState machine: deck,
// discard, per-player hands/melds/scores, turn pointer, phase, round
// counter, and final-turn tracking, exposed as command methods that are
// transactional at the method boundary.
package game

import (
	"math/rand"

	"github.com/fivecrowns/server/internal/cards"
	"github.com/fivecrowns/server/internal/rules"
	"github.com/google/uuid"
)

// Phase names where in a turn the current player is.
type Phase string

const (
	MustDraw    Phase = "must_draw"
	MustDiscard Phase = "must_discard"
)

// Status names the game's lifecycle stage.
type Status string

const (
	Lobby    Status = "lobby"
	Active   Status = "active"
	Finished Status = "finished"
)

// MaxRounds is fixed by the rules: round N's wild rank is N+2, and rank
// values only go up to King (13), so round 11 is the last one.
const MaxRounds = 11

// MinSeats and MaxSeats bound how many players a table can seat. MaxSeats
// is chosen so the largest round's deal (round 11, 13 cards/player) still
// leaves cards in the stock for every seat.
const (
	MinSeats = 2
	MaxSeats = 7
)

// Meld is an immutable laid-down combination of cards.
type Meld struct {
	Type  rules.MeldType `json:"type"`
	Cards []cards.Card   `json:"cards"`
}

// Player is one seat's state.
type Player struct {
	UserID     uuid.UUID    `json:"userId"`
	Seat       int          `json:"seat"`
	Hand       []cards.Card `json:"hand"`
	Melds      []Meld       `json:"melds"`
	Score      int          `json:"score"`
	HasGoneOut bool         `json:"hasGoneOut"`
}

// GameState is the authoritative, single-writer state for one game. It is
// never observed from outside the queue that owns it.
type GameState struct {
	GameID               uuid.UUID
	Players              []*Player
	DeckStock            []cards.Card
	DiscardPile          []cards.Card
	TurnIndex            int
	TurnPhase            Phase
	RoundNumber          int
	PlayerWhoWentOut     *int
	IsFinalTurnPhase     bool
	Status               Status
	RNGSeed              int64

	finalTurnsRemaining map[int]bool // seat -> still owed a final turn
	rng                 *rand.Rand
}

// New creates a game in Lobby status for the given userIDs (seat order =
// slice order). Seat 0 is the host.
func New(gameID uuid.UUID, userIDs []uuid.UUID, seed int64) *GameState {
	players := make([]*Player, len(userIDs))
	for i, id := range userIDs {
		players[i] = &Player{UserID: id, Seat: i}
	}
	return &GameState{
		GameID:           gameID,
		Players:          players,
		Status:           Lobby,
		RNGSeed:          seed,
		PlayerWhoWentOut: nil,
		rng:              rand.New(rand.NewSource(seed)),
	}
}

// AddPlayer seats a new guest while the game is still in Lobby. It fails
// with CodeWrongPhase if the game has already started, or if the table
// is full.
func (g *GameState) AddPlayer(userID uuid.UUID) error {
	if g.Status != Lobby {
		return illegalState(CodeWrongPhase, "cannot join a game that has already started")
	}
	if len(g.Players) >= MaxSeats {
		return illegalState(CodeWrongPhase, "game is full")
	}
	g.Players = append(g.Players, &Player{UserID: userID, Seat: len(g.Players)})
	return nil
}

// StartGame transitions Lobby -> Active, shuffles, deals round 1, and
// flips the first discard.
func (g *GameState) StartGame() error {
	if g.Status != Lobby {
		return illegalState(CodeWrongPhase, "game already started")
	}
	if len(g.Players) < MinSeats {
		return illegalState(CodeWrongPhase, "not enough players to start")
	}
	g.Status = Active
	g.RoundNumber = 0
	g.TurnIndex = 0
	g.startRound()
	return nil
}

func (g *GameState) startRound() {
	g.RoundNumber++
	g.DeckStock = cards.NewShoe()
	cards.Shuffle(g.DeckStock, g.rng)

	handSize := g.RoundNumber + 2
	for _, p := range g.Players {
		p.Hand = append([]cards.Card{}, g.DeckStock[:handSize]...)
		g.DeckStock = g.DeckStock[handSize:]
		p.Melds = nil
		p.HasGoneOut = false
	}

	g.DiscardPile = []cards.Card{g.DeckStock[0]}
	g.DeckStock = g.DeckStock[1:]

	g.PlayerWhoWentOut = nil
	g.IsFinalTurnPhase = false
	g.finalTurnsRemaining = nil
	g.TurnPhase = MustDraw
}

// reshuffleDiscardIntoStock moves every discard but the top card back into
// the stock with a deterministic shuffle keyed by the game's seeded RNG
// stream.
func (g *GameState) reshuffleDiscardIntoStock() {
	if len(g.DiscardPile) <= 1 {
		return
	}
	top := g.DiscardPile[len(g.DiscardPile)-1]
	rest := append([]cards.Card{}, g.DiscardPile[:len(g.DiscardPile)-1]...)
	cards.Shuffle(rest, g.rng)
	g.DeckStock = append(g.DeckStock, rest...)
	g.DiscardPile = []cards.Card{top}
}

func (g *GameState) currentPlayer() *Player {
	return g.Players[g.TurnIndex]
}

func (g *GameState) seatOf(userID uuid.UUID) (int, bool) {
	for i, p := range g.Players {
		if p.UserID == userID {
			return i, true
		}
	}
	return 0, false
}

func (g *GameState) requireActingPlayer(userID uuid.UUID) error {
	seat, ok := g.seatOf(userID)
	if !ok {
		return illegalState(CodeNotInGame, "user is not a member of this game")
	}
	if g.Status != Active {
		return illegalState(CodeGameNotActive, "game is not active")
	}
	if seat != g.TurnIndex {
		return illegalState(CodeNotYourTurn, "it is not this player's turn")
	}
	return nil
}

func removeCard(hand []cards.Card, card cards.Card) ([]cards.Card, bool) {
	for i, c := range hand {
		if c == card {
			out := append([]cards.Card{}, hand[:i]...)
			out = append(out, hand[i+1:]...)
			return out, true
		}
	}
	return hand, false
}

// consumeCards removes every card in want from hand (multiset semantics).
// It returns the remaining hand and false if any wanted card was not
// available in sufficient quantity, in which case hand is returned
// unmodified.
func consumeCards(hand []cards.Card, want []cards.Card) ([]cards.Card, bool) {
	remaining := append([]cards.Card{}, hand...)
	for _, c := range want {
		next, ok := removeCard(remaining, c)
		if !ok {
			return hand, false
		}
		remaining = next
	}
	return remaining, true
}

// ConservationTotal sums stock, discard, every hand, and every meld's
// cards. Used by tests to assert the 116-card invariant holds.
func (g *GameState) ConservationTotal() int {
	total := len(g.DeckStock) + len(g.DiscardPile)
	for _, p := range g.Players {
		total += len(p.Hand)
		for _, m := range p.Melds {
			total += len(m.Cards)
		}
	}
	return total
}
