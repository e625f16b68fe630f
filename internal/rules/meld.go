// Package rules holds the pure, stateless meld-validation predicates that
// are Five Crowns' only semantic authority: isValidRun, isValidBook,
// canExtendMeld, and canGoOut. Every other component calls these and must
// not duplicate the logic.
package rules

import (
	"sort"

	"github.com/fivecrowns/server/internal/cards"
)

// MeldType names which shape a meld satisfies.
type MeldType string

const (
	Run  MeldType = "run"
	Book MeldType = "book"
)

func partitionWildsNaturals(hand []cards.Card, round int) (wilds, naturals []cards.Card) {
	for _, c := range hand {
		if c.IsWild(round) {
			wilds = append(wilds, c)
		} else {
			naturals = append(naturals, c)
		}
	}
	return wilds, naturals
}

// IsValidRun reports whether cards form a run: at least 3 cards, naturals
// (if any) share one suit, no duplicate natural rank, and wilds are enough
// to cover the interior gaps between sorted naturals. Wilds fill interior
// gap slots only; they never substitute for a natural rank already present
// in the run.
func IsValidRun(hand []cards.Card, round int) bool {
	if len(hand) < 3 {
		return false
	}
	wilds, naturals := partitionWildsNaturals(hand, round)
	if len(naturals) == 0 {
		return true
	}

	suit := naturals[0].Suit
	seenRank := map[cards.Rank]bool{}
	for _, c := range naturals {
		if c.Suit != suit {
			return false
		}
		if seenRank[c.Rank] {
			return false
		}
		seenRank[c.Rank] = true
	}

	sort.Slice(naturals, func(i, j int) bool { return naturals[i].Rank < naturals[j].Rank })

	gaps := 0
	for i := 0; i+1 < len(naturals); i++ {
		gaps += int(naturals[i+1].Rank) - int(naturals[i].Rank) - 1
	}

	return len(wilds) >= gaps
}

// IsValidBook reports whether cards form a book: at least 3 cards, all
// naturals (if any) share one rank. Duplicate suits are permitted because
// Five Crowns is played with two decks.
func IsValidBook(hand []cards.Card, round int) bool {
	if len(hand) < 3 {
		return false
	}
	_, naturals := partitionWildsNaturals(hand, round)
	if len(naturals) == 0 {
		return true
	}
	rank := naturals[0].Rank
	for _, c := range naturals {
		if c.Rank != rank {
			return false
		}
	}
	return true
}

// IsValidMeld reports whether cards form a valid meld of either shape.
func IsValidMeld(hand []cards.Card, round int) bool {
	return IsValidRun(hand, round) || IsValidBook(hand, round)
}

// GetMeldType tries run first, then book, and reports which predicate
// succeeded. ok is false if neither does. An all-wild meld satisfies both
// predicates; callers that need a specific type for an all-wild meld must
// track the type at construction time rather than rely on GetMeldType.
func GetMeldType(hand []cards.Card, round int) (MeldType, bool) {
	if IsValidRun(hand, round) {
		return Run, true
	}
	if IsValidBook(hand, round) {
		return Book, true
	}
	return "", false
}

// CanExtendMeld reports whether appending newCards to an existing meld of
// the given type remains valid. For runs this re-sorts naturals and
// recomputes gap counts over the full combined set; for books it just
// re-checks rank equality. The caller's declared type is authoritative so
// an all-wild existing meld keeps its original shape under extension.
func CanExtendMeld(existingType MeldType, existing, newCards []cards.Card, round int) bool {
	combined := make([]cards.Card, 0, len(existing)+len(newCards))
	combined = append(combined, existing...)
	combined = append(combined, newCards...)

	switch existingType {
	case Run:
		return IsValidRun(combined, round)
	case Book:
		return IsValidBook(combined, round)
	default:
		return false
	}
}

// CanGoOut reports whether laying proposedMelds and then discarding discard
// accounts for the player's entire hand: every meld must validate, the
// melds plus the single discard must sum to exactly the hand size, and
// subtracting melded cards and the discard from the hand (as a multiset)
// must leave nothing behind.
func CanGoOut(hand []cards.Card, proposedMelds [][]cards.Card, discard cards.Card, round int) bool {
	total := 1
	for _, meld := range proposedMelds {
		total += len(meld)
	}
	if total != len(hand) {
		return false
	}

	for _, meld := range proposedMelds {
		if !IsValidMeld(meld, round) {
			return false
		}
	}

	remaining := map[cards.Card]int{}
	for _, c := range hand {
		remaining[c]++
	}
	for _, meld := range proposedMelds {
		for _, c := range meld {
			if remaining[c] == 0 {
				return false
			}
			remaining[c]--
		}
	}
	if remaining[discard] == 0 {
		return false
	}
	remaining[discard]--

	for _, n := range remaining {
		if n != 0 {
			return false
		}
	}
	return true
}
