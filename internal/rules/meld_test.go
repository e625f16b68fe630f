package rules

import (
	"testing"

	"github.com/fivecrowns/server/internal/cards"
	"github.com/stretchr/testify/assert"
)

func mustDecode(t *testing.T, code string) cards.Card {
	t.Helper()
	c, err := cards.Decode(code)
	if err != nil {
		t.Fatalf("decode %q: %v", code, err)
	}
	return c
}

func hand(t *testing.T, codes ...string) []cards.Card {
	t.Helper()
	out := make([]cards.Card, len(codes))
	for i, code := range codes {
		out[i] = mustDecode(t, code)
	}
	return out
}

// S1: round-1 valid run.
func TestIsValidRun_S1(t *testing.T) {
	h := hand(t, "H4", "H5", "H6")
	assert.True(t, IsValidRun(h, 1))
}

// S2: wild substitution and gap limit (round 5, 7s wild).
func TestIsValidRun_S2(t *testing.T) {
	h1 := hand(t, "H4", "H7", "JK", "H8")
	assert.False(t, IsValidRun(h1, 5), "naturals 4,8 leave a gap of 3 (5,6,7) but there are only 2 wilds")

	h2 := hand(t, "H4", "H5", "H7", "JK", "H8")
	assert.True(t, IsValidRun(h2, 5))
}

// S3: book with duplicate suits.
func TestIsValidBook_S3(t *testing.T) {
	h := hand(t, "HQ", "HQ", "SQ")
	assert.True(t, IsValidBook(h, 1))
}

func TestIsValidRun_TooShort(t *testing.T) {
	assert.False(t, IsValidRun(hand(t, "H4", "H5"), 1))
}

func TestIsValidRun_DuplicateNaturalRankRejected(t *testing.T) {
	assert.False(t, IsValidRun(hand(t, "H4", "H4", "H5"), 1))
}

func TestIsValidRun_MixedSuitRejected(t *testing.T) {
	assert.False(t, IsValidRun(hand(t, "H4", "S5", "H6"), 1))
}

func TestIsValidRun_AllWildAccepted(t *testing.T) {
	assert.True(t, IsValidRun(hand(t, "H3", "S3", "JK"), 1))
}

func TestIsValidBook_TooShort(t *testing.T) {
	assert.False(t, IsValidBook(hand(t, "HQ", "SQ"), 1))
}

func TestIsValidBook_MixedRankRejected(t *testing.T) {
	assert.False(t, IsValidBook(hand(t, "HQ", "SQ", "H9"), 1))
}

// S4: go-out correctness.
func TestCanGoOut_S4(t *testing.T) {
	h := hand(t, "H4", "H5", "H6", "C8")
	melds := [][]cards.Card{hand(t, "H4", "H5", "H6")}
	assert.True(t, CanGoOut(h, melds, mustDecode(t, "C8"), 1))

	hTooMany := hand(t, "H4", "H5", "H6", "C8", "C9")
	assert.False(t, CanGoOut(hTooMany, melds, mustDecode(t, "C8"), 1))
}

func TestCanExtendMeld_Run(t *testing.T) {
	existing := hand(t, "H4", "H5", "H6")
	assert.True(t, CanExtendMeld(Run, existing, hand(t, "H7"), 1))
	assert.False(t, CanExtendMeld(Run, existing, hand(t, "C7"), 1))
}

func TestCanExtendMeld_Book(t *testing.T) {
	existing := hand(t, "HQ", "SQ", "DQ")
	assert.True(t, CanExtendMeld(Book, existing, hand(t, "CQ"), 1))
	assert.False(t, CanExtendMeld(Book, existing, hand(t, "C9"), 1))
}

// A run and a book can only both validate for empty or single-natural
// hands.
func TestRunAndBookOverlapOnlyOnTrivialNaturals(t *testing.T) {
	cases := [][]cards.Card{
		hand(t, "H3", "S3", "JK"),             // all wild
		hand(t, "H4", "S3", "JK"),             // single natural
		hand(t, "H4", "H5", "H6"),             // run only
		hand(t, "HQ", "SQ", "DQ"),             // book only
	}
	for _, c := range cases {
		run := IsValidRun(c, 1)
		book := IsValidBook(c, 1)
		if run && book {
			_, naturals := partitionWildsNaturals(c, 1)
			assert.LessOrEqual(t, len(naturals), 1, "both valid only for <=1 natural: %v", c)
		}
	}
}

// CanExtendMeld implies IsValidMeld on the union.
func TestCanExtendMeldImpliesValidMeld(t *testing.T) {
	existing := hand(t, "H4", "H5", "H6")
	add := hand(t, "H7")
	if CanExtendMeld(Run, existing, add, 1) {
		combined := append(append([]cards.Card{}, existing...), add...)
		assert.True(t, IsValidMeld(combined, 1))
	}
}
