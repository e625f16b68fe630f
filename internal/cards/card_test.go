package cards

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWildnessRotatesByRound(t *testing.T) {
	three := NewCard(Hearts, Three)
	king := NewCard(Spades, King)
	joker := JokerCard()

	assert.True(t, three.IsWild(1), "3s are wild in round 1")
	assert.False(t, three.IsWild(2))
	assert.True(t, king.IsWild(11), "kings are wild in round 11")
	for round := 1; round <= 11; round++ {
		assert.True(t, joker.IsWild(round), "jokers are always wild")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, suit := range allSuits {
		for _, rank := range allRanks {
			c := NewCard(suit, rank)
			decoded, err := Decode(c.Encode())
			require.NoError(t, err)
			assert.Equal(t, c, decoded)
		}
	}
	decoded, err := Decode("JK")
	require.NoError(t, err)
	assert.Equal(t, JokerCard(), decoded)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("")
	assert.Error(t, err)
	_, err = Decode("ZZ")
	assert.Error(t, err)
	_, err = Decode("H1")
	assert.Error(t, err)
}

func TestPointValue(t *testing.T) {
	assert.Equal(t, 50, JokerCard().PointValue(1))
	assert.Equal(t, 20, NewCard(Hearts, Three).PointValue(1), "round-1 wild rank scores 20")
	assert.Equal(t, 7, NewCard(Hearts, Seven).PointValue(1))
	assert.Equal(t, 13, NewCard(Hearts, King).PointValue(1))
}

func TestShoeComposition(t *testing.T) {
	shoe := NewShoe()
	require.Len(t, shoe, TotalCards)
	require.Equal(t, 116, TotalCards)

	jokers := 0
	counts := map[Card]int{}
	for _, c := range shoe {
		if c.Joker {
			jokers++
			continue
		}
		counts[c]++
	}
	assert.Equal(t, 6, jokers)
	for _, n := range counts {
		assert.Equal(t, 2, n, "every natural card appears exactly twice across two decks")
	}
}

func TestShuffleIsDeterministicForASeed(t *testing.T) {
	a := NewShoe()
	b := NewShoe()
	Shuffle(a, rand.New(rand.NewSource(42)))
	Shuffle(b, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)

	c := NewShoe()
	Shuffle(c, rand.New(rand.NewSource(43)))
	assert.NotEqual(t, a, c)
}
