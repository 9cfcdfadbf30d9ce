package domain

import "math/rand"

// Shoe is the single-round card source: the 52 distinct cards, randomly
// permuted at creation and after every Reset. Cards leave the shoe by Draw
// and never return until the next Reset, so a card identity can never be in
// the shoe and in a hand at the same time.
type Shoe struct {
	cards []Card
}

// NewShoe builds a freshly shuffled 52-card shoe.
func NewShoe(rng *rand.Rand) *Shoe {
	s := &Shoe{}
	s.Reset(rng)
	return s
}

// Reset rebuilds the full 52-card sequence and reshuffles it.
func (s *Shoe) Reset(rng *rand.Rand) {
	cards := make([]Card, 0, 52)
	for _, suit := range Suits {
		for r := RankAce; r <= RankKing; r++ {
			cards = append(cards, Card{Suit: suit, Rank: r})
		}
	}
	rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
	s.cards = cards
}

// Draw removes and returns the next card. ok is false when the shoe is
// exhausted; callers treat that as a boundary condition, not a fault.
func (s *Shoe) Draw() (Card, bool) {
	if len(s.cards) == 0 {
		return Card{}, false
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card, true
}

// Remaining returns the number of undrawn cards.
func (s *Shoe) Remaining() int {
	return len(s.cards)
}
