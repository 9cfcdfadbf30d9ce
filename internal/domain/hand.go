package domain

// HandValue scores a blackjack hand: the maximal total ≤21 achievable by
// counting each ace as 11 unless that would bust the hand. When every
// assignment exceeds 21 the minimal total (all aces as 1) is returned.
func HandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsSoft reports whether the hand's value counts an ace as 11.
func IsSoft(cards []Card) bool {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return aces > 0 && total <= 21
}

// IsNatural reports whether the hand is a natural: a two-card 21 dealt
// before any hit.
func IsNatural(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

// IsBust reports whether the hand's best value exceeds 21.
func IsBust(cards []Card) bool {
	return HandValue(cards) > 21
}
