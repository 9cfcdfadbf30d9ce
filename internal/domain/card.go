package domain

import "strconv"

// Suit is one of the four French suits.
type Suit string

const (
	SuitSpades   Suit = "S"
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
)

// Suits lists all suits in deck-building order.
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// Rank is a card rank, 0..12 (A=0, 2=1 .. 10=9, J=10, Q=11, K=12).
type Rank int

const (
	RankAce Rank = iota
	RankTwo
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
)

// Card is a single playing card. Cards are immutable values; a card is owned
// by whichever hand (or the shoe) currently holds it and is moved, never shared.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Value returns the card's base blackjack value. Aces count as 11 here;
// hand scoring downgrades aces to 1 as needed (see HandValue).
func (c Card) Value() int {
	switch {
	case c.Rank == RankAce:
		return 11
	case c.Rank >= RankTen:
		return 10
	default:
		return int(c.Rank) + 1
	}
}

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool {
	return c.Rank == RankAce
}

// String renders a short human-readable form like "AS" or "10H".
func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// String renders the rank symbol ("A", "2".."10", "J", "Q", "K").
func (r Rank) String() string {
	switch r {
	case RankAce:
		return "A"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	default:
		return strconv.Itoa(int(r) + 1)
	}
}
