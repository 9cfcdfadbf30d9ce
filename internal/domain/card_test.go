package domain

import "testing"

func TestCardValue(t *testing.T) {
	tests := []struct {
		card Card
		want int
	}{
		{Card{Suit: SuitSpades, Rank: RankAce}, 11},
		{Card{Suit: SuitSpades, Rank: RankTwo}, 2},
		{Card{Suit: SuitHearts, Rank: RankNine}, 9},
		{Card{Suit: SuitHearts, Rank: RankTen}, 10},
		{Card{Suit: SuitDiamonds, Rank: RankJack}, 10},
		{Card{Suit: SuitDiamonds, Rank: RankQueen}, 10},
		{Card{Suit: SuitClubs, Rank: RankKing}, 10},
	}
	for _, tt := range tests {
		if got := tt.card.Value(); got != tt.want {
			t.Fatalf("%v.Value() = %d, want %d", tt.card, got, tt.want)
		}
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card{Suit: SuitSpades, Rank: RankAce}, "AS"},
		{Card{Suit: SuitHearts, Rank: RankTen}, "10H"},
		{Card{Suit: SuitDiamonds, Rank: RankTwo}, "2D"},
		{Card{Suit: SuitClubs, Rank: RankQueen}, "QC"},
	}
	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Fatalf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIsAce(t *testing.T) {
	if !(Card{Suit: SuitSpades, Rank: RankAce}).IsAce() {
		t.Fatal("ace not recognized")
	}
	if (Card{Suit: SuitSpades, Rank: RankKing}).IsAce() {
		t.Fatal("king reported as ace")
	}
}
