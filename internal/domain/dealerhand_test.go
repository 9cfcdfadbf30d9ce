package domain

import (
	"reflect"
	"testing"
)

func TestDealerHoleConcealment(t *testing.T) {
	d := DealerHand{
		Cards:  []Card{c(RankSeven, SuitDiamonds), c(RankKing, SuitDiamonds)},
		Status: DealerConcealed,
	}
	if !d.HoleConcealed() {
		t.Fatal("hole not concealed while status is concealed")
	}
	want := []Card{c(RankSeven, SuitDiamonds)}
	if got := d.VisibleCards(); !reflect.DeepEqual(got, want) {
		t.Fatalf("VisibleCards() = %v, want only the upcard %v", got, want)
	}
	// The full value still counts the hole card.
	if got := d.Value(); got != 17 {
		t.Fatalf("Value() = %d, want 17", got)
	}

	d.Reveal()
	if d.Status != DealerActive {
		t.Fatalf("status after Reveal = %v, want %v", d.Status, DealerActive)
	}
	if got := d.VisibleCards(); len(got) != 2 {
		t.Fatalf("VisibleCards() after reveal = %v, want both cards", got)
	}
}

func TestDealerRevealOnlyFromConcealed(t *testing.T) {
	d := DealerHand{Status: DealerStanding}
	d.Reveal()
	if d.Status != DealerStanding {
		t.Fatalf("Reveal changed a settled hand to %v", d.Status)
	}
}

func TestDealerIsNatural(t *testing.T) {
	natural := DealerHand{Cards: []Card{c(RankAce, SuitDiamonds), c(RankKing, SuitDiamonds)}}
	if !natural.IsNatural() {
		t.Fatal("ace plus king not recognized as a natural")
	}
	threeCard := DealerHand{Cards: []Card{c(RankKing, SuitDiamonds), c(RankSix, SuitDiamonds), c(RankFive, SuitDiamonds)}}
	if threeCard.IsNatural() {
		t.Fatal("three-card 21 reported as a natural")
	}
}
