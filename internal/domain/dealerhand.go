package domain

// DealerStatus tracks the house hand across a round.
type DealerStatus string

const (
	// DealerWaiting means no round is in progress.
	DealerWaiting DealerStatus = "waiting"
	// DealerConcealed means the dealer holds a face-down hole card.
	DealerConcealed DealerStatus = "concealed"
	// DealerActive means the hole card is revealed and the dealer is drawing.
	DealerActive DealerStatus = "active"
	// DealerStanding means the dealer stopped drawing at 17 or better.
	DealerStanding DealerStatus = "standing"
	// DealerBusted means the dealer drew past 21.
	DealerBusted DealerStatus = "busted"
)

// DealerHand is the house hand. Cards[0] is the upcard dealt face up;
// Cards[1] is the hole card and stays hidden from participants until Reveal.
type DealerHand struct {
	Cards  []Card
	Status DealerStatus
}

// Value returns the dealer's best hand value over all cards, hole included.
func (d *DealerHand) Value() int {
	return HandValue(d.Cards)
}

// IsNatural reports a dealt two-card 21.
func (d *DealerHand) IsNatural() bool {
	return IsNatural(d.Cards)
}

// HoleConcealed reports whether the hole card is still face down.
func (d *DealerHand) HoleConcealed() bool {
	return d.Status == DealerConcealed
}

// VisibleCards returns the cards a participant may see. While the hole card
// is concealed only the upcard is included.
func (d *DealerHand) VisibleCards() []Card {
	if d.HoleConcealed() && len(d.Cards) >= 2 {
		out := append([]Card(nil), d.Cards[:1]...)
		return append(out, d.Cards[2:]...)
	}
	return append([]Card(nil), d.Cards...)
}

// Reveal turns the hole card face up and puts the dealer in play.
func (d *DealerHand) Reveal() {
	if d.Status == DealerConcealed {
		d.Status = DealerActive
	}
}

// reset clears the hand between rounds.
func (d *DealerHand) reset() {
	d.Cards = nil
	d.Status = DealerWaiting
}

// clone returns a deep copy safe to hand outside the session lock.
func (d *DealerHand) clone() DealerHand {
	out := *d
	out.Cards = append([]Card(nil), d.Cards...)
	return out
}
