package app

import "blackjack/internal/domain"

// SnapshotPayload is the complete, self-consistent state every emitted event
// carries. The dealer's hole card is withheld while concealed; its hidden
// count and the visible-only hand value keep clients from inferring it.
type SnapshotPayload struct {
	SessionID     string                    `json:"sessionId"`
	Phase         domain.Phase              `json:"phase"`
	Turn          string                    `json:"turn,omitempty"`
	Participants  []ParticipantState        `json:"participants"`
	Dealer        DealerState               `json:"dealer"`
	Winners       []string                  `json:"winners,omitempty"`
	Settlements   []domain.SettlementRecord `json:"settlements,omitempty"`
	ShoeRemaining int                       `json:"shoeRemaining"`
}

// ParticipantState is one seat's public state. Blackjack hands are dealt face
// up, so every participant sees every hand.
type ParticipantState struct {
	UserID      string            `json:"userId"`
	DisplayName string            `json:"displayName"`
	Connected   bool              `json:"connected"`
	Hand        []domain.Card     `json:"hand"`
	HandValue   int               `json:"handValue"`
	Status      domain.TurnStatus `json:"status"`
	Balance     int64             `json:"balance"`
	Wager       int64             `json:"wager"`
	HasWagered  bool              `json:"hasWagered"`
}

// DealerState is the house hand as participants may see it.
type DealerState struct {
	Cards       []domain.Card       `json:"cards"`
	HiddenCount int                 `json:"hiddenCount"`
	HandValue   int                 `json:"handValue"`
	Status      domain.DealerStatus `json:"status"`
}

// NewSnapshot converts a committed session view into its wire form.
func NewSnapshot(v domain.SessionView) SnapshotPayload {
	participants := make([]ParticipantState, len(v.Participants))
	for i, p := range v.Participants {
		participants[i] = ParticipantState{
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Connected:   p.Connected,
			Hand:        p.Hand,
			HandValue:   domain.HandValue(p.Hand),
			Status:      p.Status,
			Balance:     p.Balance,
			Wager:       p.Wager,
			HasWagered:  p.HasWagered,
		}
	}

	visible := v.Dealer.VisibleCards()
	dealerValue := domain.HandValue(visible)
	if !v.Dealer.HoleConcealed() {
		dealerValue = v.Dealer.Value()
	}
	return SnapshotPayload{
		SessionID:    v.ID,
		Phase:        v.Phase,
		Turn:         v.Turn,
		Participants: participants,
		Dealer: DealerState{
			Cards:       visible,
			HiddenCount: len(v.Dealer.Cards) - len(visible),
			HandValue:   dealerValue,
			Status:      v.Dealer.Status,
		},
		Winners:       v.Winners,
		Settlements:   v.Settlements,
		ShoeRemaining: v.ShoeRemaining,
	}
}
