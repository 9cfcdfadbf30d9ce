package domain

import "blackjack/internal/stake"

// TransitionKind names one committed state change of a session.
type TransitionKind string

const (
	TransitionSeated            TransitionKind = "seated"
	TransitionUnseated          TransitionKind = "unseated"
	TransitionWageringStarted   TransitionKind = "wagering_started"
	TransitionWagerCommitted    TransitionKind = "wager_committed"
	TransitionRoundDealt        TransitionKind = "round_dealt"
	TransitionCardDrawn         TransitionKind = "card_drawn"
	TransitionStood             TransitionKind = "stood"
	TransitionDealerRevealed    TransitionKind = "dealer_revealed"
	TransitionDealerDrew        TransitionKind = "dealer_drew"
	TransitionRoundSettled      TransitionKind = "round_settled"
	TransitionRoundReset        TransitionKind = "round_reset"
	TransitionRoundAbandoned    TransitionKind = "round_abandoned"
	TransitionConnectionChanged TransitionKind = "connection_changed"
)

// SettlementRecord is one participant's result for a settled wager. It is
// also the unit the application layer mirrors to external wallets: the net
// balance change is Payout minus Wager.
type SettlementRecord struct {
	ParticipantID    string        `json:"participantId"`
	Wager            int64         `json:"wager"`
	Outcome          stake.Outcome `json:"outcome"`
	Payout           int64         `json:"payout"`
	ResultingBalance int64         `json:"resultingBalance"`
}

// Transition describes one committed state change together with a complete
// snapshot of the session taken at the moment the change was applied.
// Operations that cascade (a final wager dealing the round, the last stand
// running the house hand and settling) return one Transition per stage, in
// apply order. Fields other than Kind and View are set only where they apply.
type Transition struct {
	Kind        TransitionKind
	Participant string
	Card        *Card
	HandValue   int
	Status      TurnStatus
	Wager       int64
	Connected   bool
	Forfeit     *SettlementRecord
	Records     []SettlementRecord
	Winners     []string
	View        SessionView
}

// SessionView is a deep copy of session state, safe to read and serialize
// after the originating operation has returned. The dealer hand is carried in
// full, hole card included; presentation layers consult Dealer.HoleConcealed
// before exposing it.
type SessionView struct {
	ID            string
	Capacity      int
	Phase         Phase
	Participants  []Participant
	Dealer        DealerHand
	TurnCursor    int
	Turn          string
	Winners       []string
	Settlements   []SettlementRecord
	ShoeRemaining int
}

// ParticipantView returns the copied participant with the given id, if seated.
func (v *SessionView) ParticipantView(userID string) (Participant, bool) {
	for i := range v.Participants {
		if v.Participants[i].UserID == userID {
			return v.Participants[i], true
		}
	}
	return Participant{}, false
}
