package domain

// TurnStatus is a participant's standing within the current round.
// Transitions are monotonic inside a round: Idle → Active →
// {Standing | Busted | NaturalWin}; only a round reset returns to Idle.
type TurnStatus string

const (
	// StatusIdle means no round is in progress for this participant.
	StatusIdle TurnStatus = "idle"
	// StatusActive means the participant still has turns to take.
	StatusActive TurnStatus = "active"
	// StatusStanding means the participant finished by standing.
	StatusStanding TurnStatus = "standing"
	// StatusBusted means the participant drew past 21.
	StatusBusted TurnStatus = "busted"
	// StatusNaturalWin means the participant was dealt a two-card 21.
	StatusNaturalWin TurnStatus = "natural"
)

// Finished reports whether the status is terminal for the round.
func (ts TurnStatus) Finished() bool {
	return ts == StatusStanding || ts == StatusBusted || ts == StatusNaturalWin
}

// Participant holds one seated player's state. Identity and balance survive
// round resets; hand, status and wager flags do not. A Participant belongs to
// exactly one Session and is only mutated through that session's operations.
type Participant struct {
	UserID      string
	DisplayName string
	Connected   bool

	Hand   []Card
	Status TurnStatus

	Balance    int64
	Wager      int64
	HasWagered bool
}

// NewParticipant seats a connected participant with the given starting balance.
func NewParticipant(userID, displayName string, balance int64) *Participant {
	return &Participant{
		UserID:      userID,
		DisplayName: displayName,
		Connected:   true,
		Status:      StatusIdle,
		Balance:     balance,
	}
}

// HandValue returns the participant's current best hand value.
func (p *Participant) HandValue() int {
	return HandValue(p.Hand)
}

// resetForRound clears per-round state while preserving identity and balance.
func (p *Participant) resetForRound() {
	p.Hand = nil
	p.Status = StatusIdle
	p.Wager = 0
	p.HasWagered = false
}

// clone returns a deep copy safe to hand outside the session lock.
func (p *Participant) clone() Participant {
	out := *p
	out.Hand = append([]Card(nil), p.Hand...)
	return out
}
