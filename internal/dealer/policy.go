// Package dealer holds the automated house policy: a pure decision function
// over the house hand value, free of randomness and lookahead.
package dealer

// Action is a house move.
type Action string

const (
	ActionHit   Action = "hit"
	ActionStand Action = "stand"
)

// Policy decides the house's next move from its current best hand value.
// Implementations must be pure: same value in, same action out.
type Policy interface {
	NextAction(handValue int) Action
}

// DefaultStand is the classic house rule: draw to 16, stand on 17.
const DefaultStand = 17

// Threshold draws while the hand value is below Stand.
type Threshold struct {
	Stand int
}

// NewThreshold returns the default fixed-threshold policy.
func NewThreshold() Threshold {
	return Threshold{Stand: DefaultStand}
}

// NextAction implements Policy.
func (t Threshold) NextAction(handValue int) Action {
	if handValue < t.Stand {
		return ActionHit
	}
	return ActionStand
}
