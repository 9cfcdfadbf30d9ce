// Package stake validates wagers and computes settlement payouts. It is a
// leaf package: pure functions over chip amounts, no game state.
package stake

import (
	"errors"
	"math"
)

// Outcome classifies a participant's result for one round.
type Outcome string

const (
	// OutcomeBlackjack is a win with a dealt two-card 21.
	OutcomeBlackjack Outcome = "blackjack"
	// OutcomeWin is an ordinary win against the house.
	OutcomeWin Outcome = "win"
	// OutcomePush ties the house; the wager is returned.
	OutcomePush Outcome = "push"
	// OutcomeLose forfeits the wager.
	OutcomeLose Outcome = "lose"
	// OutcomeAbandoned marks a wager forfeited by leaving mid-round.
	OutcomeAbandoned Outcome = "abandoned"
)

// Wager validation failures, reported in check order.
var (
	ErrNotANumber          = errors.New("wager is not a finite number")
	ErrBelowMinimum        = errors.New("wager is below the table minimum")
	ErrInsufficientBalance = errors.New("wager exceeds balance")
	ErrInvalidDenomination = errors.New("wager is not payable in chip denominations")
)

// Denominations is the fixed set of chip values a wager must be payable in.
var Denominations = []int64{1, 5, 25, 100, 500, 1000, 5000}

// DefaultStartingBalance is the bankroll a participant is seated with when
// no configured amount applies.
const DefaultStartingBalance int64 = 1000

// MinimumWager is the table minimum in chips.
const MinimumWager int64 = 1

// ValidateWager checks a requested amount against a participant's balance and
// returns the normalized chip count. Checks run in a fixed order and the
// first failure wins: NotANumber, BelowMinimum, InsufficientBalance,
// InvalidDenomination.
func ValidateWager(amount float64, balance int64) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrNotANumber
	}
	if amount < float64(MinimumWager) {
		return 0, ErrBelowMinimum
	}
	if amount > float64(balance) {
		return 0, ErrInsufficientBalance
	}
	if amount != math.Trunc(amount) {
		return 0, ErrInvalidDenomination
	}
	wager := int64(amount)
	if !Representable(wager) {
		return 0, ErrInvalidDenomination
	}
	return wager, nil
}

// Representable reports whether an amount can be paid as a non-negative
// integer combination of Denominations, via unbounded coin-change
// reachability. Zero is vacuously representable.
func Representable(amount int64) bool {
	if amount < 0 {
		return false
	}
	if amount == 0 {
		return true
	}
	reach := make([]bool, amount+1)
	reach[0] = true
	for _, d := range Denominations {
		for v := d; v <= amount; v++ {
			if reach[v-d] {
				reach[v] = true
			}
		}
	}
	return reach[amount]
}

// Payout returns the chips owed for a settled wager, wager return included:
// 2.5x for a blackjack, 2x for a win, 1x for a push, 0 otherwise. A blackjack
// on an odd wager floors the half chip. Pure: no mutation, stable for equal
// inputs.
func Payout(wager int64, outcome Outcome) int64 {
	if wager < 0 {
		return 0
	}
	switch outcome {
	case OutcomeBlackjack:
		return wager * 5 / 2
	case OutcomeWin:
		return wager * 2
	case OutcomePush:
		return wager
	default:
		return 0
	}
}
