package ports

import "context"

// BankrollPort grants the starting chip bankroll at most once per user.
type BankrollPort interface {
	// GrantStartingBankrollOnce attempts to grant the one-time starting
	// bankroll. Returns granted=false when the grant already happened.
	GrantStartingBankrollOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
