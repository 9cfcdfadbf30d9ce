package ports

import "context"

// WalletUpdate represents a single chip-balance change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for the persistent chip wallet. Tables
// play against in-memory balances; the wallet is read when a participant sits
// down and written when a round's settlement is mirrored back.
type EconomyPort interface {
	// GetBalance retrieves the current chip balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes atomically.
	// Used to mirror a settled round's net results and mid-round forfeitures.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
