package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blackjack/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	bankrollCollection = "onboarding"
	bankrollKey        = "starting_bankroll_v1"
)

// NakamaBankrollAdapter grants the starting bankroll using Nakama storage and
// wallet updates in one transaction.
type NakamaBankrollAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaBankrollAdapter creates a new bankroll adapter.
func NewNakamaBankrollAdapter(nk runtime.NakamaModule) *NakamaBankrollAdapter {
	return &NakamaBankrollAdapter{nk: nk}
}

// GrantStartingBankrollOnce credits the starting chips and records a marker
// atomically. The conditional storage write makes the grant once-only: a
// second call finds the marker and reports (false, nil).
func (a *NakamaBankrollAdapter) GrantStartingBankrollOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive")
	}

	marker := map[string]interface{}{
		"amount":     amount,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(marker)
	if err != nil {
		return false, fmt.Errorf("failed to marshal bankroll marker: %w", err)
	}

	storageWrites := []*runtime.StorageWrite{
		{
			Collection:      bankrollCollection,
			Key:             bankrollKey,
			UserID:          userID,
			Value:           string(value),
			Version:         "*",
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	walletUpdates := []*runtime.WalletUpdate{
		{
			UserID:    userID,
			Changeset: map[string]int64{walletChipsKey: amount},
			Metadata:  metadata,
		},
	}

	_, _, err = a.nk.MultiUpdate(ctx, nil, storageWrites, nil, walletUpdates, true)
	if err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant starting bankroll: %w", err)
	}

	return true, nil
}

var _ ports.BankrollPort = (*NakamaBankrollAdapter)(nil)
