package nakama

import (
	"context"
	"fmt"

	"chessarena/internal/ports"
)

// RewardCurrency is the wallet key kill rewards are credited to.
const RewardCurrency = "coins"

// WalletModule is the subset of runtime.NakamaModule the economy adapter needs.
type WalletModule interface {
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
type NakamaEconomyAdapter struct {
	nk WalletModule
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk WalletModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{nk: nk}
}

// UpdateBalances applies multiple wallet changes.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}

		changes := map[string]int64{
			RewardCurrency: update.Amount,
		}

		if _, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true); err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", update.UserID, err)
		}
	}
	return nil
}
