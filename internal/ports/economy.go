package ports

import "context"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort defines the interface for crediting match rewards.
type EconomyPort interface {
	// UpdateBalances applies multiple wallet changes. Zero amounts are skipped.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
