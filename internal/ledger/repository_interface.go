package ledger

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error)
	// Adjust applies a signed delta to the user's balance inside its own
	// transaction and returns the new balance. A delta that would drive
	// the balance negative fails with ErrInsufficientBalance and leaves
	// the wallet untouched.
	Adjust(ctx context.Context, userID int, delta int64, entryType, reference string) (int64, error)
	// AdjustInTx is Adjust running on a caller-owned transaction, for
	// operations that must move money and transition another row as one
	// critical section.
	AdjustInTx(ctx context.Context, tx *sqlx.Tx, userID int, delta int64, entryType, reference string) (int64, error)
	SetBalance(ctx context.Context, userID int, balance int64) (int64, error)
	GetEntries(ctx context.Context, userID int, limit, offset int) ([]Entry, error)
}
