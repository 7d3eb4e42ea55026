package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrWalletNotFound      = errors.New("wallet not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreateWallet(ctx context.Context, userID int) (*Wallet, error) {
	w := &Wallet{}
	err := r.db.GetContext(ctx, w, `SELECT * FROM wallets WHERE user_id = $1`, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO wallets (user_id)
		 VALUES ($1)
		 RETURNING id, user_id, balance, currency, created_at, updated_at`,
		userID,
	).StructScan(w)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *repository) Adjust(ctx context.Context, userID int, delta int64, entryType, reference string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := r.AdjustInTx(ctx, tx, userID, delta, entryType, reference)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// AdjustInTx locks the wallet row, checks the resulting balance and writes
// both the balance update and the journal entry on the caller's transaction.
// The read-check-write must stay under the row lock; callers never compute
// balances themselves.
func (r *repository) AdjustInTx(ctx context.Context, tx *sqlx.Tx, userID int, delta int64, entryType, reference string) (int64, error) {
	var w Wallet
	err := tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO wallets (user_id)
			 VALUES ($1)
			 RETURNING id, user_id, balance, currency, created_at, updated_at`,
			userID,
		).StructScan(&w)
		if err != nil {
			return 0, err
		}
	}

	newBalance := w.Balance + delta
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		newBalance, w.ID,
	)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (wallet_id, amount, type, reference, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, delta, entryType, reference, newBalance,
	)
	if err != nil {
		return 0, err
	}

	return newBalance, nil
}

func (r *repository) SetBalance(ctx context.Context, userID int, balance int64) (int64, error) {
	if balance < 0 {
		return 0, ErrInsufficientBalance
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var w Wallet
	err = tx.QueryRowxContext(ctx,
		`SELECT id, user_id, balance, currency, created_at, updated_at
		 FROM wallets
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&w)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		err = tx.QueryRowxContext(ctx,
			`INSERT INTO wallets (user_id)
			 VALUES ($1)
			 RETURNING id, user_id, balance, currency, created_at, updated_at`,
			userID,
		).StructScan(&w)
		if err != nil {
			return 0, err
		}
	}

	delta := balance - w.Balance

	_, err = tx.ExecContext(ctx,
		`UPDATE wallets
		 SET balance = $1, updated_at = NOW()
		 WHERE id = $2`,
		balance, w.ID,
	)
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (wallet_id, amount, type, reference, balance_after)
		 VALUES ($1, $2, $3, $4, $5)`,
		w.ID, delta, EntryAdminAdjust, "set", balance,
	)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *repository) GetEntries(ctx context.Context, userID int, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	var walletID int
	err := r.db.GetContext(ctx, &walletID, `SELECT id FROM wallets WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Entry{}, nil
		}
		return nil, err
	}

	var entries []Entry
	err = r.db.SelectContext(ctx, &entries, `
		SELECT id, wallet_id, amount, type, reference, balance_after, created_at
		FROM ledger_entries
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
