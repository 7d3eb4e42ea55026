package topup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MamzStore/ppobb/internal/ledger"

	"github.com/jmoiron/sqlx"
)

var ErrTopupNotFound = errors.New("topup not found")

const topupColumns = `id, user_id, amount, unique_amount, ref_id, provider_trx_id, qr_string, status, expires_at, paid_at, created_at`

type repository struct {
	db     *sqlx.DB
	ledger ledger.Repository
}

func NewRepository(db *sqlx.DB, ledgerRepo ledger.Repository) Repository {
	return &repository{db: db, ledger: ledgerRepo}
}

func (r *repository) Create(ctx context.Context, userID int, amount int64, refID string) (*Topup, error) {
	t := &Topup{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO topups (user_id, amount, ref_id, status)
		 VALUES ($1, $2, $3, 'pending')
		 RETURNING `+topupColumns,
		userID, amount, refID,
	).StructScan(t)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repository) AttachPaymentDetails(ctx context.Context, id int, providerTrxID string, uniqueAmount int64, qrString string, expiresAt time.Time) (*Topup, error) {
	t := &Topup{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE topups
		 SET provider_trx_id = $1, unique_amount = $2, qr_string = $3, expires_at = $4
		 WHERE id = $5
		 RETURNING `+topupColumns,
		providerTrxID, uniqueAmount, qrString, expiresAt, id,
	).StructScan(t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Topup, error) {
	t := &Topup{}
	err := r.db.GetContext(ctx, t, `SELECT `+topupColumns+` FROM topups WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) GetByRefID(ctx context.Context, refID string) (*Topup, error) {
	t := &Topup{}
	err := r.db.GetContext(ctx, t, `SELECT `+topupColumns+` FROM topups WHERE ref_id = $1`, refID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopupNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]Topup, error) {
	if limit <= 0 {
		limit = 50
	}

	list := []Topup{}
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+topupColumns+` FROM topups
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) MarkExpired(ctx context.Context, id int) (*Topup, error) {
	t := &Topup{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE topups
		 SET status = 'expired'
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+topupColumns,
		id,
	).StructScan(t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already terminal; return the current row.
			return r.GetByID(ctx, id)
		}
		return nil, err
	}
	return t, nil
}

// MarkPaidAndCredit is the at-most-once boundary for webhook credits.
// The row lock covers the pending check, the status patch and the wallet
// credit, so a duplicate delivery either blocks and then sees a paid row,
// or sees it immediately. Either way the credit happens once.
func (r *repository) MarkPaidAndCredit(ctx context.Context, refID, providerTrxID string) (*Topup, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	t := &Topup{}
	err = tx.QueryRowxContext(ctx,
		`SELECT `+topupColumns+` FROM topups WHERE ref_id = $1 FOR UPDATE`, refID,
	).StructScan(t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrTopupNotFound
		}
		return nil, false, err
	}

	if t.Status != StatusPending {
		return t, false, tx.Commit()
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE topups
		 SET status = 'paid', paid_at = NOW(), provider_trx_id = COALESCE($1, provider_trx_id)
		 WHERE id = $2
		 RETURNING `+topupColumns,
		nullIfEmpty(providerTrxID), t.ID,
	).StructScan(t)
	if err != nil {
		return nil, false, err
	}

	reference := fmt.Sprintf("topup:%s", refID)
	if _, err := r.ledger.AdjustInTx(ctx, tx, t.UserID, t.Amount, ledger.EntryTopupCredit, reference); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
