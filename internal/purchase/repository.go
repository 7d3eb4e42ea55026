package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MamzStore/ppobb/internal/ledger"

	"github.com/jmoiron/sqlx"
)

var ErrPurchaseNotFound = errors.New("purchase not found")

const purchaseColumns = `id, user_id, product_id, destination, amount, status, ref_id, serial_number, message, created_at, updated_at`

type repository struct {
	db     *sqlx.DB
	ledger ledger.Repository
}

func NewRepository(db *sqlx.DB, ledgerRepo ledger.Repository) Repository {
	return &repository{db: db, ledger: ledgerRepo}
}

func (r *repository) Create(ctx context.Context, userID, productID int, destination string, amount int64, refID string) (*Purchase, error) {
	p := &Purchase{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO purchases (user_id, product_id, destination, amount, status, ref_id)
		 VALUES ($1, $2, $3, $4, 'created', $5)
		 RETURNING `+purchaseColumns,
		userID, productID, destination, amount, refID,
	).StructScan(p)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Purchase, error) {
	p := &Purchase{}
	err := r.db.GetContext(ctx, p,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int, limit, offset int) ([]PurchaseWithProduct, error) {
	if limit <= 0 {
		limit = 50
	}

	list := []PurchaseWithProduct{}
	err := r.db.SelectContext(ctx, &list, `
		SELECT p.id, p.user_id, p.product_id, p.destination, p.amount, p.status,
		       p.ref_id, p.serial_number, p.message, p.created_at, p.updated_at,
		       pr.name AS product_name, pr.code AS product_code
		FROM purchases p
		JOIN products pr ON pr.id = p.product_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) ListSubmitted(ctx context.Context, limit int) ([]Purchase, error) {
	if limit <= 0 {
		limit = 100
	}

	list := []Purchase{}
	err := r.db.SelectContext(ctx, &list,
		`SELECT `+purchaseColumns+` FROM purchases WHERE status = 'submitted' ORDER BY created_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) MarkSubmitted(ctx context.Context, id int, refID string) (*Purchase, error) {
	p := &Purchase{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE purchases
		 SET status = 'submitted', ref_id = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'created'
		 RETURNING `+purchaseColumns,
		refID, id,
	).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) MarkSuccess(ctx context.Context, id int, serialNumber string) (*Purchase, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := lockPurchase(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if p.IsTerminal() {
		return p, tx.Commit()
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE purchases
		 SET status = 'success', serial_number = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+purchaseColumns,
		serialNumber, id,
	).StructScan(p)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// FailWithRefund is the idempotency boundary of the refund path: the
// purchase row lock covers the terminal check, the wallet credit and the
// status patch, so a concurrent duplicate poll blocks and then sees a
// terminal row.
func (r *repository) FailWithRefund(ctx context.Context, id int, message string) (*Purchase, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	p, err := lockPurchase(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	if p.IsTerminal() {
		return p, false, tx.Commit()
	}

	reference := fmt.Sprintf("purchase:%d", p.ID)
	if _, err := r.ledger.AdjustInTx(ctx, tx, p.UserID, p.Amount, ledger.EntryPurchaseRefund, reference); err != nil {
		return nil, false, err
	}

	err = tx.QueryRowxContext(ctx,
		`UPDATE purchases
		 SET status = 'failed', message = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+purchaseColumns,
		message, id,
	).StructScan(p)
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func lockPurchase(ctx context.Context, tx *sqlx.Tx, id int) (*Purchase, error) {
	p := &Purchase{}
	err := tx.QueryRowxContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id,
	).StructScan(p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return p, nil
}
