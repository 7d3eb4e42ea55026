package topup

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID int, amount int64, refID string) (*Topup, error)
	AttachPaymentDetails(ctx context.Context, id int, providerTrxID string, uniqueAmount int64, qrString string, expiresAt time.Time) (*Topup, error)
	GetByID(ctx context.Context, id int) (*Topup, error)
	GetByRefID(ctx context.Context, refID string) (*Topup, error)
	ListByUser(ctx context.Context, userID int, limit, offset int) ([]Topup, error)
	// MarkExpired transitions a pending topup to expired; terminal rows
	// are left alone.
	MarkExpired(ctx context.Context, id int) (*Topup, error)
	// MarkPaidAndCredit locks the topup row, re-checks that it is still
	// pending, marks it paid and credits the user's wallet, all in one
	// transaction. credited=false means the row was already terminal and
	// nothing moved.
	MarkPaidAndCredit(ctx context.Context, refID, providerTrxID string) (t *Topup, credited bool, err error)
}
