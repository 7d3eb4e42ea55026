package purchase

import "context"

type Repository interface {
	Create(ctx context.Context, userID, productID int, destination string, amount int64, refID string) (*Purchase, error)
	GetByID(ctx context.Context, id int) (*Purchase, error)
	ListByUser(ctx context.Context, userID int, limit, offset int) ([]PurchaseWithProduct, error)
	ListSubmitted(ctx context.Context, limit int) ([]Purchase, error)
	// MarkSubmitted moves a created purchase to submitted, recording the
	// provider reference.
	MarkSubmitted(ctx context.Context, id int, refID string) (*Purchase, error)
	// MarkSuccess finalizes a purchase, attaching the serial number. The
	// transition is guarded: an already terminal purchase is returned
	// unchanged.
	MarkSuccess(ctx context.Context, id int, serialNumber string) (*Purchase, error)
	// FailWithRefund credits the purchase amount back to the user and
	// marks the purchase failed, as one critical section. If the purchase
	// is already terminal it does nothing and reports refunded=false, so
	// repeated polls can never refund twice.
	FailWithRefund(ctx context.Context, id int, message string) (p *Purchase, refunded bool, err error)
}
