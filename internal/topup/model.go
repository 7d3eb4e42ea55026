package topup

import "time"

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusExpired = "expired"
)

// Topup is one balance top-up attempt. UniqueAmount is the requested
// amount plus a small offset chosen by the payment provider so a bank
// deposit can be matched back to this row even when many users pick the
// same round number.
type Topup struct {
	ID            int        `db:"id" json:"id"`
	UserID        int        `db:"user_id" json:"userId"`
	Amount        int64      `db:"amount" json:"amount"`
	UniqueAmount  *int64     `db:"unique_amount" json:"uniqueAmount"`
	RefID         string     `db:"ref_id" json:"refId"`
	ProviderTrxID *string    `db:"provider_trx_id" json:"providerTrxId"`
	QRString      *string    `db:"qr_string" json:"qrString"`
	Status        string     `db:"status" json:"status"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expiresAt"`
	PaidAt        *time.Time `db:"paid_at" json:"paidAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

func (t *Topup) IsTerminal() bool {
	return t.Status == StatusPaid || t.Status == StatusExpired
}
