package ledger

import "time"

type Wallet struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	Currency  string    `db:"currency" json:"currency"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is one line of the wallet journal. Amount is signed: debits are
// negative, credits positive. BalanceAfter is the wallet balance as of
// this entry, recorded inside the same transaction that moved it.
type Entry struct {
	ID           int       `db:"id" json:"id"`
	WalletID     int       `db:"wallet_id" json:"wallet_id"`
	Amount       int64     `db:"amount" json:"amount"`
	Type         string    `db:"type" json:"type"` // purchase_debit, purchase_refund, topup_credit, admin_adjust
	Reference    string    `db:"reference" json:"reference"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const (
	EntryPurchaseDebit  = "purchase_debit"
	EntryPurchaseRefund = "purchase_refund"
	EntryTopupCredit    = "topup_credit"
	EntryAdminAdjust    = "admin_adjust"
)
