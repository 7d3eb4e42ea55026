package purchase

import "time"

const (
	StatusCreated   = "created"
	StatusSubmitted = "submitted"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
)

// Purchase is one storefront order. Amount is the product price at the
// moment of purchase; later price edits never touch it. RefID is the
// reference shared with the fulfillment provider, SerialNumber arrives
// only on success.
type Purchase struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"userId"`
	ProductID    int       `db:"product_id" json:"productId"`
	Destination  string    `db:"destination" json:"destination"`
	Amount       int64     `db:"amount" json:"amount"`
	Status       string    `db:"status" json:"status"`
	RefID        *string   `db:"ref_id" json:"refId"`
	SerialNumber *string   `db:"serial_number" json:"serialNumber"`
	Message      *string   `db:"message" json:"message"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *Purchase) IsTerminal() bool {
	return p.Status == StatusSuccess || p.Status == StatusFailed
}

// PurchaseWithProduct joins the product snapshot for history listings.
type PurchaseWithProduct struct {
	Purchase
	ProductName string `db:"product_name" json:"productName"`
	ProductCode string `db:"product_code" json:"productCode"`
}
