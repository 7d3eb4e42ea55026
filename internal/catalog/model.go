package catalog

type Category struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
	Icon string `db:"icon" json:"icon"`
}

// Product is a purchasable SKU. Price is in rupiah and is snapshotted
// into each purchase, so editing it never rewrites history.
type Product struct {
	ID         int     `db:"id" json:"id"`
	CategoryID int     `db:"category_id" json:"categoryId"`
	Brand      *string `db:"brand" json:"brand"`
	SubBrand   *string `db:"sub_brand" json:"subBrand"`
	Name       string  `db:"name" json:"name"`
	Code       string  `db:"code" json:"code"`
	Price      int64   `db:"price" json:"price"`
	IsActive   bool    `db:"is_active" json:"isActive"`
}
