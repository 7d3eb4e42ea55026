package catalog

import "context"

type Repository interface {
	GetCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, name, slug, icon string) (*Category, error)
	GetProducts(ctx context.Context, categoryID *int) ([]Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	UpdateProduct(ctx context.Context, id int, updates ProductUpdate) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

// ProductUpdate carries the admin-editable fields; nil means unchanged.
type ProductUpdate struct {
	CategoryID *int
	Brand      *string
	SubBrand   *string
	Name       *string
	Code       *string
	Price      *int64
	IsActive   *bool
}
