package catalog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrProductNotFound = errors.New("product not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetCategories(ctx context.Context) ([]Category, error) {
	cats := []Category{}
	err := r.db.SelectContext(ctx, &cats, `SELECT id, name, slug, icon FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *repository) CreateCategory(ctx context.Context, name, slug, icon string) (*Category, error) {
	cat := &Category{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO categories (name, slug, icon)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, slug, icon`,
		name, slug, icon,
	).StructScan(cat)
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (r *repository) GetProducts(ctx context.Context, categoryID *int) ([]Product, error) {
	prods := []Product{}
	if categoryID != nil {
		err := r.db.SelectContext(ctx, &prods,
			`SELECT id, category_id, brand, sub_brand, name, code, price, is_active
			 FROM products
			 WHERE category_id = $1
			 ORDER BY id`, *categoryID)
		return prods, err
	}
	err := r.db.SelectContext(ctx, &prods,
		`SELECT id, category_id, brand, sub_brand, name, code, price, is_active
		 FROM products
		 ORDER BY id`)
	return prods, err
}

func (r *repository) GetProductByID(ctx context.Context, id int) (*Product, error) {
	p := &Product{}
	err := r.db.GetContext(ctx, p,
		`SELECT id, category_id, brand, sub_brand, name, code, price, is_active
		 FROM products
		 WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	created := &Product{}
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO products (category_id, brand, sub_brand, name, code, price, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, category_id, brand, sub_brand, name, code, price, is_active`,
		p.CategoryID, p.Brand, p.SubBrand, p.Name, p.Code, p.Price, p.IsActive,
	).StructScan(created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id int, updates ProductUpdate) (*Product, error) {
	updated := &Product{}
	err := r.db.QueryRowxContext(ctx,
		`UPDATE products SET
		   category_id = COALESCE($1, category_id),
		   brand       = COALESCE($2, brand),
		   sub_brand   = COALESCE($3, sub_brand),
		   name        = COALESCE($4, name),
		   code        = COALESCE($5, code),
		   price       = COALESCE($6, price),
		   is_active   = COALESCE($7, is_active)
		 WHERE id = $8
		 RETURNING id, category_id, brand, sub_brand, name, code, price, is_active`,
		updates.CategoryID, updates.Brand, updates.SubBrand, updates.Name,
		updates.Code, updates.Price, updates.IsActive, id,
	).StructScan(updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
