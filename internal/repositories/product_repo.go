package repositories

import (
	"context"
	"fmt"

	"cityshops/internal/models"
	"cityshops/pkg/database"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	// LockByIDs reads the products with FOR UPDATE, in ascending id order.
	// It must run inside a transaction.
	LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	// DecrementStock subtracts quantity only if enough stock remains;
	// otherwise it returns ErrStockConflict.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	ListLowStock(ctx context.Context, threshold int) ([]*models.LowStockProduct, error)
}

type productRepo struct {
	db database.DBTX
}

func NewProductRepo(db database.DBTX) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, shop_id, category_id, name, description, price, image_url, stock_quantity, is_available, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.ShopID, &product.CategoryID, &product.Name, &product.Description,
		&product.Price, &product.ImageURL, &product.StockQuantity, &product.IsAvailable, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, shop_id, category_id, name, description, price, image_url, stock_quantity, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, product.ID, product.ShopID, product.CategoryID, product.Name, product.Description,
		product.Price, product.ImageURL, product.StockQuantity, product.IsAvailable).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4, stock_quantity = $5, is_available = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, product.CategoryID, product.Name, product.Description, product.Price,
		product.StockQuantity, product.IsAvailable, product.ID).Scan(&product.UpdatedAt)
	return notFound(err)
}

func (r *productRepo) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []interface{}{}
	conditionCount := 0

	if filter.ShopID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND shop_id = $%d`, conditionCount)
		args = append(args, *filter.ShopID)
	}
	if filter.CategoryID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND category_id = $%d`, conditionCount)
		args = append(args, *filter.CategoryID)
	}
	if filter.AvailableOnly {
		query += ` AND is_available`
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) LockByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}
	defer rows.Close()

	products := make(map[uuid.UUID]*models.Product, len(ids))
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	return products, rows.Err()
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStockConflict
	}
	return nil
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold int) ([]*models.LowStockProduct, error) {
	query := `
		SELECT p.id, p.name, s.id, s.name, p.stock_quantity
		FROM products p
		JOIN shops s ON s.id = p.shop_id
		WHERE p.is_available AND p.stock_quantity <= $1
		ORDER BY s.name, p.stock_quantity, p.name
	`
	rows, err := r.db.Query(ctx, query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.LowStockProduct
	for rows.Next() {
		p := &models.LowStockProduct{}
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.ShopID, &p.ShopName, &p.StockQuantity); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
