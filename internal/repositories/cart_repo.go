package repositories

import (
	"context"
	"fmt"
	"time"

	"cityshops/internal/models"
	"cityshops/pkg/database"

	"github.com/google/uuid"
)

// CartRepository scopes every operation to the owning user.
type CartRepository interface {
	// Upsert adds quantity to the user's entry for the product, creating it if absent.
	Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartEntry, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.CartEntry, error)
	GetByProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartEntry, error)
	UpdateQuantity(ctx context.Context, userID, id uuid.UUID, quantity int) (*models.CartEntry, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) (int64, error)
	ListLines(ctx context.Context, userID uuid.UUID) ([]*models.CartLine, error)
	// ListForShop returns the entries whose product belongs to shopID, oldest
	// first, and locks them until the surrounding transaction ends.
	ListForShop(ctx context.Context, userID, shopID uuid.UUID) ([]*models.CartEntry, error)
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}

type cartRepo struct {
	db database.DBTX
}

func NewCartRepo(db database.DBTX) CartRepository {
	return &cartRepo{db: db}
}

const cartColumns = `id, user_id, product_id, quantity, created_at, updated_at`

func scanCartEntry(row interface{ Scan(dest ...any) error }) (*models.CartEntry, error) {
	entry := &models.CartEntry{}
	err := row.Scan(&entry.ID, &entry.UserID, &entry.ProductID, &entry.Quantity, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return entry, nil
}

func (r *cartRepo) Upsert(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartEntry, error) {
	query := `
		INSERT INTO carts (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = carts.quantity + EXCLUDED.quantity, updated_at = NOW()
		RETURNING ` + cartColumns
	entry, err := scanCartEntry(r.db.QueryRow(ctx, query, uuid.New(), userID, productID, quantity))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart entry: %w", err)
	}
	return entry, nil
}

func (r *cartRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.CartEntry, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE id = $1 AND user_id = $2`
	return scanCartEntry(r.db.QueryRow(ctx, query, id, userID))
}

func (r *cartRepo) GetByProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartEntry, error) {
	query := `SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND product_id = $2`
	return scanCartEntry(r.db.QueryRow(ctx, query, userID, productID))
}

func (r *cartRepo) UpdateQuantity(ctx context.Context, userID, id uuid.UUID, quantity int) (*models.CartEntry, error) {
	query := `
		UPDATE carts
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + cartColumns
	return scanCartEntry(r.db.QueryRow(ctx, query, quantity, id, userID))
}

func (r *cartRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *cartRepo) ListLines(ctx context.Context, userID uuid.UUID) ([]*models.CartLine, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at,
		       p.name, p.shop_id, p.price, p.is_available, p.stock_quantity
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*models.CartLine{}
	for rows.Next() {
		line := &models.CartLine{}
		if err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
			&line.ProductName, &line.ShopID, &line.Price, &line.IsAvailable, &line.AvailableStock); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *cartRepo) ListForShop(ctx context.Context, userID, shopID uuid.UUID) ([]*models.CartEntry, error) {
	query := `
		SELECT c.id, c.user_id, c.product_id, c.quantity, c.created_at, c.updated_at
		FROM carts c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1 AND p.shop_id = $2
		ORDER BY c.created_at, c.id
		FOR UPDATE OF c
	`
	rows, err := r.db.Query(ctx, query, userID, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.CartEntry
	for rows.Next() {
		entry, err := scanCartEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *cartRepo) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *cartRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE updated_at < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
