package repositories

import (
	"context"
	"fmt"

	"cityshops/internal/models"
	"cityshops/pkg/database"

	"github.com/google/uuid"
)

type ShopRepository interface {
	Create(ctx context.Context, shop *models.Shop) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	Update(ctx context.Context, shop *models.Shop) error
	UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ShopFilter) ([]*models.Shop, error)
	IsOwnedBy(ctx context.Context, shopID, ownerID uuid.UUID) (bool, error)
}

type shopRepo struct {
	db database.DBTX
}

func NewShopRepo(db database.DBTX) ShopRepository {
	return &shopRepo{db: db}
}

const shopColumns = `id, owner_id, name, description, category_id, address, phone, email, image_url, is_active, created_at, updated_at`

func scanShop(row interface{ Scan(dest ...any) error }) (*models.Shop, error) {
	shop := &models.Shop{}
	err := row.Scan(&shop.ID, &shop.OwnerID, &shop.Name, &shop.Description, &shop.CategoryID, &shop.Address,
		&shop.Phone, &shop.Email, &shop.ImageURL, &shop.IsActive, &shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return shop, nil
}

func (r *shopRepo) Create(ctx context.Context, shop *models.Shop) error {
	query := `
		INSERT INTO shops (id, owner_id, name, description, category_id, address, phone, email, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	return r.db.QueryRow(ctx, query, shop.ID, shop.OwnerID, shop.Name, shop.Description, shop.CategoryID,
		shop.Address, shop.Phone, shop.Email, shop.ImageURL, shop.IsActive).Scan(&shop.CreatedAt, &shop.UpdatedAt)
}

func (r *shopRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE id = $1`
	return scanShop(r.db.QueryRow(ctx, query, id))
}

func (r *shopRepo) Update(ctx context.Context, shop *models.Shop) error {
	query := `
		UPDATE shops
		SET name = $1, description = $2, category_id = $3, address = $4, phone = $5, email = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, shop.Name, shop.Description, shop.CategoryID, shop.Address, shop.Phone,
		shop.Email, shop.IsActive, shop.ID).Scan(&shop.UpdatedAt)
	return notFound(err)
}

func (r *shopRepo) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	tag, err := r.db.Exec(ctx, `UPDATE shops SET image_url = $1, updated_at = NOW() WHERE id = $2`, imageURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *shopRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shops WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *shopRepo) List(ctx context.Context, filter *models.ShopFilter) ([]*models.Shop, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE 1=1`
	args := []interface{}{}
	conditionCount := 0

	if filter.CategoryID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND category_id = $%d`, conditionCount)
		args = append(args, *filter.CategoryID)
	}
	if filter.OwnerID != nil {
		conditionCount++
		query += fmt.Sprintf(` AND owner_id = $%d`, conditionCount)
		args = append(args, *filter.OwnerID)
	}
	if filter.ActiveOnly {
		query += ` AND is_active`
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shops := []*models.Shop{}
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, err
		}
		shops = append(shops, shop)
	}
	return shops, rows.Err()
}

func (r *shopRepo) IsOwnedBy(ctx context.Context, shopID, ownerID uuid.UUID) (bool, error) {
	var owned bool
	query := `SELECT EXISTS (SELECT 1 FROM shops WHERE id = $1 AND owner_id = $2)`
	if err := r.db.QueryRow(ctx, query, shopID, ownerID).Scan(&owned); err != nil {
		return false, err
	}
	return owned, nil
}
