package repositories

import (
	"context"
	"fmt"

	"cityshops/internal/models"
	"cityshops/pkg/database"

	"github.com/google/uuid"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, order *models.Order) error
}

type orderRepo struct {
	db database.DBTX
}

func NewOrderRepo(db database.DBTX) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, customer_id, shop_id, total_amount, status, delivery_address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, order.ID, order.CustomerID, order.ShopID, order.TotalAmount, string(order.Status),
		order.DeliveryAddress, order.Notes).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	query := `
		SELECT id, customer_id, shop_id, total_amount, status, delivery_address, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&order.ID, &order.CustomerID, &order.ShopID, &order.TotalAmount,
		&order.Status, &order.DeliveryAddress, &order.Notes, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return order, nil
}

// List applies the filter's scope and returns newest orders first.
func (r *orderRepo) List(ctx context.Context, filter *models.OrderFilter) ([]*models.Order, error) {
	queryBase := `
		SELECT o.id, o.customer_id, o.shop_id, o.total_amount, o.status, o.delivery_address, o.notes, o.created_at, o.updated_at
		FROM orders o
		WHERE 1=1
	`
	args := []interface{}{}
	conditionCount := 0

	if filter.CustomerID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND o.customer_id = $%d`, conditionCount)
		args = append(args, *filter.CustomerID)
	}

	// Owner scope
	if filter.OwnerID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM shops s WHERE s.id = o.shop_id AND s.owner_id = $%d)`, conditionCount)
		args = append(args, *filter.OwnerID)
	}

	if filter.ShopID != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND o.shop_id = $%d`, conditionCount)
		args = append(args, *filter.ShopID)
	}

	if filter.Status != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND o.status = $%d`, conditionCount)
		args = append(args, string(*filter.Status))
	}

	queryBase += fmt.Sprintf(` ORDER BY o.created_at DESC, o.id LIMIT $%d OFFSET $%d`, conditionCount+1, conditionCount+2)
	args = append(args, filter.Limit, filter.Skip)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.ShopID, &order.TotalAmount, &order.Status,
			&order.DeliveryAddress, &order.Notes, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, string(order.Status), order.ID).Scan(&order.UpdatedAt)
	return notFound(err)
}
