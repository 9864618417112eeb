// Package testhelpers provides a real PostgreSQL database for integration
// tests. Tests that use it are skipped unless TEST_DATABASE_URL is set.
package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"cityshops/internal/models"
	"cityshops/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. It skips the test when no database is configured.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, carts, products, shops, categories, users CASCADE`); err != nil {
		pool.Close()
		t.Fatalf("Failed to reset test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Cleanup: pool.Close,
	}
}

// SetupTestUser inserts a user with the given role and returns it.
func SetupTestUser(t *testing.T, db *TestDB, role models.Role) *models.User {
	t.Helper()

	id := uuid.New()
	user := &models.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		Username:     "user-" + id.String()[:8],
		PasswordHash: "not-a-real-hash",
		Role:         role,
	}
	query := `
		INSERT INTO users (id, email, username, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := db.Pool.Exec(context.Background(), query, user.ID, user.Email, user.Username, user.PasswordHash, user.Role); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SetupTestShop inserts an active shop owned by ownerID.
func SetupTestShop(t *testing.T, db *TestDB, ownerID uuid.UUID) *models.Shop {
	t.Helper()

	shop := &models.Shop{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Name:     "Test Shop",
		Address:  "1 Test Street",
		IsActive: true,
	}
	query := `
		INSERT INTO shops (id, owner_id, name, address, is_active)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := db.Pool.Exec(context.Background(), query, shop.ID, shop.OwnerID, shop.Name, shop.Address, shop.IsActive); err != nil {
		t.Fatalf("Failed to create test shop: %v", err)
	}
	return shop
}

// SetupTestProduct inserts an available product into shopID.
func SetupTestProduct(t *testing.T, db *TestDB, shopID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()

	now := time.Now()
	product := &models.Product{
		ID:            uuid.New(),
		ShopID:        shopID,
		Name:          "Test Product",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	query := `
		INSERT INTO products (id, shop_id, name, price, stock_quantity, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		product.ID, product.ShopID, product.Name, product.Price,
		product.StockQuantity, product.IsAvailable, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// SetupTestCartEntry puts quantity units of productID in userID's cart.
func SetupTestCartEntry(t *testing.T, db *TestDB, userID, productID uuid.UUID, quantity int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	query := `INSERT INTO carts (id, user_id, product_id, quantity) VALUES ($1, $2, $3, $4)`
	if _, err := db.Pool.Exec(context.Background(), query, id, userID, productID, quantity); err != nil {
		t.Fatalf("Failed to create test cart entry: %v", err)
	}
	return id
}

// StockOf reads the current stock of a product.
func StockOf(t *testing.T, db *TestDB, productID uuid.UUID) int {
	t.Helper()

	var stock int
	if err := db.Pool.QueryRow(context.Background(), `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("Failed to read stock: %v", err)
	}
	return stock
}
