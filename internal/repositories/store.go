package repositories

import (
	"context"
	"errors"
	"fmt"

	"cityshops/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrStockConflict is returned when a guarded stock decrement matches no row.
var ErrStockConflict = errors.New("stock changed concurrently")

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pgErrorCode(err) == "23505"
}

func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == "23503"
}

func IsCheckViolation(err error) bool {
	return pgErrorCode(err) == "23514"
}

// IsSerializationFailure covers serialization failures and detected deadlocks.
func IsSerializationFailure(err error) bool {
	code := pgErrorCode(err)
	return code == "40001" || code == "40P01"
}

// Store groups the repositories bound to one DBTX, either the pool or a
// transaction.
type Store struct {
	Users      UserRepository
	Categories CategoryRepository
	Shops      ShopRepository
	Products   ProductRepository
	Carts      CartRepository
	Orders     OrderRepository
	OrderItems OrderItemRepository
}

func NewStore(db database.DBTX) *Store {
	return &Store{
		Users:      NewUserRepo(db),
		Categories: NewCategoryRepo(db),
		Shops:      NewShopRepo(db),
		Products:   NewProductRepo(db),
		Carts:      NewCartRepo(db),
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
	}
}

// TxManager runs fn against a Store bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise.
type TxManager interface {
	WithTx(ctx context.Context, fn func(store *Store) error) error
}

type pgTxManager struct {
	db database.TxBeginner
}

func NewTxManager(db database.TxBeginner) TxManager {
	return &pgTxManager{db: db}
}

func (m *pgTxManager) WithTx(ctx context.Context, fn func(store *Store) error) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(NewStore(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
