package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"cityshops/internal/common"
	"cityshops/internal/models"
	"cityshops/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// stringPtrArg matches a non-nil *string argument by value.
type stringPtrArg string

func (a stringPtrArg) Match(v interface{}) bool {
	p, ok := v.(*string)
	return ok && p != nil && *p == string(a)
}

// decimalArg matches a decimal.Decimal argument by value.
type decimalArg string

func (d decimalArg) Match(v interface{}) bool {
	dec, ok := v.(decimal.Decimal)
	return ok && dec.Equal(decimal.RequireFromString(string(d)))
}

var (
	shopRowColumns = []string{
		"id", "owner_id", "name", "description", "category_id", "address", "phone", "email", "image_url",
		"is_active", "created_at", "updated_at",
	}
	cartRowColumns    = []string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}
	productRowColumns = []string{
		"id", "shop_id", "category_id", "name", "description", "price", "image_url",
		"stock_quantity", "is_available", "created_at", "updated_at",
	}
	orderRowColumns = []string{
		"id", "customer_id", "shop_id", "total_amount", "status", "delivery_address", "notes", "created_at", "updated_at",
	}
)

type OrderServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	cache   *MockCacheService
	service OrderServiceInterface
	ctx     context.Context

	customer models.Principal
	owner    models.Principal
	shopID   uuid.UUID

	// widgetID sorts after gadgetID, so locks are taken gadget first.
	widgetID uuid.UUID
	gadgetID uuid.UUID
	entry1   uuid.UUID
	entry2   uuid.UUID
}

func (suite *OrderServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.cache = new(MockCacheService)
	suite.service = NewOrderService(repositories.NewTxManager(mock), repositories.NewStore(mock), suite.cache)
	suite.ctx = context.Background()

	suite.customer = models.Principal{UserID: uuid.New(), Role: models.RoleCustomer}
	suite.owner = models.Principal{UserID: uuid.New(), Role: models.RoleShopOwner}
	suite.shopID = uuid.New()
	suite.widgetID = uuid.MustParse("ffffffff-0000-4000-8000-000000000001")
	suite.gadgetID = uuid.MustParse("00000000-0000-4000-8000-000000000002")
	suite.entry1 = uuid.New()
	suite.entry2 = uuid.New()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.cache.AssertExpectations(suite.T())
	suite.mock.Close()
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) expectShop() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT (.+) FROM shops WHERE id = \$1`).
		WithArgs(suite.shopID).
		WillReturnRows(pgxmock.NewRows(shopRowColumns).
			AddRow(suite.shopID, suite.owner.UserID, "Corner Store", nil, nil, "1 High St", nil, nil, nil, true, now, now))
}

// expectCart returns widget x2 then gadget x1 and locks both rows.
func (suite *OrderServiceTestSuite) expectCart() {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM carts c[\s\S]+p.shop_id = \$2[\s\S]+FOR UPDATE OF c`).
		WithArgs(suite.customer.UserID, suite.shopID).
		WillReturnRows(pgxmock.NewRows(cartRowColumns).
			AddRow(suite.entry1, suite.customer.UserID, suite.widgetID, 2, now, now).
			AddRow(suite.entry2, suite.customer.UserID, suite.gadgetID, 1, now, now))
}

func (suite *OrderServiceTestSuite) expectLock(widgetStock, gadgetStock int, widgetAvailable bool) {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM products[\s\S]+FOR UPDATE`).
		WithArgs([]uuid.UUID{suite.gadgetID, suite.widgetID}).
		WillReturnRows(pgxmock.NewRows(productRowColumns).
			AddRow(suite.gadgetID, suite.shopID, nil, "Gadget", nil, decimal.RequireFromString("29.99"), nil, gadgetStock, true, now, now).
			AddRow(suite.widgetID, suite.shopID, nil, "Widget", nil, decimal.RequireFromString("19.99"), nil, widgetStock, widgetAvailable, now, now))
}

func (suite *OrderServiceTestSuite) expectOrderInserts() {
	suite.expectOrderInsertsWithNotes(pgxmock.AnyArg())
}

func (suite *OrderServiceTestSuite) expectOrderInsertsWithNotes(notes interface{}) {
	now := time.Now()
	suite.mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs(pgxmock.AnyArg(), suite.customer.UserID, suite.shopID, decimalArg("69.97"), "pending", "5 Elm St", notes).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), suite.widgetID, 2, decimalArg("19.99")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`INSERT INTO order_items`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), suite.gadgetID, 1, decimalArg("29.99")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_Success() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, true)
	suite.expectOrderInserts()
	suite.mock.ExpectExec(`UPDATE products[\s\S]+stock_quantity >= \$1`).
		WithArgs(2, suite.widgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE products[\s\S]+stock_quantity >= \$1`).
		WithArgs(1, suite.gadgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs(suite.customer.UserID, []uuid.UUID{suite.entry1, suite.entry2}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectCommit()

	suite.cache.On("DeleteProduct", mock.Anything, suite.widgetID).Return(nil)
	suite.cache.On("DeleteProduct", mock.Anything, suite.gadgetID).Return(nil)

	order, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, " 5 Elm St ", nil)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusPending, order.Status)
	assert.Equal(suite.T(), "5 Elm St", order.DeliveryAddress)
	assert.True(suite.T(), decimal.RequireFromString("69.97").Equal(order.TotalAmount))
	require.Len(suite.T(), order.Items, 2)
	assert.Equal(suite.T(), "Widget", order.Items[0].ProductName)
	assert.Equal(suite.T(), 2, order.Items[0].Quantity)
	assert.True(suite.T(), decimal.RequireFromString("19.99").Equal(order.Items[0].Price))
	assert.Equal(suite.T(), "Gadget", order.Items[1].ProductName)
	for _, item := range order.Items {
		assert.Equal(suite.T(), order.ID, item.OrderID)
	}
}

func (suite *OrderServiceTestSuite) expectStockDecrements() {
	suite.mock.ExpectExec(`UPDATE products[\s\S]+stock_quantity >= \$1`).
		WithArgs(2, suite.widgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE products[\s\S]+stock_quantity >= \$1`).
		WithArgs(1, suite.gadgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_NotesStoredVerbatim() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, true)
	suite.expectOrderInsertsWithNotes(stringPtrArg("Tom & Jerry <ring twice>"))
	suite.expectStockDecrements()
	suite.mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs(suite.customer.UserID, []uuid.UUID{suite.entry1, suite.entry2}).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectCommit()

	suite.cache.On("DeleteProduct", mock.Anything, suite.widgetID).Return(nil)
	suite.cache.On("DeleteProduct", mock.Anything, suite.gadgetID).Return(nil)

	notes := "  Tom & Jerry <ring twice> "
	order, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", &notes)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), order.Notes)
	assert.Equal(suite.T(), "Tom & Jerry <ring twice>", *order.Notes)
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_NotesTooLong() {
	notes := strings.Repeat("n", 1001)

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", &notes)

	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

// A second submit that loaded the same cart before the first committed
// finds its rows already consumed and must not create another order.
func (suite *OrderServiceTestSuite) TestPlaceOrder_CartAlreadyConsumedIsConflict() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, true)
	suite.expectOrderInserts()
	suite.expectStockDecrements()
	suite.mock.ExpectExec(`DELETE FROM carts WHERE user_id = \$1 AND id = ANY\(\$2\)`).
		WithArgs(suite.customer.UserID, []uuid.UUID{suite.entry1, suite.entry2}).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectRollback()

	order, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.Nil(suite.T(), order)
	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_TotalTooLargeWritesNothing() {
	now := time.Now()
	maxPrice := decimal.RequireFromString("99999999.99")

	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.mock.ExpectQuery(`FROM carts c[\s\S]+FOR UPDATE OF c`).
		WithArgs(suite.customer.UserID, suite.shopID).
		WillReturnRows(pgxmock.NewRows(cartRowColumns).
			AddRow(suite.entry1, suite.customer.UserID, suite.widgetID, 10000, now, now).
			AddRow(suite.entry2, suite.customer.UserID, suite.gadgetID, 10000, now, now))
	suite.mock.ExpectQuery(`FROM products[\s\S]+FOR UPDATE`).
		WithArgs([]uuid.UUID{suite.gadgetID, suite.widgetID}).
		WillReturnRows(pgxmock.NewRows(productRowColumns).
			AddRow(suite.gadgetID, suite.shopID, nil, "Gadget", nil, maxPrice, nil, 10000, true, now, now).
			AddRow(suite.widgetID, suite.shopID, nil, "Widget", nil, maxPrice, nil, 10000, true, now, now))
	suite.mock.ExpectRollback()

	order, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.Nil(suite.T(), order)
	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_EmptyCartForShop() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.mock.ExpectQuery(`FROM carts c[\s\S]+p.shop_id = \$2`).
		WithArgs(suite.customer.UserID, suite.shopID).
		WillReturnRows(pgxmock.NewRows(cartRowColumns))
	suite.mock.ExpectRollback()

	order, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.Nil(suite.T(), order)
	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_ShopNotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT (.+) FROM shops WHERE id = \$1`).
		WithArgs(suite.shopID).
		WillReturnRows(pgxmock.NewRows(shopRowColumns))
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_InsufficientStockWritesNothing() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(1, 5, true)
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	require.Error(suite.T(), err)
	var appErr *common.AppError
	require.ErrorAs(suite.T(), err, &appErr)
	assert.Equal(suite.T(), common.KindInvalidRequest, appErr.Kind)
	assert.Equal(suite.T(), "Widget", appErr.Details["product"])
	assert.Equal(suite.T(), "2", appErr.Details["requested"])
	assert.Equal(suite.T(), "1", appErr.Details["available"])
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_UnavailableProduct() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, false)
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
	assert.Contains(suite.T(), err.Error(), "not available")
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_GuardedDecrementConflict() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, true)
	suite.expectOrderInserts()
	suite.mock.ExpectExec(`UPDATE products[\s\S]+stock_quantity >= \$1`).
		WithArgs(2, suite.widgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_DeadlockIsConflict() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.mock.ExpectQuery(`FROM products[\s\S]+FOR UPDATE`).
		WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_CheckViolationOnInsertIsConflict() {
	suite.mock.ExpectBegin()
	suite.expectShop()
	suite.expectCart()
	suite.expectLock(10, 5, true)
	suite.mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnError(&pgconn.PgError{Code: "23514", Message: "check violation"})
	suite.mock.ExpectRollback()

	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "5 Elm St", nil)

	assert.True(suite.T(), common.IsKind(err, common.KindConflict))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_ShopOwnerForbidden() {
	_, err := suite.service.PlaceOrder(suite.ctx, suite.owner, suite.shopID, "5 Elm St", nil)
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *OrderServiceTestSuite) TestPlaceOrder_DeliveryAddressRequired() {
	_, err := suite.service.PlaceOrder(suite.ctx, suite.customer, suite.shopID, "   ", nil)
	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

func (suite *OrderServiceTestSuite) orderRow(customerID uuid.UUID, status models.OrderStatus) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(orderRowColumns).
		AddRow(suite.entry1, customerID, suite.shopID, decimal.RequireFromString("69.97"), status, "5 Elm St", nil, now, now)
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_CustomerForbidden() {
	_, err := suite.service.UpdateOrderStatus(suite.ctx, suite.customer, suite.entry1, models.OrderStatusConfirmed)
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_InvalidStatus() {
	_, err := suite.service.UpdateOrderStatus(suite.ctx, suite.owner, suite.entry1, models.OrderStatus("shipped"))
	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_NotFound() {
	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(suite.entry1).
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	_, err := suite.service.UpdateOrderStatus(suite.ctx, suite.owner, suite.entry1, models.OrderStatusConfirmed)
	assert.True(suite.T(), common.IsKind(err, common.KindNotFound))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_OtherOwnerForbidden() {
	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(suite.entry1).
		WillReturnRows(suite.orderRow(suite.customer.UserID, models.OrderStatusPending))
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM shops WHERE id = \$1 AND owner_id = \$2\)`).
		WithArgs(suite.shopID, suite.owner.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := suite.service.UpdateOrderStatus(suite.ctx, suite.owner, suite.entry1, models.OrderStatusConfirmed)
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *OrderServiceTestSuite) TestUpdateOrderStatus_Success() {
	now := time.Now()
	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(suite.entry1).
		WillReturnRows(suite.orderRow(suite.customer.UserID, models.OrderStatusPending))
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM shops WHERE id = \$1 AND owner_id = \$2\)`).
		WithArgs(suite.shopID, suite.owner.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectQuery(`UPDATE orders[\s\S]+RETURNING updated_at`).
		WithArgs("delivered", suite.entry1).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	suite.mock.ExpectQuery(`FROM order_items oi[\s\S]+ANY\(\$1\)`).
		WithArgs([]uuid.UUID{suite.entry1}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "name"}).
			AddRow(uuid.New(), suite.entry1, suite.widgetID, 2, decimal.RequireFromString("19.99"), "Widget"))

	// Jumping straight from pending to delivered is allowed.
	order, err := suite.service.UpdateOrderStatus(suite.ctx, suite.owner, suite.entry1, models.OrderStatusDelivered)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusDelivered, order.Status)
	require.Len(suite.T(), order.Items, 1)
	assert.Equal(suite.T(), "Widget", order.Items[0].ProductName)
}

func (suite *OrderServiceTestSuite) TestGetOrder_OtherCustomerForbidden() {
	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(suite.entry1).
		WillReturnRows(suite.orderRow(uuid.New(), models.OrderStatusPending))

	_, err := suite.service.GetOrder(suite.ctx, suite.customer, suite.entry1)
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *OrderServiceTestSuite) TestGetOrder_OwnCustomerGetsEmptyItems() {
	suite.mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
		WithArgs(suite.entry1).
		WillReturnRows(suite.orderRow(suite.customer.UserID, models.OrderStatusReady))
	suite.mock.ExpectQuery(`FROM order_items oi`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "price", "name"}))

	order, err := suite.service.GetOrder(suite.ctx, suite.customer, suite.entry1)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.OrderStatusReady, order.Status)
	assert.NotNil(suite.T(), order.Items)
	assert.Empty(suite.T(), order.Items)
}

func (suite *OrderServiceTestSuite) TestListOrders_CustomerScopedToSelf() {
	suite.mock.ExpectQuery(`FROM orders o[\s\S]+o.customer_id = \$1 ORDER BY o.created_at DESC, o.id LIMIT \$2 OFFSET \$3`).
		WithArgs(suite.customer.UserID, common.DefaultOrderPageSize, 0).
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	orders, err := suite.service.ListOrders(suite.ctx, suite.customer, &models.OrderFilter{})

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), orders)
}

func (suite *OrderServiceTestSuite) TestListOrders_OwnerForeignShopForbidden() {
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM shops WHERE id = \$1 AND owner_id = \$2\)`).
		WithArgs(suite.shopID, suite.owner.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	shopID := suite.shopID
	_, err := suite.service.ListOrders(suite.ctx, suite.owner, &models.OrderFilter{ShopID: &shopID})
	assert.True(suite.T(), common.IsKind(err, common.KindForbidden))
}

func (suite *OrderServiceTestSuite) TestListOrders_InvalidStatus() {
	status := models.OrderStatus("lost")
	_, err := suite.service.ListOrders(suite.ctx, suite.customer, &models.OrderFilter{Status: &status})
	assert.True(suite.T(), common.IsKind(err, common.KindInvalidRequest))
}

func (suite *OrderServiceTestSuite) TestListOrders_OwnerScopeAndStatus() {
	status := models.OrderStatusPending
	suite.mock.ExpectQuery(`s.owner_id = \$1\) AND o.status = \$2 ORDER BY`).
		WithArgs(suite.owner.UserID, "pending", 20, 40).
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	_, err := suite.service.ListOrders(suite.ctx, suite.owner, &models.OrderFilter{Status: &status, Limit: 20, Skip: 40})
	require.NoError(suite.T(), err)
}
