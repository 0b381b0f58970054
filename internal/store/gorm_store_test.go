package store

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tidewear/pkg/domain"
)

// newMockedStore wires a GormStore to sqlmock, skipping auto-migration.
func newMockedStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return &GormStore{db: gdb}, mock
}

func TestGormGetProductsComposesFilters(t *testing.T) {
	s, mock := newMockedStore(t)

	rows := sqlmock.NewRows([]string{
		"id", "name", "description", "price", "discount_price", "images",
		"category", "in_stock", "is_featured", "is_limited", "limited_count",
		"materials", "origin", "created_at",
	}).AddRow(
		2, "Tidal Wrap Bikini", "wrap top", 180.0, 145.0, []byte(`["a.jpg"]`),
		"swimwear", true, true, false, nil, []byte(`["recycled polyamide"]`),
		"Italy", time.Now().UTC(),
	)
	mock.ExpectQuery(`WHERE category = \$1 AND is_featured = \$2 ORDER BY created_at DESC, id DESC`).
		WithArgs("swimwear", true).
		WillReturnRows(rows)

	featured := true
	got, err := s.GetProducts(ProductQuery{Category: "swimwear", Featured: &featured})
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("count = %d, want 1", len(got))
	}
	p := got[0]
	if p.Name != "Tidal Wrap Bikini" || p.DiscountPrice == nil || *p.DiscountPrice != 145 {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.Images) != 1 || p.Images[0] != "a.jpg" {
		t.Fatalf("images not decoded: %+v", p.Images)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormGetProductAbsenceIsNotAnError(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, ok, err := s.GetProduct(12345)
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("missing id reported as found")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormDeleteProductReportsExistence(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	existed, err := s.DeleteProduct(3)
	if err != nil || !existed {
		t.Fatalf("delete existing: existed=%v err=%v", existed, err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "products" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	existed, err = s.DeleteProduct(3)
	if err != nil || existed {
		t.Fatalf("delete missing: existed=%v err=%v", existed, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormCreateOrderWithItemsRollsBackOnItemFailure(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, _, err := s.CreateOrderWithItems(domain.NewOrder{Total: 430}, []domain.NewOrderItem{
		{ProductID: 1, Quantity: 1, Price: 250},
	})
	if err == nil {
		t.Fatalf("expected item failure to surface")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormCreateOrderWithItemsBindsItemsToOrder(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectCommit()

	order, items, err := s.CreateOrderWithItems(domain.NewOrder{Total: 430}, []domain.NewOrderItem{
		{ProductID: 1, Quantity: 1, Price: 250},
		{ProductID: 2, Quantity: 1, Price: 180},
	})
	if err != nil {
		t.Fatalf("create order with items: %v", err)
	}
	if order.ID != 42 {
		t.Fatalf("order id = %d, want 42", order.ID)
	}
	for _, it := range items {
		if it.OrderID != 42 {
			t.Fatalf("item bound to order %d, want 42", it.OrderID)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormUpdateOrderStatusAbsence(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, ok, err := s.UpdateOrderStatus(404, domain.OrderShipped)
	if err != nil {
		t.Fatalf("absence must not be an error: %v", err)
	}
	if ok {
		t.Fatalf("missing order reported as updated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormSettingsOrderedByKey(t *testing.T) {
	s, mock := newMockedStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "key", "value", "category", "description", "created_at", "updated_at"}).
		AddRow(2, "currency", "EUR", "payment", "", now, now).
		AddRow(1, "stripe_public_key", "pk_test", "payment", "", now, now)
	mock.ExpectQuery(`WHERE category = \$1 ORDER BY key ASC`).
		WithArgs("payment").
		WillReturnRows(rows)

	got, err := s.GetSettings("payment")
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if len(got) != 2 || got[0].Key != "currency" || got[1].Key != "stripe_public_key" {
		t.Fatalf("unexpected settings: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormConnectivityFailurePropagates(t *testing.T) {
	s, mock := newMockedStore(t)

	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnError(errors.New("connection reset"))

	if _, err := s.GetProducts(ProductQuery{}); err == nil {
		t.Fatalf("backend failure must propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGormUniqueLookupsOrderByPrimaryKey(t *testing.T) {
	s, mock := newMockedStore(t)

	now := time.Now().UTC()
	userRows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "name", "phone", "created_at"}).
		AddRow(1, "marina", "marina@example.com", "x", "", "", now)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1 ORDER BY "users"\."id" LIMIT`).
		WillReturnRows(userRows)

	user, ok, err := s.GetUserByUsername("marina")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if user.ID != 1 {
		t.Fatalf("user id = %d, want lowest id 1", user.ID)
	}

	settingRows := sqlmock.NewRows([]string{"id", "key", "value", "category", "description", "created_at", "updated_at"}).
		AddRow(1, "currency", "EUR", "payment", "", now, now)
	mock.ExpectQuery(`SELECT \* FROM "settings" WHERE key = \$1 ORDER BY "settings"\."id" LIMIT`).
		WillReturnRows(settingRows)

	setting, ok, err := s.GetSettingByKey("currency")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if setting.ID != 1 {
		t.Fatalf("setting id = %d, want lowest id 1", setting.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
