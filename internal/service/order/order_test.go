package order

import (
	"context"
	"testing"

	"github.com/agrifarma/platform/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}

	_, _, err := svc.PlaceOrder(context.Background(), 1)
	require.ErrorIs(t, err, ErrEmptyCart)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	ok := models.Product{Name: "seeds", Description: "d", Price: 10, Stock: 5}
	scarce := models.Product{Name: "sprayer", Description: "d", Price: 80, Stock: 1}
	require.NoError(t, db.Create(&ok).Error)
	require.NoError(t, db.Create(&scarce).Error)

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: ok.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: scarce.ID, Quantity: 3}).Error)

	_, _, err := svc.PlaceOrder(ctx, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// nothing may have moved: no order, cart intact, stock intact
	var orders, items, cartRows int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartRows).Error)
	require.Equal(t, int64(0), orders)
	require.Equal(t, int64(0), items)
	require.Equal(t, int64(2), cartRows)

	var p models.Product
	require.NoError(t, db.First(&p, ok.ID).Error)
	require.Equal(t, uint(5), p.Stock)
	var p2 models.Product
	require.NoError(t, db.First(&p2, scarce.ID).Error)
	require.Equal(t, uint(1), p2.Stock)
}

func TestPlaceOrderSnapshotsPricesAndDecrementsStock(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	a := models.Product{Name: "A", Description: "d", Price: 10, Discount: 0, Stock: 7}
	b := models.Product{Name: "B", Description: "d", Price: 50, Discount: 10, Stock: 4}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: a.ID, Quantity: 2}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: b.ID, Quantity: 1}).Error)

	placed, lines, err := svc.PlaceOrder(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 65.00, placed.TotalAmount)
	require.Equal(t, models.OrderStatusPending, placed.Status)
	require.Len(t, lines, 2)
	require.Equal(t, 10.00, lines[0].Price)
	require.Equal(t, 45.00, lines[1].Price)

	// total reconciles with the stored lines
	var stored []models.OrderItem
	require.NoError(t, db.Where("order_id = ?", placed.ID).Find(&stored).Error)
	var sum float64
	for _, it := range stored {
		sum += it.Total()
	}
	require.Equal(t, placed.TotalAmount, sum)

	var p models.Product
	require.NoError(t, db.First(&p, a.ID).Error)
	require.Equal(t, uint(5), p.Stock)
	var p2 models.Product
	require.NoError(t, db.First(&p2, b.ID).Error)
	require.Equal(t, uint(3), p2.Stock)

	var cartRows int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&cartRows).Error)
	require.Equal(t, int64(0), cartRows)

	// later catalog changes must not touch the snapshot
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", b.ID).Update("price", 500).Error)
	var line models.OrderItem
	require.NoError(t, db.Where("order_id = ? AND product_id = ?", placed.ID, b.ID).First(&line).Error)
	require.Equal(t, 45.00, line.Price)
}

func TestPlaceOrderLastUnitContention(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	last := models.Product{Name: "last one", Description: "d", Price: 30, Stock: 1}
	require.NoError(t, db.Create(&last).Error)

	// soft reservation lets both carts hold the same unit
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: last.ID, Quantity: 1}).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 2, ProductID: last.ID, Quantity: 1}).Error)

	first, _, err := svc.PlaceOrder(ctx, 1)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, _, err = svc.PlaceOrder(ctx, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var p models.Product
	require.NoError(t, db.First(&p, last.ID).Error)
	require.Equal(t, uint(0), p.Stock)

	// the loser keeps their cart
	var cartRows int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 2).Count(&cartRows).Error)
	require.Equal(t, int64(1), cartRows)
}

func TestGetIsOwnerScoped(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	p := models.Product{Name: "A", Description: "d", Price: 10, Stock: 3}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 1}).Error)

	placed, _, err := svc.PlaceOrder(ctx, 1)
	require.NoError(t, err)

	_, _, err = svc.Get(ctx, placed.ID, 2)
	require.ErrorIs(t, err, ErrUnauthorized)

	got, items, err := svc.Get(ctx, placed.ID, 1)
	require.NoError(t, err)
	require.Equal(t, placed.ID, got.ID)
	require.Len(t, items, 1)

	_, _, err = svc.Get(ctx, 999, 1)
	require.ErrorIs(t, err, ErrNotFound)
}
