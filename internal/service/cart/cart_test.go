package cart

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
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestAddReflectsTotal(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	product := models.Product{Name: "seed pack", Description: "d", Price: 50, Discount: 10, Stock: 20}
	require.NoError(t, db.Create(&product).Error)

	item, err := svc.Add(ctx, 1, product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(3), item.Quantity)

	total, err := svc.TotalFor(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3*45.00, total)
}

func TestAddMergesQuantities(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	product := models.Product{Name: "fertilizer", Description: "d", Price: 10, Stock: 10}
	require.NoError(t, db.Create(&product).Error)

	_, err := svc.Add(ctx, 1, product.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, 1, product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(5), item.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestAddRejectsOverStock(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	product := models.Product{Name: "rare seed", Description: "d", Price: 10, Stock: 5}
	require.NoError(t, db.Create(&product).Error)

	_, err := svc.Add(ctx, 1, product.ID, 6)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// merged total beyond stock is also rejected, existing row untouched
	_, err = svc.Add(ctx, 1, product.ID, 4)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, product.ID, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)

	var item models.CartItem
	require.NoError(t, db.Where("user_id = ?", 1).First(&item).Error)
	require.Equal(t, uint(4), item.Quantity)
}

func TestAddUnknownProduct(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}

	_, err := svc.Add(context.Background(), 1, 42, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetQuantity(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	product := models.Product{Name: "tool", Description: "d", Price: 25, Stock: 8}
	require.NoError(t, db.Create(&product).Error)

	item, err := svc.Add(ctx, 1, product.ID, 2)
	require.NoError(t, err)

	updated, err := svc.SetQuantity(ctx, item.ID, 1, 5)
	require.NoError(t, err)
	require.Equal(t, uint(5), updated.Quantity)

	// floor of one
	updated, err = svc.SetQuantity(ctx, item.ID, 1, 0)
	require.NoError(t, err)
	require.Equal(t, uint(1), updated.Quantity)

	_, err = svc.SetQuantity(ctx, item.ID, 1, 9)
	require.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.SetQuantity(ctx, item.ID, 2, 3)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRemove(t *testing.T) {
	db := initTestDB(t)
	svc := &Service{DB: db}
	ctx := context.Background()

	product := models.Product{Name: "tool", Description: "d", Price: 25, Stock: 8}
	require.NoError(t, db.Create(&product).Error)

	item, err := svc.Add(ctx, 1, product.ID, 2)
	require.NoError(t, err)

	require.ErrorIs(t, svc.Remove(ctx, item.ID, 2), ErrUnauthorized)
	require.NoError(t, svc.Remove(ctx, item.ID, 1))
	require.ErrorIs(t, svc.Remove(ctx, item.ID, 1), ErrNotFound)
}
