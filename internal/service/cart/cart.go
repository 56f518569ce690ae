package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrifarma/platform/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Service owns the per-user cart. Stock is only checked here, never
// reserved: two carts may hold the same unit until one of them is
// turned into an order.
type Service struct {
	DB *gorm.DB
}

// Add merges into an existing row for the same user and product
// instead of creating a duplicate. The merged quantity is validated
// against the product's current stock.
func (s *Service) Add(ctx context.Context, userID, productID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	var item models.CartItem
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error

	switch {
	case err == nil:
		merged := item.Quantity + quantity
		if merged > product.Stock {
			return nil, fmt.Errorf("%w: only %d of %q available", ErrInsufficientStock, product.Stock, product.Name)
		}
		item.Quantity = merged
		if err := s.DB.WithContext(ctx).Save(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > product.Stock {
			return nil, fmt.Errorf("%w: only %d of %q available", ErrInsufficientStock, product.Stock, product.Name)
		}
		item = models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
		}
		if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil

	default:
		return nil, err
	}
}

// SetQuantity overwrites the quantity of a cart row owned by userID,
// floored at 1.
func (s *Service) SetQuantity(ctx context.Context, itemID, userID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.DB.WithContext(ctx).First(&product, item.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
		}
		return nil, err
	}

	if quantity > product.Stock {
		return nil, fmt.Errorf("%w: only %d of %q available", ErrInsufficientStock, product.Stock, product.Name)
	}

	item.Quantity = quantity
	if err := s.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, itemID, userID uint) error {
	item, err := s.ownedItem(ctx, itemID, userID)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(item).Error
}

func (s *Service) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// TotalFor sums quantity times the product's current final price over
// the user's cart. Pure read.
func (s *Service) TotalFor(ctx context.Context, userID uint) (float64, error) {
	items, err := s.Items(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, it := range items {
		var product models.Product
		if err := s.DB.WithContext(ctx).First(&product, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
			}
			return 0, err
		}
		total += float64(it.Quantity) * product.FinalPrice()
	}
	return total, nil
}

// ownedItem distinguishes a missing row from a row owned by somebody
// else so callers see NotFound and Unauthorized as separate failures.
func (s *Service) ownedItem(ctx context.Context, itemID, userID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.DB.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}
	if item.UserID != userID {
		return nil, fmt.Errorf("cart item %d: %w", itemID, ErrUnauthorized)
	}
	return &item, nil
}
