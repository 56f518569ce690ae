package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrifarma/platform/internal/logging"
	"github.com/agrifarma/platform/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptyCart         = errors.New("empty cart")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type Service struct {
	DB *gorm.DB
}

// PlaceOrder converts the user's whole cart into an order inside a
// single transaction. Cart rows are visited in ascending id order and
// each product row is locked before its stock is checked, so two
// orders racing for the same last unit cannot both pass. Every
// mutation lands or none do.
func (s *Service) PlaceOrder(ctx context.Context, userID uint) (*models.Order, []models.OrderItem, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	var (
		order models.Order
		lines []models.OrderItem
	)

	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var total float64
		lines = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			var p models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", it.ProductID, ErrNotFound)
				}
				return err
			}
			if it.Quantity > p.Stock {
				return fmt.Errorf("%w: %q has %d left, %d requested", ErrInsufficientStock, p.Name, p.Stock, it.Quantity)
			}

			snapshot := p.FinalPrice()
			total += float64(it.Quantity) * snapshot
			lines = append(lines, models.OrderItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     snapshot,
			})
		}

		order = models.Order{
			UserID:      userID,
			TotalAmount: total,
			Status:      models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}

		// The stock>=? guard re-validates inside the decrement itself,
		// closing the check-then-act window on engines where the row
		// lock above is a no-op.
		for _, it := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", it.ProductID, it.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: product %d was sold out concurrently", ErrInsufficientStock, it.ProductID)
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, ErrEmptyCart),
			errors.Is(txErr, ErrInsufficientStock),
			errors.Is(txErr, ErrNotFound):
			l.Warn("place_order_rejected", "error", txErr)
			return nil, nil, txErr
		default:
			l.Error("place_order_failed", "error", txErr)
			return nil, nil, fmt.Errorf("place order: %w", txErr)
		}
	}

	l.Info("place_order_success", "order_id", order.ID, "total", order.TotalAmount, "items", len(lines))
	return &order, lines, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Get returns an order with its lines, owner-scoped.
func (s *Service) Get(ctx context.Context, orderID, userID uint) (*models.Order, []models.OrderItem, error) {
	var order models.Order
	if err := s.DB.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("order %d: %w", orderID, ErrNotFound)
		}
		return nil, nil, err
	}
	if order.UserID != userID {
		return nil, nil, fmt.Errorf("order %d: %w", orderID, ErrUnauthorized)
	}

	var items []models.OrderItem
	if err := s.DB.WithContext(ctx).Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &order, items, nil
}
