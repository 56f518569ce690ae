package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFinalPrice(t *testing.T) {
	p := Product{Price: 100, Discount: 20}
	require.Equal(t, 80.00, p.FinalPrice())

	p = Product{Price: 100, Discount: 0}
	require.Equal(t, 100.00, p.FinalPrice())

	p = Product{Price: 50, Discount: 10}
	require.Equal(t, 45.00, p.FinalPrice())

	// rounding to two decimals
	p = Product{Price: 49.99, Discount: 15}
	require.Equal(t, 42.49, p.FinalPrice())
}

func TestStockStatus(t *testing.T) {
	p := Product{Stock: 11}
	require.Equal(t, "In Stock", p.StockStatus())

	p = Product{Stock: 10}
	require.Equal(t, "Limited Stock", p.StockStatus())

	p = Product{Stock: 1}
	require.Equal(t, "Limited Stock", p.StockStatus())

	p = Product{Stock: 0}
	require.Equal(t, "Out of Stock", p.StockStatus())
	require.False(t, p.InStock())
}

func TestOrderItemTotal(t *testing.T) {
	item := OrderItem{Quantity: 3, Price: 45}
	require.Equal(t, 135.00, item.Total())
}
