package usecase

import (
	"context"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockAdjusterAppliesEveryItem(t *testing.T) {
	products := newFakeProductRepo(
		&domain.Product{ID: 1, Status: domain.ProductActive, Price: decimal.NewFromInt(1),
			Colors: []domain.ColorVariant{{Name: "Red", Quantity: intPtr(5)}, {Name: "Blue", Quantity: intPtr(5)}}},
	)
	s := NewStockAdjuster(products, 2, quietLogger())

	err := s.Apply(context.Background(), 1, []domain.OrderItem{
		{ProductID: 1, Color: "Red", Quantity: 2},
		{ProductID: 1, Color: "Blue", Quantity: 9},
		{ProductID: 1, Color: "Gone", Quantity: 1},
		{ProductID: 404, Color: "Red", Quantity: 1},
	})
	require.NoError(t, err, "missing products and colours are skipped")
	assert.Equal(t, 3, *products.quantity(1, "Red"))
	assert.Equal(t, 0, *products.quantity(1, "Blue"))
}

func TestStockAdjusterKeepsGoingAfterFailure(t *testing.T) {
	products := newFakeProductRepo(
		&domain.Product{ID: 1, Status: domain.ProductActive, Price: decimal.NewFromInt(1),
			Colors: []domain.ColorVariant{{Name: "Red", Quantity: intPtr(5)}, {Name: "Blue", Quantity: intPtr(5)}}},
	)
	products.failColor = "Red"
	s := NewStockAdjuster(products, 1, quietLogger())

	err := s.Apply(context.Background(), 1, []domain.OrderItem{
		{ProductID: 1, Color: "Red", Quantity: 1},
		{ProductID: 1, Color: "Blue", Quantity: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 items")
	assert.Equal(t, 4, *products.quantity(1, "Blue"))
}
