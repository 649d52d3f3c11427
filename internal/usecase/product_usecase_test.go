package usecase

import (
	"context"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductUseCase(t *testing.T) (ProductUseCase, *orderFixture) {
	t.Helper()
	f := newOrderFixture(t)
	categories := &fakeCategoryRepo{categories: map[int64]*domain.Category{1: {ID: 1, Name: "Chairs"}}}
	return NewProductUseCase(f.products, categories, f.orders, quietLogger()), f
}

func TestCreateProduct(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	cat := int64(1)

	p, err := uc.CreateProduct(ctx, &domain.Product{
		Name:       "  Stool ",
		Price:      decimal.RequireFromString("30"),
		CategoryID: &cat,
		Colors:     []domain.ColorVariant{{Name: " Oak ", Quantity: intPtr(2)}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stool", p.Name)
	assert.Equal(t, domain.ProductActive, p.Status)
	assert.Equal(t, "Oak", p.Colors[0].Name)
}

func TestCreateProductValidation(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()
	missingCat := int64(9)

	tests := []struct {
		name    string
		product domain.Product
	}{
		{"empty name", domain.Product{Price: decimal.NewFromInt(1)}},
		{"zero price", domain.Product{Name: "x"}},
		{"bad status", domain.Product{Name: "x", Price: decimal.NewFromInt(1), Status: "archived"}},
		{"duplicate colour", domain.Product{Name: "x", Price: decimal.NewFromInt(1), Colors: []domain.ColorVariant{{Name: "Red"}, {Name: "Red"}}}},
		{"negative quantity", domain.Product{Name: "x", Price: decimal.NewFromInt(1), Colors: []domain.ColorVariant{{Name: "Red", Quantity: intPtr(-1)}}}},
		{"missing category", domain.Product{Name: "x", Price: decimal.NewFromInt(1), CategoryID: &missingCat}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			_, err := uc.CreateProduct(ctx, &p)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestGetActiveProductHidesInactive(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()

	_, err := uc.GetActiveProduct(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := uc.GetProductByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductInactive, p.Status)

	active, err := uc.ListActiveProducts(ctx, 0, 10, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
}

func TestDeleteProductReferencedByOpenOrder(t *testing.T) {
	uc, f := newProductUseCase(t)
	ctx := context.Background()

	order, err := f.uc.PlaceOrder(ctx, PlaceOrderInput{
		CustomerID:    customerID,
		Items:         []OrderLine{{ProductID: 1, Color: "Red", Quantity: 1}},
		DeclaredTotal: decimal.RequireFromString("120.50"),
		Receipt:       receipt(),
	})
	require.NoError(t, err)

	err = uc.DeleteProduct(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	delivered := domain.StatusDelivered
	_, err = f.uc.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusUpdate{Status: &delivered})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteProduct(ctx, 1))
	_, err = uc.GetProductByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetColorQuantity(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()

	p, err := uc.SetColorQuantity(ctx, 1, "Blue", intPtr(7))
	require.NoError(t, err)
	c, ok := p.Color("Blue")
	require.True(t, ok)
	assert.Equal(t, 7, *c.Quantity)

	_, err = uc.SetColorQuantity(ctx, 1, "Blue", intPtr(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	p, err = uc.SetColorQuantity(ctx, 1, "Red", nil)
	require.NoError(t, err)
	c, _ = p.Color("Red")
	assert.Nil(t, c.Quantity)
}

func TestUpdateProduct(t *testing.T) {
	uc, _ := newProductUseCase(t)
	ctx := context.Background()

	price := decimal.RequireFromString("99.99")
	p, err := uc.UpdateProduct(ctx, 1, domain.ProductUpdate{Price: &price})
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(price))

	zero := decimal.Zero
	_, err = uc.UpdateProduct(ctx, 1, domain.ProductUpdate{Price: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.UpdateProduct(ctx, 50, domain.ProductUpdate{Price: &price})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
