package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MaxLineQuantity bounds the quantity of a single cart or order line.
const MaxLineQuantity = 10000

// CartLine is one (product, colour) selection in a customer's cart.
// At most one line exists per (customer, product, colour).
type CartLine struct {
	ID        int64        `json:"id"`
	ProductID int64        `json:"product_id"`
	Color     string       `json:"color"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product,omitempty"`
}

// CartProduct is the product data a cart is populated with.
type CartProduct struct {
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Status ProductStatus   `json:"status"`
}

type Cart struct {
	CustomerID int64           `json:"customer_id"`
	Lines      []CartLine      `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// NewCart builds a cart view and sums the subtotal of populated lines.
func NewCart(customerID int64, lines []CartLine) *Cart {
	if lines == nil {
		lines = []CartLine{}
	}
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Product != nil {
			subtotal = subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return &Cart{CustomerID: customerID, Lines: lines, Subtotal: subtotal}
}

type CartRepository interface {
	// Lines returns the customer's lines populated with product data.
	Lines(ctx context.Context, customerID int64) ([]CartLine, error)
	GetLine(ctx context.Context, customerID, lineID int64) (*CartLine, error)
	// AddLine inserts a line or increments the quantity of the existing (product, colour) line.
	AddLine(ctx context.Context, customerID, productID int64, color string, quantity int) error
	// UpdateLine sets quantity and colour; a colour that collides with another line merges into it.
	UpdateLine(ctx context.Context, customerID, lineID int64, color string, quantity int) error
	RemoveLine(ctx context.Context, customerID, lineID int64) error
	Clear(ctx context.Context, customerID int64) error
}
