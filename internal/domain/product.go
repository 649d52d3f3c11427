package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

func IsValidProductStatus(s ProductStatus) bool {
	return s == ProductActive || s == ProductInactive
}

// ColorVariant is a per-colour stock sub-unit. A nil Quantity means stock is not tracked.
type ColorVariant struct {
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"category_id"`
	Colors      []ColorVariant  `json:"colors"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Color returns the variant with the given name.
func (p *Product) Color(name string) (ColorVariant, bool) {
	for _, c := range p.Colors {
		if c.Name == name {
			return c, true
		}
	}
	return ColorVariant{}, false
}

func (p *Product) IsActive() bool { return p.Status == ProductActive }

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductFilter struct {
	Status     ProductStatus
	CategoryID int64
	Limit      int
	Offset     int
}

// ProductUpdate is a partial update; nil fields are left unchanged.
// A non-nil Colors replaces the whole variant list.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Status      *ProductStatus
	CategoryID  *int64
	Colors      *[]ColorVariant
}

type ProductRepository interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	Update(ctx context.Context, id int64, update ProductUpdate) (*Product, error)
	Delete(ctx context.Context, id int64) error
	// SetColorQuantity overwrites one variant's quantity; nil untracks it.
	SetColorQuantity(ctx context.Context, productID int64, color string, quantity *int) error
	// DecrementColorStock atomically lowers a tracked variant's quantity by n, floored at zero.
	// It reports false when the product, the colour, or the tracking is absent.
	DecrementColorStock(ctx context.Context, productID int64, color string, n int) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Category, error)
}
