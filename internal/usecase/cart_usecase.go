package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// CartLineUpdate is a partial update of one cart line.
type CartLineUpdate struct {
	Quantity *int
	Color    *string
}

type CartUseCase interface {
	GetCart(ctx context.Context, customerID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID int64, color string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, customerID, lineID int64, update CartLineUpdate) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID, lineID int64) (*domain.Cart, error)
	ClearCart(ctx context.Context, customerID int64) error
}

type cartUseCase struct {
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	log         *logrus.Logger
}

func NewCartUseCase(cartRepo domain.CartRepository, productRepo domain.ProductRepository, logger *logrus.Logger) CartUseCase {
	return &cartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		log:         logger,
	}
}

func (uc *cartUseCase) GetCart(ctx context.Context, customerID int64) (*domain.Cart, error) {
	lines, err := uc.cartRepo.Lines(ctx, customerID)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to load cart for customer %d: %v", customerID, err)
		return nil, err
	}
	return domain.NewCart(customerID, lines), nil
}

// activeProduct loads a product a customer may put in the cart.
func (uc *cartUseCase) activeProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, fmt.Errorf("product with id %d %w", productID, domain.ErrNotFound)
	}
	return product, nil
}

func (uc *cartUseCase) AddItem(ctx context.Context, customerID, productID int64, color string, quantity int) (*domain.Cart, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return nil, fmt.Errorf("%w: color is required", domain.ErrInvalidInput)
	}
	if quantity <= 0 || quantity > domain.MaxLineQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrInvalidInput, domain.MaxLineQuantity)
	}

	product, err := uc.activeProduct(ctx, productID)
	if err != nil {
		uc.log.Warnf("Use Case: Customer %d cannot add product %d: %v", customerID, productID, err)
		return nil, err
	}
	if _, ok := product.Color(color); !ok {
		return nil, fmt.Errorf("%w: product %d has no color '%s'", domain.ErrInvalidInput, productID, color)
	}

	lines, err := uc.cartRepo.Lines(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.ProductID == productID && l.Color == color && l.Quantity+quantity > domain.MaxLineQuantity {
			return nil, fmt.Errorf("%w: cart line for product %d (%s) would exceed %d items", domain.ErrInvalidInput, productID, color, domain.MaxLineQuantity)
		}
	}

	if err := uc.cartRepo.AddLine(ctx, customerID, productID, color, quantity); err != nil {
		uc.log.Errorf("Use Case: Failed to add product %d to cart of customer %d: %v", productID, customerID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Customer %d added %d x product %d (%s) to cart", customerID, quantity, productID, color)
	return uc.GetCart(ctx, customerID)
}

func (uc *cartUseCase) UpdateItem(ctx context.Context, customerID, lineID int64, update CartLineUpdate) (*domain.Cart, error) {
	line, err := uc.cartRepo.GetLine(ctx, customerID, lineID)
	if err != nil {
		uc.log.Warnf("Use Case: Cart line %d of customer %d not found: %v", lineID, customerID, err)
		return nil, err
	}

	quantity := line.Quantity
	if update.Quantity != nil {
		quantity = max(*update.Quantity, 1)
		if quantity > domain.MaxLineQuantity {
			return nil, fmt.Errorf("%w: quantity cannot exceed %d", domain.ErrInvalidInput, domain.MaxLineQuantity)
		}
	}

	color := line.Color
	if update.Color != nil {
		color = strings.TrimSpace(*update.Color)
		if color == "" {
			return nil, fmt.Errorf("%w: color cannot be empty", domain.ErrInvalidInput)
		}
		if color != line.Color {
			product, err := uc.productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			if _, ok := product.Color(color); !ok {
				return nil, fmt.Errorf("%w: product %d has no color '%s'", domain.ErrInvalidInput, line.ProductID, color)
			}
		}
	}

	if err := uc.cartRepo.UpdateLine(ctx, customerID, lineID, color, quantity); err != nil {
		uc.log.Errorf("Use Case: Failed to update cart line %d of customer %d: %v", lineID, customerID, err)
		return nil, err
	}
	return uc.GetCart(ctx, customerID)
}

func (uc *cartUseCase) RemoveItem(ctx context.Context, customerID, lineID int64) (*domain.Cart, error) {
	if err := uc.cartRepo.RemoveLine(ctx, customerID, lineID); err != nil {
		uc.log.Warnf("Use Case: Failed to remove cart line %d of customer %d: %v", lineID, customerID, err)
		return nil, err
	}
	return uc.GetCart(ctx, customerID)
}

func (uc *cartUseCase) ClearCart(ctx context.Context, customerID int64) error {
	if err := uc.cartRepo.Clear(ctx, customerID); err != nil {
		uc.log.Errorf("Use Case: Failed to clear cart of customer %d: %v", customerID, err)
		return err
	}
	uc.log.Infof("Use Case: Cart of customer %d cleared", customerID)
	return nil
}
