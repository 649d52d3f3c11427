package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	// GetActiveProduct hides inactive products behind NotFound.
	GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	ListActiveProducts(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	SetColorQuantity(ctx context.Context, id int64, color string, quantity *int) (*domain.Product, error)
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	orderRepo    domain.OrderRepository
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, oRepo domain.OrderRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		orderRepo:    oRepo,
		log:          logger,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, fmt.Errorf("%w: product name cannot be empty", domain.ErrInvalidInput)
	}
	if !product.Price.IsPositive() {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with invalid price: %s", product.Name, product.Price)
		return nil, fmt.Errorf("%w: product price must be positive", domain.ErrInvalidInput)
	}
	if product.Status == "" {
		product.Status = domain.ProductActive
	}
	if !domain.IsValidProductStatus(product.Status) {
		return nil, fmt.Errorf("%w: unknown product status '%s'", domain.ErrInvalidInput, product.Status)
	}
	colors, err := normalizeColors(product.Colors)
	if err != nil {
		uc.log.Warnf("Use Case: Invalid colors for product '%s': %v", product.Name, err)
		return nil, err
	}
	product.Colors = colors
	if product.CategoryID != nil {
		if err := uc.checkCategory(ctx, *product.CategoryID); err != nil {
			return nil, err
		}
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	created, err := uc.productRepo.Create(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) checkCategory(ctx context.Context, categoryID int64) error {
	if categoryID <= 0 {
		return nil
	}
	if _, err := uc.categoryRepo.GetByID(ctx, categoryID); err != nil {
		uc.log.Warnf("Use Case: Category ID %d not usable for product: %v", categoryID, err)
		return fmt.Errorf("%w: category with id %d does not exist", domain.ErrInvalidInput, categoryID)
	}
	return nil
}

// normalizeColors trims names and rejects empty or duplicate names and negative quantities.
func normalizeColors(colors []domain.ColorVariant) ([]domain.ColorVariant, error) {
	seen := make(map[string]struct{}, len(colors))
	out := make([]domain.ColorVariant, 0, len(colors))
	for _, c := range colors {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, fmt.Errorf("%w: color name cannot be empty", domain.ErrInvalidInput)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate color '%s'", domain.ErrInvalidInput, c.Name)
		}
		if c.Quantity != nil && *c.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity of color '%s' cannot be negative", domain.ErrInvalidInput, c.Name)
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %d: %v", id, err)
		return nil, err
	}
	return product, nil
}

func (uc *productUseCase) GetActiveProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := uc.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	return product, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	if filter.Status != "" && !domain.IsValidProductStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown product status '%s'", domain.ErrInvalidInput, filter.Status)
	}
	products, err := uc.productRepo.List(ctx, filter)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, err
	}
	return products, nil
}

func (uc *productUseCase) ListActiveProducts(ctx context.Context, categoryID int64, limit, offset int) ([]domain.Product, error) {
	return uc.ListProducts(ctx, domain.ProductFilter{
		Status:     domain.ProductActive,
		CategoryID: categoryID,
		Limit:      limit,
		Offset:     offset,
	})
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: product name cannot be empty if provided for update", domain.ErrInvalidInput)
		}
		update.Name = &name
	}
	if update.Price != nil && !update.Price.IsPositive() {
		return nil, fmt.Errorf("%w: product price must be positive if provided for update", domain.ErrInvalidInput)
	}
	if update.Status != nil && !domain.IsValidProductStatus(*update.Status) {
		return nil, fmt.Errorf("%w: unknown product status '%s'", domain.ErrInvalidInput, *update.Status)
	}
	if update.CategoryID != nil {
		if *update.CategoryID < 0 {
			return nil, fmt.Errorf("%w: category_id must be positive or 0", domain.ErrInvalidInput)
		}
		if err := uc.checkCategory(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
	}
	if update.Colors != nil {
		colors, err := normalizeColors(*update.Colors)
		if err != nil {
			return nil, err
		}
		update.Colors = &colors
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %d", id)
	updated, err := uc.productRepo.Update(ctx, id, update)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %d: %v", id, err)
		return nil, err
	}
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	open, err := uc.orderRepo.CountOpenByProduct(ctx, id)
	if err != nil {
		return err
	}
	if open > 0 {
		uc.log.Warnf("Use Case: Refusing to delete product %d referenced by %d open orders", id, open)
		return fmt.Errorf("%w: product %d is referenced by %d open orders", domain.ErrInvalidState, id, open)
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product %d: %v", id, err)
		return err
	}
	uc.log.Infof("Use Case: Product %d deleted", id)
	return nil
}

func (uc *productUseCase) SetColorQuantity(ctx context.Context, id int64, color string, quantity *int) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(color) == "" {
		return nil, fmt.Errorf("%w: color is required", domain.ErrInvalidInput)
	}
	if quantity != nil && *quantity < 0 {
		return nil, fmt.Errorf("%w: quantity cannot be negative", domain.ErrInvalidInput)
	}
	if err := uc.productRepo.SetColorQuantity(ctx, id, color, quantity); err != nil {
		uc.log.Warnf("Use Case: Failed to set quantity of '%s' on product %d: %v", color, id, err)
		return nil, err
	}
	return uc.productRepo.GetByID(ctx, id)
}
