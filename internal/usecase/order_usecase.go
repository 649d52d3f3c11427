package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const receiptFolder = "receipts"

// OrderLine is one item requested at checkout.
type OrderLine struct {
	ProductID int64
	Color     string
	Quantity  int
}

// PlaceOrderInput carries a checkout request. A nil Items takes the lines from the customer's cart.
type PlaceOrderInput struct {
	CustomerID    int64
	Items         []OrderLine
	DeclaredTotal decimal.Decimal
	Receipt       io.Reader
}

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error)
	ListOrders(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error)
	CancelOrder(ctx context.Context, customerID, orderID int64) error
	ReceiptFile(ctx context.Context, customerID, orderID int64) (string, error)

	GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error)
	ListAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, update domain.OrderStatusUpdate) (*domain.Order, error)
	AdminReceiptFile(ctx context.Context, orderID int64) (string, error)
}

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	productRepo domain.ProductRepository
	cartRepo    domain.CartRepository
	files       domain.FileStorage
	stock       StockAdjuster
	tolerance   decimal.Decimal
	log         *logrus.Logger
}

func NewOrderUseCase(
	orderRepo domain.OrderRepository,
	productRepo domain.ProductRepository,
	cartRepo domain.CartRepository,
	files domain.FileStorage,
	stock StockAdjuster,
	tolerance decimal.Decimal,
	logger *logrus.Logger,
) OrderUseCase {
	return &orderUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		files:       files,
		stock:       stock,
		tolerance:   tolerance,
		log:         logger,
	}
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if input.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: invalid customer ID", domain.ErrInvalidInput)
	}
	if input.Receipt == nil {
		uc.log.Warnf("Use Case: Customer %d placed an order without a receipt", input.CustomerID)
		return nil, fmt.Errorf("%w: payment receipt is required", domain.ErrInvalidInput)
	}

	lines := input.Items
	if lines == nil {
		cartLines, err := uc.cartRepo.Lines(ctx, input.CustomerID)
		if err != nil {
			return nil, err
		}
		for _, l := range cartLines {
			lines = append(lines, OrderLine{ProductID: l.ProductID, Color: l.Color, Quantity: l.Quantity})
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", domain.ErrInvalidInput)
	}

	items, err := uc.priceItems(ctx, lines)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected order of customer %d: %v", input.CustomerID, err)
		return nil, err
	}

	total := domain.SumItems(items)
	if total.Sub(input.DeclaredTotal).Abs().GreaterThan(uc.tolerance) {
		uc.log.Warnf("Use Case: Customer %d declared total %s but catalog total is %s", input.CustomerID, input.DeclaredTotal, total)
		return nil, fmt.Errorf("%w: declared total %s does not match order total %s", domain.ErrInvalidInput, input.DeclaredTotal.StringFixed(2), total.StringFixed(2))
	}

	receiptPath, err := uc.files.Save(ctx, receiptFolder, input.Receipt, domain.ReceiptTypes)
	if err != nil {
		uc.log.Warnf("Use Case: Could not store receipt for customer %d: %v", input.CustomerID, err)
		return nil, err
	}

	order := &domain.Order{
		CustomerID:    input.CustomerID,
		Items:         items,
		TotalAmount:   total,
		ReceiptPath:   receiptPath,
		ReceiptStatus: domain.ReceiptPending,
		Status:        domain.StatusPendingPayment,
	}
	created, err := uc.orderRepo.Create(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create order for customer %d: %v", input.CustomerID, err)
		uc.discardReceipt(receiptPath)
		return nil, err
	}

	uc.log.Infof("Use Case: Order %d placed by customer %d, total %s", created.ID, created.CustomerID, created.TotalAmount.StringFixed(2))
	return created, nil
}

// priceItems snapshots each line against the catalog. Client prices are never trusted.
func (uc *orderUseCase) priceItems(ctx context.Context, lines []OrderLine) ([]domain.OrderItem, error) {
	products := make(map[int64]*domain.Product)
	items := make([]domain.OrderItem, 0, len(lines))

	for i, line := range lines {
		color := strings.TrimSpace(line.Color)
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("%w: item %d: invalid product ID", domain.ErrInvalidInput, i)
		}
		if line.Quantity <= 0 || line.Quantity > domain.MaxLineQuantity {
			return nil, fmt.Errorf("%w: item %d (product %d): quantity must be between 1 and %d", domain.ErrInvalidInput, i, line.ProductID, domain.MaxLineQuantity)
		}
		if color == "" {
			return nil, fmt.Errorf("%w: item %d (product %d): color is required", domain.ErrInvalidInput, i, line.ProductID)
		}

		product, ok := products[line.ProductID]
		if !ok {
			p, err := uc.productRepo.GetByID(ctx, line.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
			products[line.ProductID] = p
		}
		if !product.IsActive() {
			return nil, fmt.Errorf("%w: product %d is not available", domain.ErrInvalidInput, line.ProductID)
		}
		if _, ok := product.Color(color); !ok {
			return nil, fmt.Errorf("%w: product %d has no color '%s'", domain.ErrInvalidInput, line.ProductID, color)
		}

		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Color:       color,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
		})
	}
	return items, nil
}

func (uc *orderUseCase) discardReceipt(path string) {
	if err := uc.files.Delete(context.Background(), path); err != nil {
		uc.log.Errorf("Use Case: Failed to delete receipt %s: %v", path, err)
	}
}

func (uc *orderUseCase) GetOrder(ctx context.Context, customerID, orderID int64) (*domain.Order, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		uc.log.Warnf("Use Case: Customer %d requested order %d owned by %d", customerID, orderID, order.CustomerID)
		return nil, fmt.Errorf("order with id %d %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, customerID int64, limit, offset int) ([]domain.Order, error) {
	return uc.orderRepo.List(ctx, domain.OrderFilter{CustomerID: customerID, Limit: limit, Offset: offset})
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, customerID, orderID int64) error {
	order, err := uc.GetOrder(ctx, customerID, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusPendingPayment {
		uc.log.Warnf("Use Case: Customer %d tried to cancel order %d in status %s", customerID, orderID, order.Status)
		return fmt.Errorf("%w: only orders awaiting payment can be cancelled, order %d is %s", domain.ErrInvalidState, orderID, order.Status)
	}

	deleted, err := uc.orderRepo.DeletePending(ctx, orderID, customerID)
	if err != nil {
		return err
	}
	if !deleted {
		// status moved on between the read and the delete
		return fmt.Errorf("%w: order %d is no longer awaiting payment", domain.ErrInvalidState, orderID)
	}

	if err := uc.files.Delete(ctx, order.ReceiptPath); err != nil {
		uc.log.Errorf("Use Case: Order %d cancelled but receipt %s could not be deleted: %v", orderID, order.ReceiptPath, err)
	}
	uc.log.Infof("Use Case: Order %d cancelled by customer %d", orderID, customerID)
	return nil
}

func (uc *orderUseCase) ReceiptFile(ctx context.Context, customerID, orderID int64) (string, error) {
	order, err := uc.GetOrder(ctx, customerID, orderID)
	if err != nil {
		return "", err
	}
	return uc.files.Resolve(order.ReceiptPath)
}

func (uc *orderUseCase) GetOrderAdmin(ctx context.Context, orderID int64) (*domain.Order, error) {
	return uc.orderRepo.GetByID(ctx, orderID)
}

func (uc *orderUseCase) ListAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown order status '%s'", domain.ErrInvalidInput, filter.Status)
	}
	if filter.ReceiptStatus != "" && !domain.IsValidReceiptStatus(filter.ReceiptStatus) {
		return nil, fmt.Errorf("%w: unknown receipt status '%s'", domain.ErrInvalidInput, filter.ReceiptStatus)
	}
	return uc.orderRepo.List(ctx, filter)
}

func (uc *orderUseCase) AdminReceiptFile(ctx context.Context, orderID int64) (string, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return uc.files.Resolve(order.ReceiptPath)
}

func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, orderID int64, update domain.OrderStatusUpdate) (*domain.Order, error) {
	if update.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if update.Status != nil && !domain.IsValidStatus(*update.Status) {
		uc.log.Warnf("Use Case: Invalid order status '%s' for order %d", *update.Status, orderID)
		return nil, fmt.Errorf("%w: unknown order status '%s'", domain.ErrInvalidInput, *update.Status)
	}
	if update.ReceiptStatus != nil && !domain.IsValidReceiptStatus(*update.ReceiptStatus) {
		uc.log.Warnf("Use Case: Invalid receipt status '%s' for order %d", *update.ReceiptStatus, orderID)
		return nil, fmt.Errorf("%w: unknown receipt status '%s'", domain.ErrInvalidInput, *update.ReceiptStatus)
	}

	order, err := uc.orderRepo.UpdateStatus(ctx, orderID, update)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to update order %d: %v", orderID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d now %s, receipt %s", order.ID, order.Status, order.ReceiptStatus)

	if update.ReceiptStatus != nil && *update.ReceiptStatus == domain.ReceiptVerified {
		uc.applyStock(context.WithoutCancel(ctx), order)
	}
	return order, nil
}

// applyStock runs the stock workflow once per order. Its failures never reach the caller.
func (uc *orderUseCase) applyStock(ctx context.Context, order *domain.Order) {
	appliedAt, claimed, err := uc.orderRepo.ClaimStockApplication(ctx, order.ID)
	if err != nil {
		uc.log.Errorf("Use Case: Could not claim stock application for order %d: %v", order.ID, err)
		return
	}
	if !claimed {
		uc.log.Infof("Use Case: Stock already applied for order %d, skipping", order.ID)
		return
	}
	order.StockAppliedAt = &appliedAt

	if err := uc.stock.Apply(ctx, order.ID, order.Items); err != nil {
		uc.log.WithField("order_id", order.ID).Errorf("Use Case: Stock adjustment incomplete, needs manual reconciliation: %v", err)
	}
}
