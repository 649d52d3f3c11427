package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusProcessing     OrderStatus = "processing"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

type ReceiptStatus string

const (
	ReceiptPending  ReceiptStatus = "pending"
	ReceiptVerified ReceiptStatus = "verified"
	ReceiptRejected ReceiptStatus = "rejected"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPendingPayment, StatusProcessing, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsValidReceiptStatus(status ReceiptStatus) bool {
	switch status {
	case ReceiptPending, ReceiptVerified, ReceiptRejected:
		return true
	default:
		return false
	}
}

// OpenStatuses are the fulfillment statuses in which an order still references its products.
var OpenStatuses = []OrderStatus{StatusPendingPayment, StatusProcessing, StatusConfirmed, StatusShipped}

type Order struct {
	ID             int64           `json:"id"`
	CustomerID     int64           `json:"customer_id"`
	Items          []OrderItem     `json:"items"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	ReceiptPath    string          `json:"receipt_path"`
	ReceiptStatus  ReceiptStatus   `json:"receipt_status"`
	Status         OrderStatus     `json:"status"`
	AdminNotes     string          `json:"admin_notes"`
	StockAppliedAt *time.Time      `json:"stock_applied_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// OrderItem snapshots what was bought; later catalog edits never change it.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumItems returns Σ unit price × quantity.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// OrderStatusUpdate is a partial admin update; nil fields are left unchanged.
type OrderStatusUpdate struct {
	Status        *OrderStatus
	ReceiptStatus *ReceiptStatus
	AdminNotes    *string
}

func (u OrderStatusUpdate) IsEmpty() bool {
	return u.Status == nil && u.ReceiptStatus == nil && u.AdminNotes == nil
}

type OrderFilter struct {
	CustomerID    int64
	Status        OrderStatus
	ReceiptStatus ReceiptStatus
	Limit         int
	Offset        int
}

type OrderRepository interface {
	// Create inserts the order with its items and empties the customer's cart in one transaction.
	Create(ctx context.Context, order *Order) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, update OrderStatusUpdate) (*Order, error)
	// ClaimStockApplication marks stock as applied if it has not been already.
	// Exactly one caller per order ever observes claimed == true.
	ClaimStockApplication(ctx context.Context, id int64) (appliedAt time.Time, claimed bool, err error)
	// DeletePending deletes the order only while it is owned by customerID and awaiting payment.
	DeletePending(ctx context.Context, id, customerID int64) (bool, error)
	CountOpenByProduct(ctx context.Context, productID int64) (int, error)
}
