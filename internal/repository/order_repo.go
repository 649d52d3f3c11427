package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

const orderColumns = `id, customer_id, total_amount, receipt_path, receipt_status, status, admin_notes, stock_applied_at, created_at, updated_at`

func scanOrder(row rowScanner) (*domain.Order, error) {
	o := &domain.Order{}
	var appliedAt sql.NullTime
	err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.ReceiptPath, &o.ReceiptStatus,
		&o.Status, &o.AdminNotes, &appliedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		o.StockAppliedAt = &t
	}
	o.Items = []domain.OrderItem{}
	return o, nil
}

func (r *postgresOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer rollback(tx)

	orderQuery := `
        INSERT INTO orders (customer_id, total_amount, receipt_path, receipt_status, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, orderQuery, order.CustomerID, order.TotalAmount, order.ReceiptPath,
		order.ReceiptStatus, order.Status).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to insert order for customer %d: %v", order.CustomerID, err)
		return nil, classify(err, "order")
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO order_items (order_id, product_id, product_name, color, quantity, unit_price)
        VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return nil, fmt.Errorf("could not prepare item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range order.Items {
		if _, err := stmt.ExecContext(ctx, order.ID, item.ProductID, item.ProductName, item.Color, item.Quantity, item.UnitPrice); err != nil {
			r.log.Errorf("Repository: Failed to insert item (product %d, color %s) for order %d: %v", item.ProductID, item.Color, order.ID, err)
			return nil, classify(err, fmt.Sprintf("order item for product %d", item.ProductID))
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, order.CustomerID); err != nil {
		r.log.Errorf("Repository: Failed to clear cart of customer %d: %v", order.CustomerID, err)
		return nil, fmt.Errorf("could not clear cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.log.Errorf("Repository: Failed to commit order for customer %d: %v", order.CustomerID, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Infof("Repository: Order %d created with %d items for customer %d", order.ID, len(order.Items), order.CustomerID)
	return order, nil
}

func (r *postgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Order with ID %d not found", id)
			return nil, fmt.Errorf("order with id %d %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	where := []string{}
	args := []any{}
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ReceiptStatus != "" {
		args = append(args, filter.ReceiptStatus)
		where = append(where, fmt.Sprintf("receipt_status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list orders: %v", err)
		return nil, fmt.Errorf("could not list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	ptrs := make([]*domain.Order, len(orders))
	for i := range orders {
		ptrs[i] = &orders[i]
	}
	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, err
	}

	r.log.Debugf("Repository: Retrieved %d orders (limit: %d, offset: %d)", len(orders), limit, offset)
	return orders, nil
}

func (r *postgresOrderRepository) loadItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT order_id, product_id, product_name, color, quantity, unit_price
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY order_id, id`, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Repository: Failed to query items for orders %v: %v", ids, err)
		return fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &item.Color, &item.Quantity, &item.UnitPrice); err != nil {
			return fmt.Errorf("error scanning order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id int64, update domain.OrderStatusUpdate) (*domain.Order, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	if update.Status != nil {
		args = append(args, *update.Status)
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.ReceiptStatus != nil {
		args = append(args, *update.ReceiptStatus)
		setClauses = append(setClauses, fmt.Sprintf("receipt_status = $%d", len(args)))
	}
	if update.AdminNotes != nil {
		args = append(args, *update.AdminNotes)
		setClauses = append(setClauses, fmt.Sprintf("admin_notes = $%d", len(args)))
	}
	args = append(args, id)
	query := `UPDATE orders SET ` + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d RETURNING ", len(args)) + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		r.log.Warnf("Repository: Failed to update status of order %d: %v", id, err)
		return nil, classify(err, fmt.Sprintf("order with id %d", id))
	}
	if err := r.loadItems(ctx, []*domain.Order{order}); err != nil {
		return nil, fmt.Errorf("order status updated, but failed to retrieve items: %w", err)
	}

	r.log.Infof("Repository: Order %d updated (status %s, receipt %s)", order.ID, order.Status, order.ReceiptStatus)
	return order, nil
}

func (r *postgresOrderRepository) ClaimStockApplication(ctx context.Context, id int64) (time.Time, bool, error) {
	var appliedAt time.Time
	err := r.db.QueryRowContext(ctx, `
        UPDATE orders SET stock_applied_at = NOW()
        WHERE id = $1 AND stock_applied_at IS NULL
        RETURNING stock_applied_at`, id).Scan(&appliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		r.log.Errorf("Repository: Failed to claim stock application for order %d: %v", id, err)
		return time.Time{}, false, fmt.Errorf("could not claim stock application: %w", err)
	}
	return appliedAt, true, nil
}

func (r *postgresOrderRepository) DeletePending(ctx context.Context, id, customerID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM orders WHERE id = $1 AND customer_id = $2 AND status = $3`,
		id, customerID, domain.StatusPendingPayment)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete order %d: %v", id, err)
		return false, fmt.Errorf("could not delete order: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not confirm order deletion: %w", err)
	}
	return n > 0, nil
}

func (r *postgresOrderRepository) CountOpenByProduct(ctx context.Context, productID int64) (int, error) {
	statuses := make([]string, len(domain.OpenStatuses))
	for i, s := range domain.OpenStatuses {
		statuses[i] = string(s)
	}

	var count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(DISTINCT o.id)
        FROM orders o
        JOIN order_items i ON i.order_id = o.id
        WHERE i.product_id = $1 AND o.status = ANY($2)`, productID, pq.Array(statuses)).Scan(&count)
	if err != nil {
		r.log.Errorf("Repository: Failed to count open orders for product %d: %v", productID, err)
		return 0, fmt.Errorf("could not count open orders: %w", err)
	}
	return count, nil
}
