package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresCartRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCartRepository(db *sql.DB, logger *logrus.Logger) domain.CartRepository {
	return &postgresCartRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCartRepository) Lines(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT c.id, c.product_id, c.color, c.quantity, p.name, p.price, p.status
        FROM cart_items c
        JOIN products p ON p.id = c.product_id
        WHERE c.customer_id = $1
        ORDER BY c.id ASC`, customerID)
	if err != nil {
		r.log.Errorf("Repository: Failed to load cart for customer %d: %v", customerID, err)
		return nil, fmt.Errorf("could not load cart: %w", err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		line := domain.CartLine{Product: &domain.CartProduct{}}
		if err := rows.Scan(&line.ID, &line.ProductID, &line.Color, &line.Quantity,
			&line.Product.Name, &line.Product.Price, &line.Product.Status); err != nil {
			return nil, fmt.Errorf("error scanning cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart lines: %w", err)
	}
	return lines, nil
}

func (r *postgresCartRepository) GetLine(ctx context.Context, customerID, lineID int64) (*domain.CartLine, error) {
	line := &domain.CartLine{}
	err := r.db.QueryRowContext(ctx, `
        SELECT id, product_id, color, quantity
        FROM cart_items
        WHERE id = $1 AND customer_id = $2`, lineID, customerID).
		Scan(&line.ID, &line.ProductID, &line.Color, &line.Quantity)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("cart line %d", lineID))
	}
	return line, nil
}

func (r *postgresCartRepository) AddLine(ctx context.Context, customerID, productID int64, color string, quantity int) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO cart_items (customer_id, product_id, color, quantity)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (customer_id, product_id, color)
        DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		customerID, productID, color, quantity)
	if err != nil {
		r.log.Errorf("Repository: Failed to add product %d (%s) to cart of customer %d: %v", productID, color, customerID, err)
		return classify(err, "cart line")
	}
	r.log.Debugf("Repository: Added %d x product %d (%s) to cart of customer %d", quantity, productID, color, customerID)
	return nil
}

func (r *postgresCartRepository) UpdateLine(ctx context.Context, customerID, lineID int64, color string, quantity int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer rollback(tx)

	var productID int64
	err = tx.QueryRowContext(ctx,
		`SELECT product_id FROM cart_items WHERE id = $1 AND customer_id = $2 FOR UPDATE`,
		lineID, customerID).Scan(&productID)
	if err != nil {
		return classify(err, fmt.Sprintf("cart line %d", lineID))
	}

	var otherID int64
	err = tx.QueryRowContext(ctx, `
        SELECT id FROM cart_items
        WHERE customer_id = $1 AND product_id = $2 AND color = $3 AND id <> $4
        FOR UPDATE`, customerID, productID, color, lineID).Scan(&otherID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `UPDATE cart_items SET color = $1, quantity = $2 WHERE id = $3`, color, quantity, lineID)
		if err != nil {
			return classify(err, "cart line")
		}
	case err != nil:
		return fmt.Errorf("could not check cart for duplicate line: %w", err)
	default:
		r.log.Infof("Repository: Merging cart line %d into line %d for customer %d", lineID, otherID, customerID)
		if _, err := tx.ExecContext(ctx, `UPDATE cart_items SET quantity = quantity + $1 WHERE id = $2`, quantity, otherID); err != nil {
			return classify(err, "cart line")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, lineID); err != nil {
			return fmt.Errorf("could not remove merged cart line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart update: %w", err)
	}
	return nil
}

func (r *postgresCartRepository) RemoveLine(ctx context.Context, customerID, lineID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1 AND customer_id = $2`, lineID, customerID)
	if err != nil {
		r.log.Errorf("Repository: Failed to remove cart line %d for customer %d: %v", lineID, customerID, err)
		return fmt.Errorf("could not remove cart line: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("cart line %d %w", lineID, domain.ErrNotFound)
	}
	return nil
}

func (r *postgresCartRepository) Clear(ctx context.Context, customerID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID); err != nil {
		r.log.Errorf("Repository: Failed to clear cart for customer %d: %v", customerID, err)
		return fmt.Errorf("could not clear cart: %w", err)
	}
	return nil
}
