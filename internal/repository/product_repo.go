package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

const productColumns = `id, name, description, price, category_id, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	p := &domain.Product{}
	var categoryID sql.NullInt64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &categoryID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := categoryID.Int64
		p.CategoryID = &id
	}
	p.Colors = []domain.ColorVariant{}
	return p, nil
}

func (r *postgresProductRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Repository: Failed to begin transaction for product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer rollback(tx)

	query := `
        INSERT INTO products (name, description, price, category_id, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err = tx.QueryRowContext(ctx, query, product.Name, product.Description, product.Price, product.CategoryID, product.Status).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, classify(err, "product")
	}

	if err := insertColors(ctx, tx, product.ID, product.Colors); err != nil {
		r.log.Errorf("Repository: Failed to insert colors for product %d: %v", product.ID, err)
		return nil, classify(err, "product color")
	}

	if err := tx.Commit(); err != nil {
		r.log.Errorf("Repository: Failed to commit product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Infof("Repository: Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func insertColors(ctx context.Context, tx *sql.Tx, productID int64, colors []domain.ColorVariant) error {
	if len(colors) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO product_colors (product_id, name, quantity, position) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range colors {
		if _, err := stmt.ExecContext(ctx, productID, c.Name, c.Quantity, i); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %d not found", id)
			return nil, fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Repository: Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	if err := r.loadColors(ctx, []*domain.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *postgresProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset)

	where := []string{}
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID > 0 {
		args = append(args, filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to list products (limit %d, offset %d): %v", limit, offset, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Repository: Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	ptrs := make([]*domain.Product, len(products))
	for i := range products {
		ptrs[i] = &products[i]
	}
	if err := r.loadColors(ctx, ptrs); err != nil {
		return nil, err
	}

	r.log.Debugf("Repository: Retrieved %d products (limit: %d, offset: %d)", len(products), limit, offset)
	return products, nil
}

// loadColors fills the colour variants of all given products with one query.
func (r *postgresProductRepository) loadColors(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(products))
	byID := make(map[int64]*domain.Product, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT product_id, name, quantity
        FROM product_colors
        WHERE product_id = ANY($1)
        ORDER BY product_id, position`, pq.Array(ids))
	if err != nil {
		r.log.Errorf("Repository: Failed to load colors for products %v: %v", ids, err)
		return fmt.Errorf("could not load product colors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var c domain.ColorVariant
		var qty sql.NullInt64
		if err := rows.Scan(&productID, &c.Name, &qty); err != nil {
			return fmt.Errorf("error scanning product color: %w", err)
		}
		if qty.Valid {
			q := int(qty.Int64)
			c.Quantity = &q
		}
		if p, ok := byID[productID]; ok {
			p.Colors = append(p.Colors, c)
		}
	}
	return rows.Err()
}

func (r *postgresProductRepository) Update(ctx context.Context, id int64, update domain.ProductUpdate) (*domain.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer rollback(tx)

	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Price != nil {
		add("price", *update.Price)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.CategoryID != nil {
		// zero detaches the product from its category
		var categoryID any
		if *update.CategoryID > 0 {
			categoryID = *update.CategoryID
		}
		add("category_id", categoryID)
	}

	args = append(args, id)
	query := `UPDATE products SET ` + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", len(args))
	r.log.Debugf("Repository: Executing partial update query for ID %d: %s", id, query)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Repository: Failed to execute partial update for product ID %d: %v", id, err)
		return nil, classify(err, "product")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update", id)
		return nil, fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}

	if update.Colors != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_colors WHERE product_id = $1`, id); err != nil {
			return nil, fmt.Errorf("could not replace product colors: %w", err)
		}
		if err := insertColors(ctx, tx, id, *update.Colors); err != nil {
			return nil, classify(err, "product color")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	r.log.Infof("Repository: Partial update successful for product ID %d", id)
	return r.GetByID(ctx, id)
}

func (r *postgresProductRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("product with id %d %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Repository: Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) SetColorQuantity(ctx context.Context, productID int64, color string, quantity *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE product_colors SET quantity = $3 WHERE product_id = $1 AND name = $2`,
		productID, color, quantity)
	if err != nil {
		r.log.Errorf("Repository: Failed to set quantity of color '%s' on product %d: %v", color, productID, err)
		return classify(err, "product color")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("color '%s' of product %d %w", color, productID, domain.ErrNotFound)
	}
	_, err = r.db.ExecContext(ctx, `UPDATE products SET updated_at = NOW() WHERE id = $1`, productID)
	if err != nil {
		r.log.Warnf("Repository: Could not touch product %d after quantity change: %v", productID, err)
	}
	return nil
}

func (r *postgresProductRepository) DecrementColorStock(ctx context.Context, productID int64, color string, n int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE product_colors
        SET quantity = GREATEST(quantity - $3, 0)
        WHERE product_id = $1 AND name = $2 AND quantity IS NOT NULL`,
		productID, color, n)
	if err != nil {
		r.log.Errorf("Repository: Failed to decrement stock of product %d color '%s' by %d: %v", productID, color, n, err)
		return false, fmt.Errorf("could not decrement stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not confirm stock decrement: %w", err)
	}
	return affected > 0, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
