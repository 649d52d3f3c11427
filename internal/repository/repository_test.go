package repository

import (
	"context"
	"database/sql"
	"io"
	"regexp"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *logrus.Logger) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return db, mock, logger
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestDecrementColorStock(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresProductRepository(db, logger)

	mock.ExpectExec(q("SET quantity = GREATEST(quantity - $3, 0)")).
		WithArgs(int64(7), "Red", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("SET quantity = GREATEST(quantity - $3, 0)")).
		WithArgs(int64(7), "Blue", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.DecrementColorStock(context.Background(), 7, "Red", 2)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.DecrementColorStock(context.Background(), 7, "Blue", 1)
	require.NoError(t, err)
	assert.False(t, applied, "untracked or missing colour is reported as not applied")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductNotFound(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresProductRepository(db, logger)

	mock.ExpectQuery(q("FROM products WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductLoadsColors(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresProductRepository(db, logger)
	now := time.Now()

	mock.ExpectQuery(q("FROM products WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "category_id", "status", "created_at", "updated_at"}).
			AddRow(int64(1), "Chair", "", "49.90", nil, "active", now, now))
	mock.ExpectQuery(q("FROM product_colors")).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "name", "quantity"}).
			AddRow(int64(1), "Red", int64(10)).
			AddRow(int64(1), "Oak", nil))

	p, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("49.90")))
	assert.Nil(t, p.CategoryID)
	require.Len(t, p.Colors, 2)
	require.NotNil(t, p.Colors[0].Quantity)
	assert.Equal(t, 10, *p.Colors[0].Quantity)
	assert.Nil(t, p.Colors[1].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimStockApplication(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)
	now := time.Now()

	mock.ExpectQuery(q("WHERE id = $1 AND stock_applied_at IS NULL")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_applied_at"}).AddRow(now))
	mock.ExpectQuery(q("WHERE id = $1 AND stock_applied_at IS NULL")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_applied_at"}))

	at, claimed, err := repo.ClaimStockApplication(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.WithinDuration(t, now, at, time.Second)

	_, claimed, err = repo.ClaimStockApplication(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePendingOrder(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)

	mock.ExpectExec(q("DELETE FROM orders WHERE id = $1 AND customer_id = $2 AND status = $3")).
		WithArgs(int64(9), int64(2), "pending_payment").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeletePending(context.Background(), 9, 2)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderClearsCartInSameTransaction(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)
	now := time.Now()

	order := &domain.Order{
		CustomerID:    2,
		TotalAmount:   decimal.RequireFromString("30.00"),
		ReceiptPath:   "receipts/a.pdf",
		ReceiptStatus: domain.ReceiptPending,
		Status:        domain.StatusPendingPayment,
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "Chair", Color: "Red", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WithArgs(int64(2), sqlmock.AnyArg(), "receipts/a.pdf", "pending", "pending_payment").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	prep := mock.ExpectPrepare(q("INSERT INTO order_items"))
	prep.ExpectExec().
		WithArgs(int64(11), int64(1), "Chair", "Red", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("DELETE FROM cart_items WHERE customer_id = $1")).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderRollsBackWhenCartClearFails(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))
	mock.ExpectPrepare(q("INSERT INTO order_items"))
	mock.ExpectExec(q("DELETE FROM cart_items")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &domain.Order{CustomerID: 2, Status: domain.StatusPendingPayment})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOpenByProduct(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)

	mock.ExpectQuery(q("o.status = ANY($2)")).
		WithArgs(int64(4), pq.Array([]string{"pending_payment", "processing", "confirmed", "shipped"})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountOpenByProduct(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineUpserts(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresCartRepository(db, logger)

	mock.ExpectExec(q("DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity")).
		WithArgs(int64(2), int64(1), "Red", 3).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.AddLine(context.Background(), 2, 1, "Red", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLineQuantityOutOfRange(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresCartRepository(db, logger)

	mock.ExpectExec(q("INSERT INTO cart_items")).
		WithArgs(int64(2), int64(1), "Red", 3000000000).
		WillReturnError(&pq.Error{Code: "22003", Message: "integer out of range"})

	err := repo.AddLine(context.Background(), 2, 1, "Red", 3000000000)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTotalOutOfRange(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresOrderRepository(db, logger)

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO orders")).
		WillReturnError(&pq.Error{Code: "22003", Message: "numeric field overflow"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), &domain.Order{
		CustomerID:    2,
		TotalAmount:   decimal.RequireFromString("99999999999.00"),
		ReceiptStatus: domain.ReceiptPending,
		Status:        domain.StatusPendingPayment,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLineMergesOnColorCollision(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresCartRepository(db, logger)

	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT product_id FROM cart_items")).
		WithArgs(int64(20), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(int64(1)))
	mock.ExpectQuery(q("AND id <> $4")).
		WithArgs(int64(2), int64(1), "Blue", int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec(q("SET quantity = quantity + $1 WHERE id = $2")).
		WithArgs(4, int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM cart_items WHERE id = $1")).
		WithArgs(int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpdateLine(context.Background(), 2, 20, "Blue", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveLineNotOwned(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresCartRepository(db, logger)

	mock.ExpectExec(q("DELETE FROM cart_items WHERE id = $1 AND customer_id = $2")).
		WithArgs(int64(20), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.RemoveLine(context.Background(), 3, 20)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresUserRepository(db, logger)

	mock.ExpectQuery(q("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation, Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &domain.User{Email: "a@b.c", Role: domain.RoleCustomer})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeleteApplicationsOlderThan(t *testing.T) {
	db, mock, logger := newMock(t)
	repo := NewPostgresApplicationRepository(db, logger)
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	mock.ExpectQuery(q("WHERE status = $1 AND created_at < $2")).
		WithArgs("rejected", cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"resume_path"}).AddRow("resumes/a.pdf").AddRow(""))

	paths, err := repo.DeleteOlderThan(context.Background(), domain.ApplicationRejected, cutoff)
	require.NoError(t, err)
	assert.Equal(t, []string{"resumes/a.pdf", ""}, paths)
	assert.NoError(t, mock.ExpectationsWereMet())
}
