package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresMessageRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresMessageRepository(db *sql.DB, logger *logrus.Logger) domain.MessageRepository {
	return &postgresMessageRepository{
		db:  db,
		log: logger,
	}
}

const messageColumns = `id, name, email, subject, body, is_read, created_at`

func scanMessage(row rowScanner) (*domain.ContactMessage, error) {
	m := &domain.ContactMessage{}
	if err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *postgresMessageRepository) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	err := r.db.QueryRowContext(ctx, `
        INSERT INTO contact_messages (name, email, subject, body)
        VALUES ($1, $2, $3, $4)
        RETURNING id, is_read, created_at`, msg.Name, msg.Email, msg.Subject, msg.Body).
		Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to store contact message from %s: %v", msg.Email, err)
		return nil, classify(err, "contact message")
	}
	return msg, nil
}

func (r *postgresMessageRepository) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.ContactMessage, error) {
	limit, offset = clampPage(limit, offset)

	query := `SELECT ` + messageColumns + ` FROM contact_messages`
	if unreadOnly {
		query += ` WHERE is_read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.log.Errorf("Repository: Failed to list contact messages: %v", err)
		return nil, fmt.Errorf("could not list contact messages: %w", err)
	}
	defer rows.Close()

	msgs := []domain.ContactMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning contact message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}
	return msgs, nil
}

func (r *postgresMessageRepository) MarkRead(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	msg, err := scanMessage(r.db.QueryRowContext(ctx,
		`UPDATE contact_messages SET is_read = TRUE WHERE id = $1 RETURNING `+messageColumns, id))
	if err != nil {
		return nil, classify(err, fmt.Sprintf("contact message with id %d", id))
	}
	return msg, nil
}

func (r *postgresMessageRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete contact message %d: %v", id, err)
		return fmt.Errorf("could not delete contact message: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("contact message with id %d %w", id, domain.ErrNotFound)
	}
	return nil
}
