package usecase

import (
	"context"
	"fmt"
	"testing"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryLifecycle(t *testing.T) {
	uc := NewCategoryUseCase(&fakeCategoryRepo{categories: map[int64]*domain.Category{}}, quietLogger())
	ctx := context.Background()

	c, err := uc.CreateCategory(ctx, "  Sofas ")
	require.NoError(t, err)
	assert.Equal(t, "Sofas", c.Name)

	_, err = uc.CreateCategory(ctx, "Sofas")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = uc.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	renamed, err := uc.RenameCategory(ctx, c.ID, "Couches")
	require.NoError(t, err)
	assert.Equal(t, "Couches", renamed.Name)

	require.NoError(t, uc.DeleteCategory(ctx, c.ID))
	_, err = uc.GetCategoryByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.DeleteCategory(ctx, 0), domain.ErrInvalidInput)
}

type fakeMessageRepo struct {
	msgs   map[int64]*domain.ContactMessage
	nextID int64
}

func (r *fakeMessageRepo) Create(_ context.Context, m *domain.ContactMessage) (*domain.ContactMessage, error) {
	r.nextID++
	m.ID = r.nextID
	r.msgs[m.ID] = m
	return m, nil
}

func (r *fakeMessageRepo) List(_ context.Context, unreadOnly bool, _, _ int) ([]domain.ContactMessage, error) {
	out := []domain.ContactMessage{}
	for _, m := range r.msgs {
		if !unreadOnly || !m.IsRead {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, id int64) (*domain.ContactMessage, error) {
	m, ok := r.msgs[id]
	if !ok {
		return nil, fmt.Errorf("contact message with id %d %w", id, domain.ErrNotFound)
	}
	m.IsRead = true
	return m, nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.msgs[id]; !ok {
		return fmt.Errorf("contact message with id %d %w", id, domain.ErrNotFound)
	}
	delete(r.msgs, id)
	return nil
}

func TestContactMessages(t *testing.T) {
	uc := NewMessageUseCase(&fakeMessageRepo{msgs: map[int64]*domain.ContactMessage{}}, quietLogger())
	ctx := context.Background()

	m, err := uc.SendMessage(ctx, &domain.ContactMessage{Name: "Eve", Email: "EVE@example.com", Subject: "Delivery", Body: "When?"})
	require.NoError(t, err)
	assert.Equal(t, "eve@example.com", m.Email)

	_, err = uc.SendMessage(ctx, &domain.ContactMessage{Name: "Eve", Email: "eve@example.com", Subject: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.MarkRead(ctx, m.ID)
	require.NoError(t, err)
	unread, err := uc.ListMessages(ctx, true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)

	require.NoError(t, uc.DeleteMessage(ctx, m.ID))
	assert.ErrorIs(t, uc.DeleteMessage(ctx, m.ID), domain.ErrNotFound)
}
