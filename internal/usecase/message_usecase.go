package usecase

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

type MessageUseCase interface {
	SendMessage(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error)
	ListMessages(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.ContactMessage, error)
	MarkRead(ctx context.Context, id int64) (*domain.ContactMessage, error)
	DeleteMessage(ctx context.Context, id int64) error
}

type messageUseCase struct {
	repo domain.MessageRepository
	log  *logrus.Logger
}

func NewMessageUseCase(repo domain.MessageRepository, logger *logrus.Logger) MessageUseCase {
	return &messageUseCase{repo: repo, log: logger}
}

func (uc *messageUseCase) SendMessage(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.ToLower(strings.TrimSpace(msg.Email))
	msg.Subject = strings.TrimSpace(msg.Subject)
	msg.Body = strings.TrimSpace(msg.Body)
	if msg.Name == "" || msg.Subject == "" || msg.Body == "" {
		return nil, fmt.Errorf("%w: name, subject and message are required", domain.ErrInvalidInput)
	}
	if !isValidEmail(msg.Email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	created, err := uc.repo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	uc.log.Infof("Use Case: Contact message %d received from %s", created.ID, created.Email)
	return created, nil
}

func (uc *messageUseCase) ListMessages(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.ContactMessage, error) {
	return uc.repo.List(ctx, unreadOnly, limit, offset)
}

func (uc *messageUseCase) MarkRead(ctx context.Context, id int64) (*domain.ContactMessage, error) {
	return uc.repo.MarkRead(ctx, id)
}

func (uc *messageUseCase) DeleteMessage(ctx context.Context, id int64) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Failed to delete contact message %d: %v", id, err)
		return err
	}
	return nil
}
