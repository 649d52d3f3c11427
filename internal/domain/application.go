package domain

import (
	"context"
	"time"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func IsValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected:
		return true
	default:
		return false
	}
}

type JobApplication struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Position    string            `json:"position"`
	CoverLetter string            `json:"cover_letter"`
	ResumePath  string            `json:"resume_path,omitempty"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *JobApplication) (*JobApplication, error)
	GetByID(ctx context.Context, id int64) (*JobApplication, error)
	List(ctx context.Context, status ApplicationStatus, limit, offset int) ([]JobApplication, error)
	UpdateStatus(ctx context.Context, id int64, status ApplicationStatus) (*JobApplication, error)
	// Delete removes the application and returns its résumé path.
	Delete(ctx context.Context, id int64) (string, error)
	// DeleteOlderThan removes applications in status created before cutoff and returns their résumé paths.
	DeleteOlderThan(ctx context.Context, status ApplicationStatus, cutoff time.Time) ([]string, error)
}

type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *ContactMessage) (*ContactMessage, error)
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]ContactMessage, error)
	MarkRead(ctx context.Context, id int64) (*ContactMessage, error)
	Delete(ctx context.Context, id int64) error
}
