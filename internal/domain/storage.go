package domain

import (
	"context"
	"io"
)

// Accepted upload content types.
var (
	ReceiptTypes = []string{"image/jpeg", "image/png", "application/pdf"}
	ResumeTypes  = []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}
)

// FileStorage stores uploaded files and hands back a relative path to retrieve them by.
type FileStorage interface {
	Save(ctx context.Context, folder string, r io.Reader, allowed []string) (string, error)
	Delete(ctx context.Context, path string) error
	// Resolve returns the on-disk location of a stored path.
	Resolve(path string) (string, error)
}
