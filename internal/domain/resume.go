package domain

import (
	"context"
	"time"
)

type Resume struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	ObjectKey   string    `json:"-"`
	URL         string    `json:"url"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
}

type ResumeRepository interface {
	Create(ctx context.Context, resume *Resume) error
	GetByID(ctx context.Context, id int64) (*Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	Delete(ctx context.Context, id int64) error
}

type ResumeUsecase interface {
	Upload(ctx context.Context, user *User, title string, file *FileUpload) (*Resume, error)
	List(ctx context.Context, user *User) ([]Resume, error)
	Delete(ctx context.Context, user *User, id int64) error
}
