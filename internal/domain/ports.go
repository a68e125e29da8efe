package domain

import "context"

// Transactor runs fn in one database transaction. Repositories called with
// the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ObjectStorage interface {
	Put(ctx context.Context, content []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}

// UploadQuota limits how many files a user may upload per day.
type UploadQuota interface {
	Allow(ctx context.Context, userID string) (bool, error)
}
