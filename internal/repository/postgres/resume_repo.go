package postgres

import (
	"context"
	"errors"

	"alumni-talent-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

const resumeColumns = `id, user_id, title, object_key, url, file_name, content_type, size_bytes, created_at`

func scanResume(row rowScanner) (*domain.Resume, error) {
	var res domain.Resume
	err := row.Scan(&res.ID, &res.UserID, &res.Title, &res.ObjectKey, &res.URL,
		&res.FileName, &res.ContentType, &res.SizeBytes, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *resumeRepo) Create(ctx context.Context, res *domain.Resume) error {
	query := `
		INSERT INTO resumes (user_id, title, object_key, url, file_name, content_type, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id, created_at`
	return conn(ctx, r.db).QueryRow(ctx, query,
		res.UserID, res.Title, res.ObjectKey, res.URL, res.FileName, res.ContentType, res.SizeBytes,
	).Scan(&res.ID, &res.CreatedAt)
}

func (r *resumeRepo) GetByID(ctx context.Context, id int64) (*domain.Resume, error) {
	res, err := scanResume(conn(ctx, r.db).QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return res, nil
}

func (r *resumeRepo) ListByUser(ctx context.Context, userID string) ([]domain.Resume, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *res)
	}
	return items, rows.Err()
}

func (r *resumeRepo) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	return err
}
