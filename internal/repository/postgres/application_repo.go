package postgres

import (
	"context"
	"errors"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

const applicationSelect = `
	SELECT a.id, a.user_id, a.job_id, COALESCE(a.resume_id, 0), a.cover_letter, a.status, a.created_at, a.updated_at,
	       j.title, c.name, u.email, COALESCE(r.url, '')
	FROM applications a
	JOIN jobs j ON j.id = a.job_id
	JOIN companies c ON c.id = j.company_id
	JOIN users u ON u.id = a.user_id
	LEFT JOIN resumes r ON r.id = a.resume_id`

func scanApplication(row rowScanner) (*domain.Application, error) {
	var app domain.Application
	err := row.Scan(
		&app.ID, &app.UserID, &app.JobID, &app.ResumeID, &app.CoverLetter, &app.Status,
		&app.CreatedAt, &app.UpdatedAt,
		&app.JobTitle, &app.CompanyName, &app.ApplicantEmail, &app.ResumeURL,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) list(ctx context.Context, query string, args ...any) ([]domain.Application, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *app)
	}
	return items, rows.Err()
}

func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	if app.Status == "" {
		app.Status = domain.ApplicationApplied
	}
	query := `
		INSERT INTO applications (user_id, job_id, resume_id, cover_letter, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		app.UserID, app.JobID, app.ResumeID, app.CoverLetter, app.Status,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("You have already applied to this job")
		}
		return err
	}
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	app, err := scanApplication(conn(ctx, r.db).QueryRow(ctx, applicationSelect+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) Exists(ctx context.Context, userID string, jobID int64) (bool, error) {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM applications WHERE user_id = $1 AND job_id = $2)`, userID, jobID,
	).Scan(&exists)
	return exists, err
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	return r.list(ctx, applicationSelect+` WHERE a.user_id = $1 ORDER BY a.created_at DESC`, userID)
}

func (r *applicationRepo) ListByJob(ctx context.Context, jobID int64) ([]domain.Application, error) {
	return r.list(ctx, applicationSelect+` WHERE a.job_id = $1 ORDER BY a.created_at DESC`, jobID)
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	return err
}
