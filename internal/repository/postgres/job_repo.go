package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alumni-talent-platform/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

// Salaries are read as text so decimal precision survives the round trip.
const jobSelect = `
	SELECT j.id, j.company_id, j.title, j.description, j.location, j.employment_type,
	       j.salary_min::text, j.salary_max::text, j.tags, j.published, j.created_at, j.updated_at,
	       c.name, c.logo_url
	FROM jobs j
	JOIN companies c ON c.id = j.company_id`

func scanJob(row rowScanner, extra ...any) (*domain.Job, error) {
	var (
		job       domain.Job
		salaryMin *string
		salaryMax *string
		tags      []string
	)
	dest := []any{
		&job.ID, &job.CompanyID, &job.Title, &job.Description, &job.Location, &job.EmploymentType,
		&salaryMin, &salaryMax, pq.Array(&tags), &job.Published, &job.CreatedAt, &job.UpdatedAt,
		&job.CompanyName, &job.CompanyLogoURL,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if job.SalaryMin, err = parseDecimal(salaryMin); err != nil {
		return nil, err
	}
	if job.SalaryMax, err = parseDecimal(salaryMax); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	job.Tags = tags
	return &job, nil
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("parse numeric %q: %w", *s, err)
	}
	return &d, nil
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO jobs (company_id, title, description, location, employment_type,
		                  salary_min, salary_max, tags, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	return conn(ctx, r.db).QueryRow(ctx, query,
		job.CompanyID, job.Title, job.Description, job.Location, job.EmploymentType,
		decimalArg(job.SalaryMin), decimalArg(job.SalaryMax), pq.Array(job.Tags), job.Published,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	job, err := scanJob(conn(ctx, r.db).QueryRow(ctx, jobSelect+` WHERE j.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

// ListPublished only returns published jobs of published companies.
func (r *jobRepo) ListPublished(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int, error) {
	filter.Normalize()

	conds := []string{"j.published = TRUE", "c.published = TRUE"}
	var args []any
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(j.title ILIKE $%d OR j.description ILIKE $%d OR c.name ILIKE $%d)", len(args), len(args), len(args)))
	}
	if filter.EmploymentType != "" {
		args = append(args, filter.EmploymentType)
		conds = append(conds, fmt.Sprintf("j.employment_type = $%d", len(args)))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		conds = append(conds, fmt.Sprintf("$%d = ANY(j.tags)", len(args)))
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := strings.Replace(jobSelect, "c.logo_url", "c.logo_url, COUNT(*) OVER()", 1) +
		` WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(` ORDER BY j.created_at DESC, j.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		items []domain.Job
		total int
	)
	for rows.Next() {
		job, err := scanJob(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *jobRepo) ListByCompany(ctx context.Context, companyID int64) ([]domain.Job, error) {
	rows, err := conn(ctx, r.db).Query(ctx, jobSelect+` WHERE j.company_id = $1 ORDER BY j.created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *job)
	}
	return items, rows.Err()
}

func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `
		UPDATE jobs SET title = $2, description = $3, location = $4, employment_type = $5,
		       salary_min = $6::numeric, salary_max = $7::numeric, tags = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return conn(ctx, r.db).QueryRow(ctx, query,
		job.ID, job.Title, job.Description, job.Location, job.EmploymentType,
		decimalArg(job.SalaryMin), decimalArg(job.SalaryMax), pq.Array(job.Tags),
	).Scan(&job.UpdatedAt)
}

func (r *jobRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE jobs SET published = $2, updated_at = NOW() WHERE id = $1`, id, published)
	return err
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	return err
}
