package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type companyRepo struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) domain.CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, name, tax_id, email, description, website, logo_url, tags, published, created_at, updated_at`

func scanCompany(row rowScanner, extra ...any) (*domain.Company, error) {
	var c domain.Company
	var tags []string
	dest := []any{
		&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Description, &c.Website, &c.LogoURL,
		pq.Array(&tags), &c.Published, &c.CreatedAt, &c.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}
	c.Tags = tags
	return &c, nil
}

func (r *companyRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Company, error) {
	c, err := scanCompany(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *companyRepo) Create(ctx context.Context, c *domain.Company) error {
	if c.Tags == nil {
		c.Tags = []string{}
	}
	query := `
		INSERT INTO companies (name, tax_id, email, description, website, logo_url, tags, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := conn(ctx, r.db).QueryRow(ctx, query,
		c.Name, c.TaxID, c.Email, c.Description, c.Website, c.LogoURL, pq.Array(c.Tags), c.Published,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("A company already exists for this email")
		}
		return err
	}
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *companyRepo) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	return r.getOne(ctx, `SELECT `+companyColumns+` FROM companies WHERE email = $1`, email)
}

func (r *companyRepo) List(ctx context.Context, filter domain.CompanyFilter) ([]domain.Company, int, error) {
	filter.Normalize()

	var (
		conds []string
		args  []any
	)
	if filter.Published != nil {
		args = append(args, *filter.Published)
		conds = append(conds, fmt.Sprintf("published = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%", s)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR $%d = ANY(tags))", len(args)-1, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT %s, COUNT(*) OVER() FROM companies%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, companyColumns, where, len(args)-1, len(args))

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		items []domain.Company
		total int
	)
	for rows.Next() {
		c, err := scanCompany(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *companyRepo) Update(ctx context.Context, c *domain.Company) error {
	query := `
		UPDATE companies SET description = $2, website = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return conn(ctx, r.db).QueryRow(ctx, query, c.ID, c.Description, c.Website, pq.Array(c.Tags)).Scan(&c.UpdatedAt)
}

func (r *companyRepo) UpdateLogo(ctx context.Context, id int64, logoURL string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE companies SET logo_url = $2, updated_at = NOW() WHERE id = $1`, id, logoURL)
	return err
}

func (r *companyRepo) SetPublished(ctx context.Context, id int64, published bool) error {
	_, err := conn(ctx, r.db).Exec(ctx, `UPDATE companies SET published = $2, updated_at = NOW() WHERE id = $1`, id, published)
	return err
}
