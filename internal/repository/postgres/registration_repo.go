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
)

type registrationRepo struct {
	db *pgxpool.Pool
}

func NewRegistrationRepository(db *pgxpool.Pool) domain.RegistrationRepository {
	return &registrationRepo{db: db}
}

// Both selects produce the same column list so they can be combined with
// UNION ALL; detail columns of the other kind are NULL.
const (
	alumniSelect = `
		SELECT 'alumni' AS kind, id, email, name, phone, status, rejection_reason, reviewed_by,
		       approved_at, rejected_at, created_at, updated_at,
		       student_id, department, graduation_year, degree, identity_document_key, diploma_key,
		       NULL::text AS company_name, NULL::text AS tax_id, NULL::text AS license_key
		FROM alumni_registrations`

	companySelect = `
		SELECT 'company' AS kind, id, email, name, phone, status, rejection_reason, reviewed_by,
		       approved_at, rejected_at, created_at, updated_at,
		       NULL::text AS student_id, NULL::text AS department, NULL::int AS graduation_year,
		       NULL::text AS degree, NULL::text AS identity_document_key, NULL::text AS diploma_key,
		       company_name, tax_id, license_key
		FROM company_registrations`
)

func selectFor(kind domain.RegistrationKind) (string, string, error) {
	switch kind {
	case domain.KindAlumni:
		return alumniSelect, "alumni_registrations", nil
	case domain.KindCompany:
		return companySelect, "company_registrations", nil
	}
	return "", "", fmt.Errorf("unknown registration kind %q", kind)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner, extra ...any) (*domain.Registration, error) {
	var (
		reg         domain.Registration
		kind        string
		studentID   *string
		department  *string
		gradYear    *int
		degree      *string
		identityKey *string
		diplomaKey  *string
		companyName *string
		taxID       *string
		licenseKey  *string
	)
	dest := []any{
		&kind, &reg.ID, &reg.Email, &reg.Name, &reg.Phone, &reg.Status,
		&reg.RejectionReason, &reg.ReviewedBy, &reg.ApprovedAt, &reg.RejectedAt,
		&reg.CreatedAt, &reg.UpdatedAt,
		&studentID, &department, &gradYear, &degree, &identityKey, &diplomaKey,
		&companyName, &taxID, &licenseKey,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	reg.Kind = domain.RegistrationKind(kind)
	switch reg.Kind {
	case domain.KindAlumni:
		reg.Alumni = &domain.AlumniDetails{
			StudentID:           deref(studentID),
			Department:          deref(department),
			Degree:              deref(degree),
			IdentityDocumentKey: deref(identityKey),
			DiplomaKey:          diplomaKey,
		}
		if gradYear != nil {
			reg.Alumni.GraduationYear = *gradYear
		}
	case domain.KindCompany:
		reg.Company = &domain.CompanyDetails{
			CompanyName: deref(companyName),
			TaxID:       deref(taxID),
			LicenseKey:  licenseKey,
		}
	}
	return &reg, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *registrationRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Registration, error) {
	reg, err := scanRegistration(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	err := r.insert(ctx, reg)
	if isUniqueViolation(err) {
		return apperror.Conflict("An active registration already exists for this email")
	}
	return err
}

func (r *registrationRepo) insert(ctx context.Context, reg *domain.Registration) error {
	db := conn(ctx, r.db)
	switch reg.Kind {
	case domain.KindAlumni:
		if reg.Alumni == nil {
			return errors.New("alumni registration without details")
		}
		query := `
			INSERT INTO alumni_registrations
				(email, name, phone, student_id, department, graduation_year, degree,
				 identity_document_key, diploma_key, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING id, created_at, updated_at`
		a := reg.Alumni
		return db.QueryRow(ctx, query,
			reg.Email, reg.Name, reg.Phone, a.StudentID, a.Department, a.GraduationYear, a.Degree,
			a.IdentityDocumentKey, a.DiplomaKey, reg.Status,
		).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	case domain.KindCompany:
		if reg.Company == nil {
			return errors.New("company registration without details")
		}
		query := `
			INSERT INTO company_registrations
				(email, name, phone, company_name, tax_id, license_key, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id, created_at, updated_at`
		c := reg.Company
		return db.QueryRow(ctx, query,
			reg.Email, reg.Name, reg.Phone, c.CompanyName, c.TaxID, c.LicenseKey, reg.Status,
		).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)
	}
	return fmt.Errorf("unknown registration kind %q", reg.Kind)
}

func (r *registrationRepo) GetByID(ctx context.Context, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	sel, _, err := selectFor(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, sel+` WHERE id = $1`, id)
}

func (r *registrationRepo) GetForUpdate(ctx context.Context, kind domain.RegistrationKind, id int64) (*domain.Registration, error) {
	sel, _, err := selectFor(kind)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, sel+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *registrationRepo) FindActiveByEmail(ctx context.Context, kind domain.RegistrationKind, email string) (*domain.Registration, error) {
	sel, _, err := selectFor(kind)
	if err != nil {
		return nil, err
	}
	query := sel + ` WHERE email = $1 AND status IN ('PENDING', 'APPROVED') ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, email)
}

func (r *registrationRepo) ListByEmail(ctx context.Context, email string) ([]domain.Registration, error) {
	query := `SELECT * FROM (` + alumniSelect + ` UNION ALL ` + companySelect + `) r
		WHERE email = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := conn(ctx, r.db).Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *reg)
	}
	return items, rows.Err()
}

func (r *registrationRepo) List(ctx context.Context, filter domain.RegistrationFilter) ([]domain.Registration, int, error) {
	filter.Normalize()

	var source string
	switch filter.Kind {
	case domain.KindAlumni:
		source = alumniSelect
	case domain.KindCompany:
		source = companySelect
	default:
		source = alumniSelect + ` UNION ALL ` + companySelect
	}

	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d OR company_name ILIKE $%d)", n, n, n))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf(`SELECT r.*, COUNT(*) OVER() AS total FROM (%s) r%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, source, where, len(args)-1, len(args))

	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		items []domain.Registration
		total int
	)
	for rows.Next() {
		reg, err := scanRegistration(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *registrationRepo) UpdateReview(ctx context.Context, reg *domain.Registration) error {
	_, table, err := selectFor(reg.Kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + `
		SET status = $2, rejection_reason = $3, reviewed_by = $4,
		    approved_at = $5, rejected_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err = conn(ctx, r.db).QueryRow(ctx, query,
		reg.ID, reg.Status, reg.RejectionReason, reg.ReviewedBy, reg.ApprovedAt, reg.RejectedAt,
	).Scan(&reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("registration %s/%d vanished during review", reg.Kind, reg.ID)
	}
	return err
}

func (r *registrationRepo) LockEmail(ctx context.Context, email string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, strings.ToLower(email))
	return err
}
