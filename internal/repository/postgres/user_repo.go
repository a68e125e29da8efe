package postgres

import (
	"context"
	"errors"
	"time"

	"alumni-talent-platform/internal/domain"
	"alumni-talent-platform/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, username, avatar_url, role, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.AvatarURL,
		&user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, username, avatar_url, role, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Email, user.Username, user.AvatarURL,
		user.Role, user.Status, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return err
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(conn(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(conn(ctx, r.db).QueryRow(ctx, query, email))
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $2, avatar_url = $3, updated_at = NOW() WHERE id = $1`
	_, err := conn(ctx, r.db).Exec(ctx, query, user.ID, user.Username, user.AvatarURL)
	return err
}

func (r *userRepo) UpdateAccess(ctx context.Context, id string, role domain.Role, status domain.UserStatus) error {
	query := `UPDATE users SET role = $2, status = $3, updated_at = NOW() WHERE id = $1`
	_, err := conn(ctx, r.db).Exec(ctx, query, id, role, status)
	return err
}

func (r *userRepo) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	query := `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := conn(ctx, r.db).Exec(ctx, query, id, status)
	return err
}
