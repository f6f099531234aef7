package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, first_name, last_name, birthday, email, phone_number, password_hash, is_admin, created_at, updated_at`

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	err := r.db.QueryRow(ctx, `INSERT INTO users (first_name, last_name, birthday, email, phone_number, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.FirstName, user.LastName, user.Birthday, user.Email, user.PhoneNumber, user.PasswordHash, user.IsAdmin).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return mapWriteError(err, "failed to create user")
	}
	return nil
}

func (r *PGUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email)=lower($1)`, email)
	return scanUser(row)
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `UPDATE users
		SET first_name=$1, last_name=$2, birthday=$3, email=$4, phone_number=$5, updated_at=now()
		WHERE id=$6
		RETURNING `+userColumns,
		user.FirstName, user.LastName, user.Birthday, strings.ToLower(user.Email), user.PhoneNumber, user.ID)

	var u domain.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Birthday, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFoundf("user not found")
		}
		return nil, mapWriteError(err, "failed to update user")
	}
	return &u, nil
}

func (r *PGUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=now() WHERE id=$2`, passwordHash, id)
	if err != nil {
		return domain.StorageError("failed to update password", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFoundf("user not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Birthday, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapReadError(err, "user not found", "failed to load user")
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
