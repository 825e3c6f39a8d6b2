package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/coprra/coprra/internal/model"
	"github.com/coprra/coprra/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, name, email, password_hash, is_admin, created_at, updated_at"

// UserRepository provides account persistence for the auth flow.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. A duplicate email is reported as a validation error.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.InitMeta()
	}

	query := `INSERT INTO users (id, name, email, password_hash, is_admin, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, user.ID, user.Name, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pqUniqueViolationErrCode {
			return repository.NewValidationError("email", "already registered")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByEmail returns the user with the given email, or nil when absent.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = $1"

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	user, err := scanUser(stmt.QueryRowContext(ctx, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return user, nil
}

// FindByID returns the user with the given ID, or nil when absent.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = $1"

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare select statement: %w", err)
	}
	defer stmt.Close()

	user, err := scanUser(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return user, nil
}
