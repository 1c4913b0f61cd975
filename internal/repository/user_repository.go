package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
)

// PostgresUserRepository implements UserRepository on postgres.
type PostgresUserRepository struct {
	db *sql.DB
}

// NewUserRepository initializes a user repository
func NewUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create creates a new user in the database
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	q := `
		INSERT INTO fraud.users (name, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, user.Name, user.Email, user.PasswordHash, user.Role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return apperrors.ErrEmailTaken
		}
		return apperrors.NewPersistenceError("create user", err)
	}
	return nil
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	q := `
		SELECT id, name, email, password_hash, role, created_at
		FROM fraud.users
		WHERE email = $1`
	err := r.db.QueryRowContext(ctx, q, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("find user by email", err)
	}
	return user, nil
}

// GetByID retrieves a user by id
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	q := `
		SELECT id, name, email, password_hash, role, created_at
		FROM fraud.users
		WHERE id = $1`
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("find user by id", err)
	}
	return user, nil
}
