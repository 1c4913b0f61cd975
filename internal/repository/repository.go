package repository

import (
	"context"
	"database/sql"

	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

// Aggregate holds sum/avg/count figures for a predicate.
type Aggregate struct {
	Sum   float64
	Avg   float64
	Count int64
}

// TransactionRepository is the persistence gateway consumed by the service
// layer. Find, Count and Aggregate all interpret the same predicate tree, so
// one predicate always describes one row set.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	Update(ctx context.Context, tx *models.Transaction) error
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, pred query.Predicate, sort query.Sort, offset, limit int) ([]models.Transaction, error)
	Count(ctx context.Context, pred query.Predicate) (int64, error)
	Aggregate(ctx context.Context, pred query.Predicate) (Aggregate, error)
}

// UserRepository provides user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Transactions returns the transaction gateway.
func (r *Repository) Transactions() TransactionRepository {
	return &PostgresTransactionRepository{db: r.db}
}

// Users returns the user gateway.
func (r *Repository) Users() UserRepository {
	return &PostgresUserRepository{db: r.db}
}
