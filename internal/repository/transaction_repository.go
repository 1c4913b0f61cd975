package repository

import (
	"context"
	"database/sql"
	"fmt"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

const transactionColumns = "id, user_id, amount, type, status, description, merchant, location, created_at"

// PostgresTransactionRepository implements TransactionRepository on postgres.
type PostgresTransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository initializes a transaction repository
func NewTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

// Create stores a new transaction and fills in its id and creation time.
func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	q := `
		INSERT INTO fraud.transactions (user_id, amount, type, status, description, merchant, location, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q,
		tx.UserID, tx.Amount, tx.Type, tx.Status, tx.Description, tx.Merchant, tx.Location).
		Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return apperrors.NewPersistenceError("create transaction", err)
	}
	return nil
}

// GetByID retrieves a transaction by its id.
func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	tx := &models.Transaction{}
	q := fmt.Sprintf(`SELECT %s FROM fraud.transactions WHERE id = $1`, transactionColumns)
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Status,
		&tx.Description, &tx.Merchant, &tx.Location, &tx.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("get transaction", err)
	}
	return tx, nil
}

// Update rewrites the mutable fields of an existing transaction. The creation
// timestamp is immutable once set.
func (r *PostgresTransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	q := `
		UPDATE fraud.transactions
		SET amount = $1, type = $2, status = $3, description = $4, merchant = $5, location = $6
		WHERE id = $7`
	res, err := r.db.ExecContext(ctx, q,
		tx.Amount, tx.Type, tx.Status, tx.Description, tx.Merchant, tx.Location, tx.ID)
	if err != nil {
		return apperrors.NewPersistenceError("update transaction", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewPersistenceError("update transaction", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction by its id.
func (r *PostgresTransactionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM fraud.transactions WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewPersistenceError("delete transaction", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewPersistenceError("delete transaction", err)
	}
	if affected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// Find returns one page of transactions matching the predicate.
func (r *PostgresTransactionRepository) Find(ctx context.Context, pred query.Predicate, sort query.Sort, offset, limit int) ([]models.Transaction, error) {
	b := &sqlBuilder{}
	where, err := b.compile(pred)
	if err != nil {
		return nil, apperrors.NewPersistenceError("compile predicate", err)
	}
	q := fmt.Sprintf(`SELECT %s FROM fraud.transactions WHERE %s ORDER BY %s LIMIT %s OFFSET %s`,
		transactionColumns, where, orderBy(sort), b.placeholder(limit), b.placeholder(offset))

	rows, err := r.db.QueryContext(ctx, q, b.args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("find transactions", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Status,
			&tx.Description, &tx.Merchant, &tx.Location, &tx.CreatedAt)
		if err != nil {
			return nil, apperrors.NewPersistenceError("scan transaction", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("iterate transactions", err)
	}
	return transactions, nil
}

// Count evaluates the total number of rows matching the predicate.
func (r *PostgresTransactionRepository) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	b := &sqlBuilder{}
	where, err := b.compile(pred)
	if err != nil {
		return 0, apperrors.NewPersistenceError("compile predicate", err)
	}
	var count int64
	q := fmt.Sprintf(`SELECT COUNT(*) FROM fraud.transactions WHERE %s`, where)
	if err := r.db.QueryRowContext(ctx, q, b.args...).Scan(&count); err != nil {
		return 0, apperrors.NewPersistenceError("count transactions", err)
	}
	return count, nil
}

// Aggregate computes sum/avg/count over the predicate in one pass.
func (r *PostgresTransactionRepository) Aggregate(ctx context.Context, pred query.Predicate) (Aggregate, error) {
	b := &sqlBuilder{}
	where, err := b.compile(pred)
	if err != nil {
		return Aggregate{}, apperrors.NewPersistenceError("compile predicate", err)
	}
	var agg Aggregate
	q := fmt.Sprintf(`SELECT COALESCE(SUM(amount), 0), COALESCE(AVG(amount), 0), COUNT(*) FROM fraud.transactions WHERE %s`, where)
	if err := r.db.QueryRowContext(ctx, q, b.args...).Scan(&agg.Sum, &agg.Avg, &agg.Count); err != nil {
		return Aggregate{}, apperrors.NewPersistenceError("aggregate transactions", err)
	}
	return agg, nil
}
