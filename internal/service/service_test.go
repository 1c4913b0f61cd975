package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/cache"
	"github.com/fraudsight/transaction-service/internal/config"
	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
	"github.com/fraudsight/transaction-service/internal/repository"
)

// fakeTransactionRepo is an in-memory persistence gateway. It interprets the
// same predicate trees the postgres gateway compiles to SQL, so service tests
// exercise real predicate semantics.
type fakeTransactionRepo struct {
	transactions []models.Transaction
	nextID       int64
	findCalls    int
	aggErr       error
	countErr     error
	findErr      error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{nextID: 1}
}

func (r *fakeTransactionRepo) add(tx models.Transaction) models.Transaction {
	tx.ID = r.nextID
	r.nextID++
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.transactions = append(r.transactions, tx)
	return tx
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	*tx = r.add(*tx)
	return nil
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.ID == id {
			found := tx
			return &found, nil
		}
	}
	return nil, apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) Update(ctx context.Context, tx *models.Transaction) error {
	for i := range r.transactions {
		if r.transactions[i].ID == tx.ID {
			r.transactions[i] = *tx
			return nil
		}
	}
	return apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) Delete(ctx context.Context, id int64) error {
	for i := range r.transactions {
		if r.transactions[i].ID == id {
			r.transactions = append(r.transactions[:i], r.transactions[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) Find(ctx context.Context, pred query.Predicate, s query.Sort, offset, limit int) ([]models.Transaction, error) {
	r.findCalls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	matched := r.matching(pred)
	sortTransactions(matched, s)
	if offset >= len(matched) {
		return []models.Transaction{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *fakeTransactionRepo) Count(ctx context.Context, pred query.Predicate) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return int64(len(r.matching(pred))), nil
}

func (r *fakeTransactionRepo) Aggregate(ctx context.Context, pred query.Predicate) (repository.Aggregate, error) {
	if r.aggErr != nil {
		return repository.Aggregate{}, r.aggErr
	}
	matched := r.matching(pred)
	agg := repository.Aggregate{Count: int64(len(matched))}
	for _, tx := range matched {
		agg.Sum += tx.Amount
	}
	if agg.Count > 0 {
		agg.Avg = agg.Sum / float64(agg.Count)
	}
	return agg, nil
}

func (r *fakeTransactionRepo) matching(pred query.Predicate) []models.Transaction {
	matched := []models.Transaction{}
	for _, tx := range r.transactions {
		if matches(pred, tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}

func matches(pred query.Predicate, tx models.Transaction) bool {
	switch p := pred.(type) {
	case query.And:
		for _, child := range p.Preds {
			if !matches(child, tx) {
				return false
			}
		}
		return true
	case query.Or:
		for _, child := range p.Preds {
			if matches(child, tx) {
				return true
			}
		}
		return false
	case query.Eq:
		switch p.Field {
		case query.FieldUserID:
			return tx.UserID == p.Value.(int64)
		case query.FieldType:
			return tx.Type == p.Value.(string)
		case query.FieldStatus:
			return tx.Status == p.Value.(string)
		}
		return false
	case query.Range:
		switch p.Field {
		case query.FieldAmount:
			if p.Min != nil && tx.Amount < p.Min.(float64) {
				return false
			}
			if p.Max != nil && tx.Amount > p.Max.(float64) {
				return false
			}
			return true
		case query.FieldCreatedAt:
			if p.Min != nil && tx.CreatedAt.Before(p.Min.(time.Time)) {
				return false
			}
			if p.Max != nil && tx.CreatedAt.After(p.Max.(time.Time)) {
				return false
			}
			return true
		}
		return false
	case query.Contains:
		var field string
		switch p.Field {
		case query.FieldDescription:
			field = tx.Description
		case query.FieldMerchant:
			field = tx.Merchant
		case query.FieldLocation:
			field = tx.Location
		}
		return strings.Contains(strings.ToLower(field), strings.ToLower(p.Term))
	default:
		return true
	}
}

func sortTransactions(txs []models.Transaction, s query.Sort) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i], txs[j]
		var less, equal bool
		switch s.Field {
		case query.FieldAmount:
			less, equal = a.Amount < b.Amount, a.Amount == b.Amount
		case query.FieldID:
			less, equal = a.ID < b.ID, a.ID == b.ID
		default:
			less, equal = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if equal {
			return a.ID < b.ID
		}
		if s.Descending {
			return !less
		}
		return less
	})
}

// fakeUserRepo is an in-memory user store.
type fakeUserRepo struct {
	users  []models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users = append(r.users, *user)
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// fakeStore is an in-memory cache.Store.
type fakeStore struct {
	entries map[string][]byte
	getErr  error
	setErr  error
	delErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string][]byte{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	val, ok := s.entries[key]
	return val, ok, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

func (s *fakeStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	if s.delErr != nil {
		return s.delErr
	}
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func newTestService() (*Service, *fakeTransactionRepo, *fakeUserRepo, *fakeStore) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	txRepo := newFakeTransactionRepo()
	userRepo := newFakeUserRepo()
	store := newFakeStore()
	svc := NewService(txRepo, userRepo, cache.NewCoordinator(store, log), log, &config.Config{JWTSecret: "test-secret"})
	return svc, txRepo, userRepo, store
}

var (
	customer = models.Identity{ID: 1, Email: "alice@example.com", Role: models.RoleCustomer}
	admin    = models.Identity{ID: 2, Email: "root@example.com", Role: models.RoleAdmin}
)
