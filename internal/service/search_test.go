package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

func TestSearch_RequiresIdentity(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Search(context.Background(), models.Identity{}, query.Filter{Page: 1, Limit: 50})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSearch_NonAdminNeverSeesOthersRows(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})
	repo.add(models.Transaction{UserID: 1, Amount: 200, Type: "debit", Status: "completed"})
	repo.add(models.Transaction{UserID: 9, Amount: 300, Type: "debit", Status: "completed"})

	// the customer explicitly asks for user 9's transactions
	other := int64(9)
	resp, err := svc.Search(context.Background(), customer, query.Filter{UserID: &other, Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, int64(2), resp.Pagination.TotalTransactions)
	for _, tx := range resp.Transactions {
		assert.Equal(t, customer.ID, tx.UserID, "effective scope must be the caller's own id")
	}
}

func TestSearch_AdminNarrowsByUser(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})
	repo.add(models.Transaction{UserID: 9, Amount: 300, Type: "debit", Status: "completed"})

	target := int64(9)
	resp, err := svc.Search(context.Background(), admin, query.Filter{UserID: &target, Page: 1, Limit: 50})
	require.NoError(t, err)

	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, int64(9), resp.Transactions[0].UserID)
}

func TestSearch_AmountMinScenario(t *testing.T) {
	svc, repo, _, _ := newTestService()
	amounts := []float64{100, 250, 5000, 750, 9000, 1200, 15000, 80, 430, 2000}
	for _, amount := range amounts {
		repo.add(models.Transaction{UserID: 1, Amount: amount, Type: "debit", Status: "completed"})
	}

	min := 5000.0
	resp, err := svc.Search(context.Background(), customer, query.Filter{AmountMin: &min, Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.Pagination.TotalTransactions)
}

func TestSearch_CreatedHoursAgoExcludesOlderRows(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed",
		CreatedAt: time.Now().Add(-25 * time.Hour)})
	repo.add(models.Transaction{UserID: 1, Amount: 200, Type: "debit", Status: "completed",
		CreatedAt: time.Now().Add(-1 * time.Hour)})

	hours := 24
	resp, err := svc.Search(context.Background(), customer, query.Filter{CreatedHoursAgo: &hours, Page: 1, Limit: 50})
	require.NoError(t, err)

	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, 200.0, resp.Transactions[0].Amount)
}

func TestSearch_TermMatchesMerchantCaseInsensitive(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 42, Type: "debit", Status: "completed",
		Merchant: "Grocery Store"})
	repo.add(models.Transaction{UserID: 1, Amount: 77, Type: "debit", Status: "completed",
		Merchant: "Gas Station"})

	resp, err := svc.Search(context.Background(), customer, query.Filter{Search: "grocery", Page: 1, Limit: 50})
	require.NoError(t, err)

	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "Grocery Store", resp.Transactions[0].Merchant)
}

func TestSearch_SortByAmountDescending(t *testing.T) {
	svc, repo, _, _ := newTestService()
	for _, amount := range []float64{300, 100, 500, 100, 400} {
		repo.add(models.Transaction{UserID: 1, Amount: amount, Type: "debit", Status: "completed"})
	}

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 50, Sort: "-amount"})
	require.NoError(t, err)

	require.Len(t, resp.Transactions, 5)
	for i := 1; i < len(resp.Transactions); i++ {
		assert.GreaterOrEqual(t, resp.Transactions[i-1].Amount, resp.Transactions[i].Amount)
	}
}

func TestSearch_PaginationMetadata(t *testing.T) {
	svc, repo, _, _ := newTestService()
	for i := 0; i < 10; i++ {
		repo.add(models.Transaction{UserID: 1, Amount: float64(100 + i), Type: "debit", Status: "completed"})
	}

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 2, Limit: 3, Sort: "id"})
	require.NoError(t, err)

	assert.Len(t, resp.Transactions, 3)
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 4, resp.Pagination.TotalPages)
	assert.Equal(t, int64(10), resp.Pagination.TotalTransactions)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
	// second page of id-ascending order starts at the fourth row
	assert.Equal(t, int64(4), resp.Transactions[0].ID)
}

func TestSearch_AnalyticsComputedOverFullPredicate(t *testing.T) {
	svc, repo, _, _ := newTestService()
	for _, amount := range []float64{100, 200, 300, 400} {
		repo.add(models.Transaction{UserID: 1, Amount: amount, Type: "debit", Status: "completed"})
	}

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 2})
	require.NoError(t, err)

	assert.Len(t, resp.Transactions, 2, "page is sliced")
	assert.Equal(t, int64(4), resp.Analytics.TransactionCount, "analytics are not")
	assert.Equal(t, 1000.0, resp.Analytics.TotalAmount)
	assert.Equal(t, 250.0, resp.Analytics.AverageAmount)
}

func TestSearch_SuspiciousCount(t *testing.T) {
	svc, repo, _, _ := newTestService()
	now := time.Now()
	// amount >= 10000
	repo.add(models.Transaction{UserID: 1, Amount: 15000, Type: "credit", Status: "completed",
		CreatedAt: now.Add(-48 * time.Hour)})
	// amount >= 5000 within 24h
	repo.add(models.Transaction{UserID: 1, Amount: 6000, Type: "credit", Status: "completed",
		CreatedAt: now.Add(-2 * time.Hour)})
	// withdrawal >= 1000
	repo.add(models.Transaction{UserID: 1, Amount: 1500, Type: "withdrawal", Status: "completed",
		CreatedAt: now.Add(-72 * time.Hour)})
	// none of the rules
	repo.add(models.Transaction{UserID: 1, Amount: 6000, Type: "credit", Status: "completed",
		CreatedAt: now.Add(-48 * time.Hour)})
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, int64(3), resp.Analytics.SuspiciousCount)
	assert.LessOrEqual(t, resp.Analytics.SuspiciousCount, resp.Analytics.TransactionCount)
}

func TestSearch_AggregationFailureYieldsZeroedSnapshot(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})
	repo.aggErr = apperrors.NewPersistenceError("aggregate", assert.AnError)

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 50})
	require.NoError(t, err, "aggregation failure must not break the search")

	assert.Len(t, resp.Transactions, 1)
	assert.Equal(t, models.AnalyticsSnapshot{}, resp.Analytics)
}

func TestSearch_SecondIdenticalSearchServedFromCache(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})

	f := query.Filter{Page: 1, Limit: 50, Sort: "-createdAt"}
	first, err := svc.Search(context.Background(), customer, f)
	require.NoError(t, err)
	second, err := svc.Search(context.Background(), customer, f)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.findCalls, "second search must not reach the store")

	firstPayload, err := json.Marshal(first)
	require.NoError(t, err)
	secondPayload, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstPayload, secondPayload, "cached payload is byte-identical")
}

func TestSearch_DifferentFiltersCacheSeparately(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})
	repo.add(models.Transaction{UserID: 1, Amount: 9000, Type: "debit", Status: "completed"})

	_, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 50})
	require.NoError(t, err)

	min := 5000.0
	filtered, err := svc.Search(context.Background(), customer, query.Filter{AmountMin: &min, Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.findCalls, "a different filter is a cache miss")
	assert.Equal(t, int64(1), filtered.Pagination.TotalTransactions)
}

func TestSearch_CreateInvalidatesCachedView(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})

	f := query.Filter{Page: 1, Limit: 50}
	before, err := svc.Search(context.Background(), customer, f)
	require.NoError(t, err)
	assert.Equal(t, int64(1), before.Pagination.TotalTransactions)

	_, err = svc.CreateTransaction(context.Background(), customer, CreateTransactionInput{
		Amount: 250, Type: "debit",
	})
	require.NoError(t, err)

	after, err := svc.Search(context.Background(), customer, f)
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.Pagination.TotalTransactions,
		"the write must invalidate the cached view")
}

func TestSearch_CacheFailureDegradesGracefully(t *testing.T) {
	svc, repo, _, store := newTestService()
	repo.add(models.Transaction{UserID: 1, Amount: 100, Type: "debit", Status: "completed"})
	store.getErr = assert.AnError
	store.setErr = assert.AnError

	resp, err := svc.Search(context.Background(), customer, query.Filter{Page: 1, Limit: 50})
	require.NoError(t, err, "cache failure is never on the critical path")
	assert.Len(t, resp.Transactions, 1)
}

func TestHighRisk_AdminOnly(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.HighRisk(context.Background(), customer)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.HighRisk(context.Background(), models.Identity{})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestHighRisk_FixedFilter(t *testing.T) {
	svc, repo, _, _ := newTestService()
	now := time.Now()
	repo.add(models.Transaction{UserID: 1, Amount: 20000, Type: "credit", Status: "completed",
		CreatedAt: now.Add(-1 * time.Hour)})
	repo.add(models.Transaction{UserID: 9, Amount: 12000, Type: "debit", Status: "completed",
		CreatedAt: now.Add(-3 * time.Hour)})
	// below the threshold
	repo.add(models.Transaction{UserID: 1, Amount: 9999, Type: "debit", Status: "completed",
		CreatedAt: now.Add(-1 * time.Hour)})
	// over the threshold but outside the window
	repo.add(models.Transaction{UserID: 1, Amount: 30000, Type: "debit", Status: "completed",
		CreatedAt: now.Add(-30 * time.Hour)})

	resp, err := svc.HighRisk(context.Background(), admin)
	require.NoError(t, err)

	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, 20000.0, resp.Transactions[0].Amount, "sorted by amount descending")
	assert.Equal(t, 12000.0, resp.Transactions[1].Amount)
	assert.Equal(t, 10000.0, resp.Advisory.AmountThreshold)
	assert.Equal(t, 24, resp.Advisory.WindowHours)
	assert.NotEmpty(t, resp.Advisory.Recommendation)
}
