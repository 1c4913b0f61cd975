package service

import (
	"context"
	"time"

	"github.com/fraudsight/transaction-service/internal/cache"
	apperrors "github.com/fraudsight/transaction-service/internal/errors"
	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

// Search runs one scoped, paginated, analytics-augmented search.
//
// Flow: resolve scope (fail closed) -> cache check -> on miss build the
// predicate, fetch the page and the total count against the same predicate,
// compute analytics -> assemble -> populate cache only after a complete,
// successful compute.
func (s *Service) Search(ctx context.Context, ident models.Identity, f query.Filter) (*models.SearchResponse, error) {
	if ident.ID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	scope := query.Scope{UserID: ident.ID, Admin: ident.IsAdmin()}

	key, ttl := cache.SearchKey(scope, f)
	if resp, ok := s.cache.GetSearch(ctx, key); ok {
		return resp, nil
	}

	now := time.Now()
	pred := query.Build(f, scope, now)
	page := query.NewPageRequest(f.Page, f.Limit)
	sort := query.ParseSort(f.Sort)

	transactions, err := s.transactions.Find(ctx, pred, sort, page.Offset(), page.Limit)
	if err != nil {
		s.log.Errorf("Transaction search failed: %v", err)
		return nil, err
	}
	total, err := s.transactions.Count(ctx, pred)
	if err != nil {
		s.log.Errorf("Transaction count failed: %v", err)
		return nil, err
	}

	resp := &models.SearchResponse{
		Transactions: transactions,
		Pagination:   page.Meta(total),
		Analytics:    s.analytics(ctx, pred, now),
	}
	s.cache.PutSearch(ctx, key, ttl, resp)
	return resp, nil
}

const highRiskWindowHours = 24

// HighRisk is the admin-only fixed-filter view of the largest recent
// transactions: amount >= 10000 within the last 24 hours, first page of 50,
// largest first. It reuses the regular search orchestration and adds a
// static advisory.
func (s *Service) HighRisk(ctx context.Context, ident models.Identity) (*models.HighRiskResponse, error) {
	if ident.ID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	if !ident.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	amountMin := float64(query.SuspiciousAmount)
	hours := highRiskWindowHours
	f := query.Filter{
		AmountMin:       &amountMin,
		CreatedHoursAgo: &hours,
		Page:            1,
		Limit:           50,
		Sort:            "-amount",
	}
	resp, err := s.Search(ctx, ident, f)
	if err != nil {
		return nil, err
	}
	return &models.HighRiskResponse{
		SearchResponse: *resp,
		Advisory: models.HighRiskAdvisory{
			AmountThreshold: query.SuspiciousAmount,
			WindowHours:     highRiskWindowHours,
			Recommendation:  "Review each transaction and verify the account holder before settlement.",
		},
	}, nil
}
