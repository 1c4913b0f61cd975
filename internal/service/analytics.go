package service

import (
	"context"
	"time"

	"github.com/fraudsight/transaction-service/internal/models"
	"github.com/fraudsight/transaction-service/internal/query"
)

// analytics computes the aggregate snapshot over the full predicate, never
// the paginated slice. The suspicious count conjoins the search predicate
// with the fixed heuristic, so it can never exceed the transaction count.
//
// Aggregation failure must not break the primary search response: any error
// yields a zeroed snapshot and a server-side log entry.
func (s *Service) analytics(ctx context.Context, pred query.Predicate, now time.Time) models.AnalyticsSnapshot {
	agg, err := s.transactions.Aggregate(ctx, pred)
	if err != nil {
		s.log.Errorf("Analytics aggregation failed: %v", err)
		return models.AnalyticsSnapshot{}
	}

	suspicious, err := s.transactions.Count(ctx, query.And{Preds: []query.Predicate{
		pred,
		query.SuspiciousClause(now),
	}})
	if err != nil {
		s.log.Errorf("Suspicious count failed: %v", err)
		return models.AnalyticsSnapshot{}
	}

	return models.AnalyticsSnapshot{
		TotalAmount:      agg.Sum,
		AverageAmount:    agg.Avg,
		TransactionCount: agg.Count,
		SuspiciousCount:  suspicious,
	}
}
