package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/integrations/watchlist"
	"github.com/fraudsight/transaction-service/internal/query"
	"github.com/fraudsight/transaction-service/internal/repository"
	"github.com/fraudsight/transaction-service/internal/utils/email"
)

const sweepTimeout = time.Minute

// Sweep is the scheduled high-risk review: it aggregates suspicious
// transactions from the last 24 hours, cross-references the merchant
// watchlist, and mails a summary to the risk desk when anything turns up.
type Sweep struct {
	transactions repository.TransactionRepository
	watchlist    *watchlist.Client
	mailer       *email.Sender
	log          *logrus.Logger
}

// NewSweep initializes the sweep job
func NewSweep(transactions repository.TransactionRepository, wl *watchlist.Client, mailer *email.Sender, log *logrus.Logger) *Sweep {
	return &Sweep{
		transactions: transactions,
		watchlist:    wl,
		mailer:       mailer,
		log:          log,
	}
}

// Run executes one sweep. It satisfies cron.Job.
func (s *Sweep) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	now := time.Now()
	pred := query.And{Preds: []query.Predicate{
		query.Range{Field: query.FieldCreatedAt, Min: now.Add(-24 * time.Hour)},
		query.SuspiciousClause(now),
	}}

	agg, err := s.transactions.Aggregate(ctx, pred)
	if err != nil {
		s.log.Errorf("High-risk sweep aggregation failed: %v", err)
		return
	}
	if agg.Count == 0 {
		s.log.Debug("High-risk sweep: nothing suspicious in the last 24 hours")
		return
	}

	flagged := s.flaggedMerchants(ctx, now)
	s.log.Warnf("High-risk sweep: %d suspicious transactions totalling %.2f (%d watchlisted merchants involved)",
		agg.Count, agg.Sum, len(flagged))

	if s.mailer.Enabled() {
		if err := s.mailer.SendHighRiskAlert(agg.Count, agg.Sum, flagged); err != nil {
			s.log.Errorf("High-risk sweep alert delivery failed: %v", err)
		}
	}
}

// flaggedMerchants returns watchlisted merchant names with at least one
// transaction in the sweep window. Watchlist failures degrade to an empty
// list; the sweep report still goes out.
func (s *Sweep) flaggedMerchants(ctx context.Context, now time.Time) []string {
	if !s.watchlist.Enabled() {
		return nil
	}
	merchants, err := s.watchlist.FlaggedMerchants()
	if err != nil {
		s.log.Warnf("Watchlist fetch failed: %v", err)
		return nil
	}

	var involved []string
	for _, merchant := range merchants {
		pred := query.And{Preds: []query.Predicate{
			query.Range{Field: query.FieldCreatedAt, Min: now.Add(-24 * time.Hour)},
			query.Contains{Field: query.FieldMerchant, Term: merchant},
		}}
		count, err := s.transactions.Count(ctx, pred)
		if err != nil {
			s.log.Warnf("Watchlist merchant count failed for %q: %v", merchant, err)
			continue
		}
		if count > 0 {
			involved = append(involved, merchant)
		}
	}
	return involved
}
