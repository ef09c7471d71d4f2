// internal/stats/service.go
package stats

import (
	"context"

	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/common/metrics"
	"churn-analytics/internal/models"
)

// CustomerLister is the slice of the customer store statistics needs.
type CustomerLister interface {
	ListAll(ctx context.Context) ([]models.Customer, error)
}

// Cache is a short-TTL read-through cache for computed statistics.
// Cache failures degrade to recomputation, never to request failure.
type Cache interface {
	Get(ctx context.Context) (models.ChurnStatistics, bool, error)
	Set(ctx context.Context, stats models.ChurnStatistics) error
	Invalidate(ctx context.Context) error
}

// Service serves aggregate churn statistics, recomputed from the
// customer collection and cached briefly between writes.
type Service struct {
	customers CustomerLister
	cache     Cache
	log       logger.Logger
}

func NewService(customers CustomerLister, cache Cache, log logger.Logger) *Service {
	return &Service{
		customers: customers,
		cache:     cache,
		log:       log,
	}
}

func (s *Service) Statistics(ctx context.Context) (models.ChurnStatistics, error) {
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WithError(err).Warn("Statistics cache read failed", nil)
		} else if found {
			metrics.StatisticsCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.StatisticsCacheLookups.WithLabelValues("miss").Inc()
	}

	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return models.ChurnStatistics{}, err
	}
	stats := Compute(customers)

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.log.WithError(err).Warn("Statistics cache write failed", nil)
		}
	}
	return stats, nil
}
