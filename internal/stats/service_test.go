package stats

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/models"
)

type fakeLister struct {
	customers []models.Customer
	calls     int
	err       error
}

func (l *fakeLister) ListAll(ctx context.Context) ([]models.Customer, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.customers, nil
}

type fakeCache struct {
	stats  *models.ChurnStatistics
	getErr error
	setErr error
	sets   int
}

func (c *fakeCache) Get(ctx context.Context) (models.ChurnStatistics, bool, error) {
	if c.getErr != nil {
		return models.ChurnStatistics{}, false, c.getErr
	}
	if c.stats == nil {
		return models.ChurnStatistics{}, false, nil
	}
	return *c.stats, true, nil
}

func (c *fakeCache) Set(ctx context.Context, stats models.ChurnStatistics) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.stats = &stats
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context) error {
	c.stats = nil
	return nil
}

func TestServiceStatistics(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNoOpLogger()
	customers := []models.Customer{
		{CustomerID: "C1", Contract: models.ContractMonthToMonth, Churn: true},
		{CustomerID: "C2", Contract: models.ContractMonthToMonth},
	}

	t.Run("computes and caches on miss", func(t *testing.T) {
		lister := &fakeLister{customers: customers}
		cache := &fakeCache{}
		service := NewService(lister, cache, log)

		stats, err := service.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 50.0, stats.ChurnRate)
		assert.Equal(t, 1, lister.calls)
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("serves from cache on hit", func(t *testing.T) {
		lister := &fakeLister{customers: customers}
		cache := &fakeCache{stats: &models.ChurnStatistics{TotalCustomers: 42}}
		service := NewService(lister, cache, log)

		stats, err := service.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 42, stats.TotalCustomers)
		assert.Zero(t, lister.calls)
	})

	t.Run("recomputes after invalidation", func(t *testing.T) {
		lister := &fakeLister{customers: customers}
		cache := &fakeCache{stats: &models.ChurnStatistics{TotalCustomers: 42}}
		service := NewService(lister, cache, log)

		require.NoError(t, cache.Invalidate(ctx))
		stats, err := service.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalCustomers)
		assert.Equal(t, 1, lister.calls)
	})

	t.Run("degrades to recomputation on cache errors", func(t *testing.T) {
		lister := &fakeLister{customers: customers}
		cache := &fakeCache{getErr: fmt.Errorf("redis down"), setErr: fmt.Errorf("redis down")}
		service := NewService(lister, cache, log)

		stats, err := service.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalCustomers)
	})

	t.Run("works without a cache", func(t *testing.T) {
		lister := &fakeLister{customers: customers}
		service := NewService(lister, nil, log)

		stats, err := service.Statistics(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalCustomers)
	})

	t.Run("surfaces store failures", func(t *testing.T) {
		lister := &fakeLister{err: fmt.Errorf("query failed")}
		service := NewService(lister, nil, log)

		_, err := service.Statistics(ctx)

		require.Error(t, err)
	})
}
