// internal/ingest/pipeline.go
package ingest

import (
	"context"
	"time"

	"churn-analytics/internal/common/errors"
	"churn-analytics/internal/common/logger"
	"churn-analytics/internal/common/metrics"
	"churn-analytics/internal/models"
)

// CustomerWriter is the slice of the customer store the pipeline
// needs: a bulk clear plus per-record inserts.
type CustomerWriter interface {
	DeleteAll(ctx context.Context) error
	Insert(ctx context.Context, customer models.Customer) error
}

// SearchIndexer rebuilds the secondary search index after a load.
// Indexing failures are logged, not surfaced: the primary store is the
// source of truth.
type SearchIndexer interface {
	Reindex(ctx context.Context, customers []models.Customer) error
}

// Result summarizes one ingestion run. TotalProcessed always equals
// the input row count regardless of per-row outcomes.
type Result struct {
	Message        string `json:"message"`
	SuccessCount   int    `json:"successCount"`
	ErrorCount     int    `json:"errorCount"`
	TotalProcessed int    `json:"totalProcessed"`
}

// Pipeline performs full-replace customer loads: delete everything,
// then insert one normalized record per input row.
type Pipeline struct {
	store CustomerWriter
	index SearchIndexer
	log   logger.Logger
}

func NewPipeline(store CustomerWriter, index SearchIndexer, log logger.Logger) *Pipeline {
	return &Pipeline{
		store: store,
		index: index,
		log:   log,
	}
}

// IngestCSV parses raw CSV text and runs a full-replace load.
func (p *Pipeline) IngestCSV(ctx context.Context, text string) (Result, error) {
	rows, err := ParseCSV(text)
	if err != nil {
		return Result{}, err
	}
	return p.Ingest(ctx, rows)
}

// Ingest replaces the entire customer collection with the given rows.
// A per-row insert failure increments ErrorCount and continues; the
// batch never aborts partway.
func (p *Pipeline) Ingest(ctx context.Context, rows []map[string]any) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.IngestDuration.Observe(time.Since(start).Seconds())
	}()

	if err := p.store.DeleteAll(ctx); err != nil {
		return Result{}, err
	}

	result := Result{
		Message:        "CSV data uploaded successfully",
		TotalProcessed: len(rows),
	}
	inserted := make([]models.Customer, 0, len(rows))

	for i, row := range rows {
		customer := Normalize(row, result.SuccessCount, time.Now())
		if err := p.store.Insert(ctx, customer); err != nil {
			rowErr := errors.NewRowCoercionFailedError(i, err)
			p.log.WithError(rowErr).Error("Failed to insert customer", map[string]interface{}{
				"customerId": customer.CustomerID,
			})
			metrics.IngestRows.WithLabelValues("error").Inc()
			result.ErrorCount++
			continue
		}
		metrics.IngestRows.WithLabelValues("success").Inc()
		result.SuccessCount++
		inserted = append(inserted, customer)
	}

	if p.index != nil {
		if err := p.index.Reindex(ctx, inserted); err != nil {
			p.log.WithError(err).Warn("Failed to rebuild search index after ingestion", nil)
		}
	}

	p.log.Info("Ingestion completed", map[string]interface{}{
		"successCount":   result.SuccessCount,
		"errorCount":     result.ErrorCount,
		"totalProcessed": result.TotalProcessed,
	})

	return result, nil
}

// SeedSampleData replaces the customer collection with the canned
// demo dataset.
func (p *Pipeline) SeedSampleData(ctx context.Context) (int, error) {
	if err := p.store.DeleteAll(ctx); err != nil {
		return 0, err
	}

	customers := SampleCustomers(time.Now())
	for _, customer := range customers {
		if err := p.store.Insert(ctx, customer); err != nil {
			return 0, err
		}
	}

	if p.index != nil {
		if err := p.index.Reindex(ctx, customers); err != nil {
			p.log.WithError(err).Warn("Failed to rebuild search index after seeding", nil)
		}
	}

	p.log.Info("Sample data generated", map[string]interface{}{
		"count": len(customers),
	})

	return len(customers), nil
}
