// Package batch classifies whole datasets with bounded concurrency.
package batch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/minwonlab/sentinel/pkg/dataset"
	"github.com/minwonlab/sentinel/pkg/risk"
)

// DefaultWorkers is the default concurrency bound.
const DefaultWorkers = 8

// minTextRunes mirrors the loader-side quality floor: rows shorter than this
// carry no classifiable content and are skipped, not scored.
const minTextRunes = 3

// Summary aggregates a batch run.
type Summary struct {
	Processed   int            `json:"processed"`
	Skipped     int            `json:"skipped"`
	LevelCounts map[string]int `json:"level_counts"`
}

// Runner classifies dataset rows concurrently. Rows are independent: batch
// classification never threads session context between rows, so the output
// order is fixed by the input order regardless of worker count.
type Runner struct {
	classifier *risk.Classifier
	workers    int
}

// Option is a functional option for configuring a Runner.
type Option func(*Runner)

// WithWorkers sets the concurrency bound.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// NewRunner builds a batch runner over a risk classifier.
func NewRunner(classifier *risk.Classifier, opts ...Option) *Runner {
	r := &Runner{
		classifier: classifier,
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	return r
}

// Run classifies every usable row of the dataset and returns the results in
// input order plus a run summary.
func (r *Runner) Run(ctx context.Context, ds *dataset.Dataset) ([]dataset.ClassifiedRecord, *Summary, error) {
	summary := &Summary{LevelCounts: make(map[string]int)}

	slots := make([]*dataset.ClassifiedRecord, len(ds.Records))
	sem := NewSemaphore(r.workers)
	var wg sync.WaitGroup

	for i := range ds.Records {
		rec := &ds.Records[i]
		if utf8.RuneCountInString(strings.TrimSpace(rec.Text)) < minTextRunes {
			summary.Skipped++
			continue
		}

		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, nil, fmt.Errorf("batch aborted: %w", err)
		}
		if err := sem.Acquire(ctx); err != nil {
			wg.Wait()
			return nil, nil, fmt.Errorf("batch aborted: %w", err)
		}

		wg.Add(1)
		go func(i int, rec *dataset.Record) {
			defer wg.Done()
			defer sem.Release()

			slots[i] = &dataset.ClassifiedRecord{
				Record: *rec,
				Result: r.classifier.Score(rec.Text, nil, &rec.Metadata),
			}
		}(i, rec)
	}
	wg.Wait()

	results := make([]dataset.ClassifiedRecord, 0, len(ds.Records)-summary.Skipped)
	for _, slot := range slots {
		if slot == nil {
			continue
		}
		results = append(results, *slot)
		summary.Processed++
		summary.LevelCounts[slot.Result.RiskLevel.String()]++
	}
	return results, summary, nil
}
