// Package importer runs CSV bulk imports in the background. Each job streams
// its file through ParseRow and a BatchCommitter and reports progress only
// through the job status store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"catalog-api/internal/jobstore"
	"catalog-api/internal/model"

	"github.com/sirupsen/logrus"
)

// DefaultMaxConcurrent bounds how many imports run at the same time.
const DefaultMaxConcurrent = 4

// EventImported is published when a job completes.
const EventImported = "products.imported"

// EventPublisher receives catalog events. ws.Hub satisfies it.
type EventPublisher interface {
	Publish(eventType string, data interface{})
}

type Option func(*Importer)

func WithBatchSize(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.batchSize = n
		}
	}
}

// WithMaxConcurrent limits running imports; n <= 0 removes the limit.
func WithMaxConcurrent(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.slots = make(chan struct{}, n)
		} else {
			im.slots = nil
		}
	}
}

func WithEvents(p EventPublisher) Option {
	return func(im *Importer) { im.events = p }
}

type Importer struct {
	store     TxBeginner
	jobs      jobstore.Store
	events    EventPublisher
	log       *logrus.Logger
	batchSize int
	slots     chan struct{}
	wg        sync.WaitGroup
}

func New(store TxBeginner, jobs jobstore.Store, log *logrus.Logger, opts ...Option) *Importer {
	im := &Importer{
		store:     store,
		jobs:      jobs,
		log:       log,
		batchSize: DefaultBatchSize,
		slots:     make(chan struct{}, DefaultMaxConcurrent),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Submit runs the import of path in its own goroutine and returns at once.
// The job is detached from any request context and cannot be cancelled.
// The file at path is owned by the job and removed when it ends.
func (im *Importer) Submit(jobID, path string) {
	im.wg.Add(1)
	go func() {
		defer im.wg.Done()
		if im.slots != nil {
			im.slots <- struct{}{}
			defer func() { <-im.slots }()
		}
		im.Run(context.Background(), jobID, path)
	}()
}

// Wait blocks until every submitted job has finished.
func (im *Importer) Wait() {
	im.wg.Wait()
}

// Run imports path synchronously. The outcome is only observable through the
// job store.
func (im *Importer) Run(ctx context.Context, jobID, path string) {
	entry := im.log.WithField("job_id", jobID)
	defer im.removeFile(entry, path)

	job := model.ImportJob{
		ID:      jobID,
		Status:  model.JobStatusProcessing,
		Message: "Parsing CSV",
	}
	im.save(ctx, entry, job)

	defer func() {
		if r := recover(); r != nil {
			im.fail(ctx, entry, &job, fmt.Errorf("import aborted: %v", r))
		}
	}()

	entry.Info("import started")
	if err := im.process(ctx, entry, &job, path); err != nil {
		im.fail(ctx, entry, &job, err)
		return
	}

	job.Status = model.JobStatusCompleted
	job.Progress = 100
	job.Message = fmt.Sprintf("Import complete: %d imported, %d skipped", job.ImportedRows, job.SkippedRows)
	im.save(ctx, entry, job)

	entry.WithFields(logrus.Fields{
		"total":    job.TotalRows,
		"imported": job.ImportedRows,
		"skipped":  job.SkippedRows,
	}).Info("import completed")

	if im.events != nil {
		im.events.Publish(EventImported, map[string]interface{}{
			"job_id":   job.ID,
			"imported": job.ImportedRows,
			"skipped":  job.SkippedRows,
		})
	}
}

func (im *Importer) process(ctx context.Context, entry *logrus.Entry, job *model.ImportJob, path string) error {
	total, err := countFileRows(path)
	if err != nil {
		return err
	}
	job.TotalRows = total

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	rows, err := NewRowReader(f)
	if err != nil {
		return err
	}

	batch := NewBatchCommitter(im.store, im.batchSize)
	defer batch.Abort()

	for {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}
		job.ProcessedRows++

		committed := false
		draft, err := ParseRow(row)
		if err != nil {
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				return err
			}
			job.SkippedRows++
			if len(job.Errors) < model.MaxJobRowErrors {
				job.Errors = append(job.Errors, rowErr.Info())
			}
			entry.WithField("line", rowErr.Line).Debugf("row skipped: %s", rowErr.Reason)
		} else {
			committed, err = batch.Add(ctx, draft)
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			job.ImportedRows++
		}

		pct := progressPercent(job.ProcessedRows, job.TotalRows)
		if pct > job.Progress || committed {
			if pct > job.Progress {
				job.Progress = pct
			}
			job.Message = fmt.Sprintf("Processing row %d of %d", job.ProcessedRows, job.TotalRows)
			im.save(ctx, entry, *job)
		}
		if committed {
			entry.WithField("commits", batch.Commits()).Debug("batch committed")
		}
	}

	if err := batch.Flush(); err != nil {
		return err
	}
	return nil
}

func (im *Importer) fail(ctx context.Context, entry *logrus.Entry, job *model.ImportJob, err error) {
	job.Status = model.JobStatusFailed
	job.Message = err.Error()
	im.save(ctx, entry, *job)
	entry.WithError(err).Error("import failed")
}

func (im *Importer) save(ctx context.Context, entry *logrus.Entry, job model.ImportJob) {
	if err := im.jobs.Update(ctx, job); err != nil {
		entry.WithError(err).Warn("failed to publish job status")
	}
}

func (im *Importer) removeFile(entry *logrus.Entry, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		entry.WithError(err).Warn("failed to remove upload")
	}
}

func countFileRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return CountRows(f)
}

// progressPercent is floor(processed/total*100), clamped to [0, 100].
func progressPercent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	pct := processed * 100 / total
	if pct > 100 {
		return 100
	}
	return pct
}
