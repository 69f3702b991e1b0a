package importer

import (
	"context"
	"errors"
	"fmt"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
)

// DefaultBatchSize is the number of upserts per committed transaction.
const DefaultBatchSize = 500

// TxBeginner opens upsert transactions. repository.ProductRepository
// satisfies it.
type TxBeginner interface {
	BeginUpsert(ctx context.Context) (repository.UpsertTx, error)
}

// BatchCommitter groups upserts into transactions of at most size rows.
// It is not safe for concurrent use; each import owns one.
type BatchCommitter struct {
	store   TxBeginner
	size    int
	tx      repository.UpsertTx
	pending int
	commits int
}

func NewBatchCommitter(store TxBeginner, size int) *BatchCommitter {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchCommitter{store: store, size: size}
}

// Add upserts draft in the open transaction, opening one if needed, and
// commits once size rows are pending. committed reports whether this call
// committed. On error the open transaction is rolled back.
func (b *BatchCommitter) Add(ctx context.Context, draft model.ProductDraft) (committed bool, err error) {
	if b.tx == nil {
		tx, err := b.store.BeginUpsert(ctx)
		if err != nil {
			return false, err
		}
		b.tx = tx
	}

	if err := b.tx.Upsert(ctx, draft); err != nil {
		return false, b.abort(fmt.Errorf("upsert %q: %w", draft.SKU, err))
	}
	b.pending++

	if b.pending >= b.size {
		if err := b.commit(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Flush commits whatever is pending.
func (b *BatchCommitter) Flush() error {
	if b.tx == nil {
		return nil
	}
	return b.commit()
}

// Abort rolls back the open transaction, if any. It is a no-op after Flush.
func (b *BatchCommitter) Abort() {
	if b.tx == nil {
		return
	}
	_ = b.tx.Rollback()
	b.tx = nil
	b.pending = 0
}

// Commits is the number of transactions committed so far.
func (b *BatchCommitter) Commits() int {
	return b.commits
}

func (b *BatchCommitter) commit() error {
	tx := b.tx
	b.tx = nil
	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		b.pending = 0
		return fmt.Errorf("commit batch: %w", err)
	}
	b.pending = 0
	b.commits++
	return nil
}

func (b *BatchCommitter) abort(err error) error {
	if b.tx != nil {
		if rbErr := b.tx.Rollback(); rbErr != nil {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		b.tx = nil
		b.pending = 0
	}
	return err
}
