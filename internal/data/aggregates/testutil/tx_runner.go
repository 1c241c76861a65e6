package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/noahbkim00/executive-ai-mvp/internal/data/aggregates"
	"github.com/noahbkim00/executive-ai-mvp/internal/pkg/dbctx"
)

// FaultyTxRunner runs aggregate writes in real GORM transactions and can inject
// a failure after the body has written, forcing a rollback of everything it did.
// With a nil DB the body runs without a transaction.
type FaultyTxRunner struct {
	DB *gorm.DB

	mu            sync.Mutex
	FailBegin     error
	FailAfterBody error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*FaultyTxRunner)(nil)

func (r *FaultyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failAfter := r.FailAfterBody
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failAfter
	}

	var err error
	if r.DB == nil {
		err = body(dbctx.Context{Ctx: ctx})
	} else {
		err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return body(dbctx.Context{Ctx: ctx, Tx: tx})
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}
