package testutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/alexanderramin/rapport/internal/db"
)

// ErrInjectedWrite is used when a FailingWriteUoW is built without an error.
var ErrInjectedWrite = errors.New("injected write failure")

// FailingWriteUoW runs each transaction against a real database but fails
// the Nth write. Rollback tests use it to break a switch, start or step
// completion halfway through and check that nothing of it was kept.
//
// Writes are ExecContext calls, counted from 1 per transaction. Reads are
// never failed.
type FailingWriteUoW struct {
	db     *sql.DB
	failOn int
	err    error

	mu     sync.Mutex
	writes []string
}

// NewFailingWriteUoW fails write number failOn with err.
func NewFailingWriteUoW(database *sql.DB, failOn int, err error) *FailingWriteUoW {
	if err == nil {
		err = ErrInjectedWrite
	}
	return &FailingWriteUoW{db: database, failOn: failOn, err: err}
}

// Writes lists the statements attempted in the last transaction, the
// failing one included.
func (u *FailingWriteUoW) Writes() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.writes...)
}

func (u *FailingWriteUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	u.mu.Lock()
	u.writes = nil
	u.mu.Unlock()

	if fnErr := fn(ctx, &failingWriteTx{DBTX: tx, uow: u}); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingWriteTx struct {
	db.DBTX
	uow *FailingWriteUoW
}

func (f *failingWriteTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.uow.mu.Lock()
	f.uow.writes = append(f.uow.writes, query)
	n := len(f.uow.writes)
	f.uow.mu.Unlock()
	if n == f.uow.failOn {
		return nil, f.uow.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
