// Package ledger implements the transactional point-of-sale ledger: product
// inventory, customer debt, immutable sales and debt repayments, and the
// windowed reports derived from them. Every mutating multi-row operation is
// atomic-or-failed; there is no partial-success state.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrValidation marks malformed input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to a row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConstraint marks a storage-level constraint failure, e.g. a
	// duplicate barcode or a missing foreign key target.
	ErrConstraint = errors.New("constraint violation")
)

// Store owns all reads and writes against the ledger database.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// withTx runs fn inside a transaction and rolls back on any error, so a
// failed operation leaves no trace.
func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// translate maps driver-level constraint failures onto ErrConstraint so
// callers can give specific feedback without knowing the storage engine.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}

// timestamp returns the ledger's wire format for dates: RFC 3339 UTC. Writing
// timestamps explicitly keeps calendar-day matching and range windows
// well-defined regardless of sqlite defaults.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
