package badger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/juris/storage"
)

// Backend owns the BadgerDB handle behind a passage repository.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLogger routes Badger's printf logging into slog. Badger is chatty at
// info level, so its info lines are demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any) {
	bl.logger.Error(format(msg, items))
}

func (bl *badgerLogger) Warningf(msg string, items ...any) {
	bl.logger.Warn(format(msg, items))
}

func (bl *badgerLogger) Infof(msg string, items ...any) {
	bl.logger.Debug(format(msg, items))
}

func (bl *badgerLogger) Debugf(msg string, items ...any) {
	bl.logger.Debug(format(msg, items))
}

func format(msg string, items []any) string {
	return strings.TrimRight(fmt.Sprintf(msg, items...), "\n")
}

// OpenBackend opens the knowledge base at path, creating the directory if
// needed. With inMemory set the path is ignored and nothing touches disk.
func OpenBackend(path string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if err := ensureDir(path); err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "badger")
	opts.Logger = &badgerLogger{logger: logger}
	// Vectors are dense float32 and compress poorly.
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge base at %q: %w", path, err)
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	if b.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.View(fn)
}

// Update runs fn in a read-write transaction committed when fn returns nil.
func (b *Backend) Update(fn func(tx *badger.Txn) error) error {
	if b.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.Update(fn)
}

// Batch runs fn against a write batch and flushes it. Unlike Update it is
// not bounded by the transaction size limit, which matters for bulk loads.
func (b *Backend) Batch(fn func(wb *badger.WriteBatch) error) error {
	if b.IsClosed() {
		return storage.ErrStorageClosed
	}
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	if err := fn(wb); err != nil {
		return err
	}
	return wb.Flush()
}
