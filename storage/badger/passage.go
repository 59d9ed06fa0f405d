package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
type PassageRepository struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

func newPassageRepository(backend *Backend) (*PassageRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is nil")
	}
	return &PassageRepository{backend: backend}, nil
}

// NewPassageRepository creates a passage repository over backend.
// The caller keeps ownership of backend and must close it.
func NewPassageRepository(backend *Backend) (storage.PassageRepository, error) {
	return newPassageRepository(backend)
}

// OpenRepository opens a BadgerDB directory and returns a repository that
// owns it. Closing the repository closes the database.
func OpenRepository(path string) (storage.PassageRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo, err := newPassageRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsBackend = true
	return repo, nil
}

// Close releases resources. The backend is closed only when the
// repository created it.
func (r *PassageRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// AddPassages stores one or more passages in a single write batch.
// Every passage is validated before anything is written.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	now := time.Now().UTC()
	for _, passage := range passages {
		if passage.InsertedAt.IsZero() {
			passage.InsertedAt = now
		}
		passage.Vector = core.NormalizeVector(passage.Vector)
		if err := core.ValidatePassage(passage); err != nil {
			return nil, err
		}
		if passage.Id == 0 {
			passage.Id = core.IDFromContent(passage.ContentKey())
		}
	}
	err := r.backend.Batch(func(wb *badger.WriteBatch) error {
		for _, passage := range passages {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makePassageKey(passage.Id), storage.MarshalPassage(passage)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return passages, nil
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// DeletePassages removes passages by their IDs.
func (r *PassageRepository) DeletePassages(ctx context.Context, ids ...core.ID) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePassageKey(id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: passage %s", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountPassages returns the number of passages in namespace.
func (r *PassageRepository) CountPassages(ctx context.Context, namespace string) (int, error) {
	count := 0
	err := r.scan(ctx, func(p *core.Passage) {
		if namespace == "" || p.Namespace == namespace {
			count++
		}
	})
	return count, err
}

// Search scores every passage in the namespace against the query vector.
func (r *PassageRepository) Search(ctx context.Context, req core.SearchRequest) ([]core.Match, error) {
	if req.TopK <= 0 || len(req.Vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	query := core.NormalizeVector(req.Vector)
	var matches []core.Match

	err := r.scan(ctx, func(p *core.Passage) {
		if req.Namespace != "" && p.Namespace != req.Namespace {
			return
		}
		if !matchesFilter(p, req.Filter) {
			return
		}
		m := core.Match{
			ID:    p.Id.String(),
			Score: core.DotProduct(query, p.Vector),
		}
		if req.IncludeMetadata {
			m.Metadata = p.Attributes()
		}
		matches = append(matches, m)
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortStableFunc(matches, func(a, b core.Match) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > req.TopK {
		matches = matches[:req.TopK]
	}
	return matches, nil
}

// scan calls fn for every stored passage, checking ctx between items.
func (r *PassageRepository) scan(ctx context.Context, fn func(*core.Passage)) error {
	return r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(passagePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var passage *core.Passage
			err := iter.Item().Value(func(val []byte) error {
				var err error
				passage, err = storage.UnmarshalPassage(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(passage.Vector) == 0 {
				continue
			}
			fn(passage)
		}
		return nil
	})
}

func matchesFilter(p *core.Passage, filter map[string]string) bool {
	if len(filter) == 0 {
		return true
	}
	attrs := p.Attributes()
	for k, v := range filter {
		if attrs[k] != v {
			return false
		}
	}
	return true
}

// readPassage reads a passage, returning nil without error when absent.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var err error
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	return passage, err
}
