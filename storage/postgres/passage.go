package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

const schemaTimeout = 10 * time.Second

// PassageRepository implements storage.PassageRepository on PostgreSQL.
type PassageRepository struct {
	db     *sql.DB
	ownsDB bool
	table  string
	logger *slog.Logger
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// Option configures a PassageRepository.
type Option func(*PassageRepository) error

// WithLogger sets a custom logger. A nil logger selects the default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *PassageRepository) error {
		if logger == nil {
			logger = slog.Default().With("component", "postgres-passages")
		}
		r.logger = logger
		return nil
	}
}

// WithTable overrides the table name (default "passages").
func WithTable(name string) Option {
	return func(r *PassageRepository) error {
		if name == "" {
			return errors.New("postgres: table name cannot be empty")
		}
		r.table = pq.QuoteIdentifier(name)
		return nil
	}
}

// Open connects to dsn, creates the schema if needed and returns a repository
// that closes the connection pool on Close.
func Open(ctx context.Context, dsn string, embeddingDim int, opts ...Option) (storage.PassageRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	repo, err := newPassageRepository(ctx, db, embeddingDim, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	repo.ownsDB = true
	return repo, nil
}

// NewPassageRepository wraps an existing connection pool. The caller keeps
// ownership of db.
func NewPassageRepository(ctx context.Context, db *sql.DB, embeddingDim int, opts ...Option) (storage.PassageRepository, error) {
	return newPassageRepository(ctx, db, embeddingDim, opts...)
}

func newPassageRepository(ctx context.Context, db *sql.DB, embeddingDim int, opts ...Option) (*PassageRepository, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if embeddingDim <= 0 {
		return nil, ErrInvalidDimension
	}
	r := &PassageRepository{
		db:     db,
		table:  pq.QuoteIdentifier("passages"),
		logger: slog.Default().With("component", "postgres-passages"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.createTable(ctx, embeddingDim); err != nil {
		return nil, err
	}
	return r, nil
}

// createTable creates the extension, table and indexes if they do not exist.
func (r *PassageRepository) createTable(ctx context.Context, embeddingDim int) error {
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			namespace TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			article TEXT NOT NULL DEFAULT '',
			article_num TEXT NOT NULL DEFAULT '',
			text TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			attributes JSONB NOT NULL DEFAULT '{}',
			inserted_at TIMESTAMPTZ NOT NULL
		)`, r.table, embeddingDim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (namespace)`,
			pq.QuoteIdentifier(unquote(r.table)+"_namespace_idx"), r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s USING GIN (attributes)`,
			pq.QuoteIdentifier(unquote(r.table)+"_attributes_idx"), r.table),
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: create schema: %w", err)
		}
	}
	r.logger.Info("checked/created passages table", "table", r.table, "dim", embeddingDim)
	return nil
}

// Close closes the connection pool when the repository opened it.
func (r *PassageRepository) Close() error {
	if r.ownsDB {
		return r.db.Close()
	}
	return nil
}

// AddPassages upserts passages in a single transaction.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	now := time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`INSERT INTO %s
		(id, namespace, source, article, article_num, text, embedding, metadata, attributes, inserted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			namespace = EXCLUDED.namespace,
			source = EXCLUDED.source,
			article = EXCLUDED.article,
			article_num = EXCLUDED.article_num,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			attributes = EXCLUDED.attributes,
			inserted_at = EXCLUDED.inserted_at`, r.table)

	for _, p := range passages {
		if p.InsertedAt.IsZero() {
			p.InsertedAt = now
		}
		p.Vector = core.NormalizeVector(p.Vector)
		if err := core.ValidatePassage(p); err != nil {
			return nil, err
		}
		if p.Id == 0 {
			p.Id = core.IDFromContent(p.ContentKey())
		}
		metadata, err := marshalMap(p.Metadata)
		if err != nil {
			return nil, err
		}
		attributes, err := marshalMap(p.Attributes())
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, query,
			int64(p.Id),
			p.Namespace,
			p.Source,
			p.Article,
			p.ArticleNum,
			p.Text,
			pgvector.NewVector(p.Vector),
			metadata,
			attributes,
			p.InsertedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: insert passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return passages, nil
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT
		id, namespace, source, article, article_num, text, embedding, metadata, inserted_at
		FROM %s WHERE id = $1`, r.table), int64(id))

	var (
		p        core.Passage
		rawID    int64
		vec      pgvector.Vector
		metadata []byte
	)
	err := row.Scan(&rawID, &p.Namespace, &p.Source, &p.Article, &p.ArticleNum, &p.Text, &vec, &metadata, &p.InsertedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	p.Id = core.ID(rawID)
	p.Vector = vec.Slice()
	p.InsertedAt = p.InsertedAt.UTC()
	if p.Metadata, err = unmarshalMap(metadata); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePassages removes passages by ID. Nothing is deleted unless every ID exists.
func (r *PassageRepository) DeletePassages(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.table), pq.Array(raw))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(uniqueIDs(raw)) {
		return fmt.Errorf("%w: %d of %d passages", storage.ErrNotFound, len(ids)-int(n), len(ids))
	}
	return tx.Commit()
}

// CountPassages returns the number of passages in namespace.
func (r *PassageRepository) CountPassages(ctx context.Context, namespace string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE ($1 = '' OR namespace = $1)`, r.table),
		namespace,
	).Scan(&n)
	return n, err
}

// Search orders passages by cosine distance to the query vector.
func (r *PassageRepository) Search(ctx context.Context, req core.SearchRequest) ([]core.Match, error) {
	if req.TopK <= 0 || len(req.Vector) == 0 {
		return nil, storage.ErrInvalidQuery
	}
	filter, err := marshalMap(req.Filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, 1 - (embedding <=> $1) AS score, attributes
		FROM %s
		WHERE ($2 = '' OR namespace = $2) AND attributes @> $3::jsonb
		ORDER BY embedding <=> $1
		LIMIT $4`, r.table),
		pgvector.NewVector(core.NormalizeVector(req.Vector)),
		req.Namespace,
		filter,
		req.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: search: %w", err)
	}
	defer rows.Close()

	var matches []core.Match
	for rows.Next() {
		var (
			rawID int64
			score float64
			attrs []byte
		)
		if err := rows.Scan(&rawID, &score, &attrs); err != nil {
			return nil, err
		}
		m := core.Match{ID: core.ID(rawID).String(), Score: float32(score)}
		if req.IncludeMetadata {
			if m.Metadata, err = unmarshalMap(attrs); err != nil {
				return nil, err
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func marshalMap(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

func unmarshalMap(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

func uniqueIDs(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// unquote strips the double quotes added by pq.QuoteIdentifier.
func unquote(ident string) string {
	if len(ident) >= 2 && ident[0] == '"' && ident[len(ident)-1] == '"' {
		return ident[1 : len(ident)-1]
	}
	return ident
}
