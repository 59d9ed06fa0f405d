package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestRepo connects to JURIS_TEST_DATABASE_URL and creates a throwaway table.
func openTestRepo(t *testing.T) storage.PassageRepository {
	t.Helper()
	dsn := os.Getenv("JURIS_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("JURIS_TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	table := "passages_test_" + uuid.NewString()[:8]
	repo, err := NewPassageRepository(context.Background(), db, 3, WithTable(table))
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec(`DROP TABLE IF EXISTS "` + table + `"`)
		repo.Close()
		db.Close()
	})
	return repo
}

func TestNewPassageRepository_Validation(t *testing.T) {
	_, err := NewPassageRepository(context.Background(), nil, 3)
	assert.ErrorIs(t, err, ErrNilDB)

	db, err := sql.Open("postgres", "postgres://localhost/none?sslmode=disable")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewPassageRepository(context.Background(), db, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = NewPassageRepository(context.Background(), db, 3, WithTable(""))
	assert.Error(t, err)
}

func TestPassageRepository(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddPassages(ctx,
		&core.Passage{Namespace: "ccq", Source: "ccq.pdf", Article: "Art. 1457", ArticleNum: "1457", Text: "responsabilité", Vector: []float32{1, 0, 0}},
		&core.Passage{Namespace: "ccq", Source: "ccq.pdf", Article: "Art. 742", ArticleNum: "742", Text: "donation", Vector: []float32{0.8, 0.6, 0}},
		&core.Passage{Namespace: "cpc", Source: "cpc.pdf", Text: "procédure", Vector: []float32{0, 1, 0}, Metadata: map[string]string{"filename": "cpc.pdf"}},
	)
	require.NoError(t, err)
	require.Len(t, added, 3)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetPassage(ctx, added[2].Id)
		require.NoError(t, err)
		assert.Equal(t, "procédure", got.Text)
		assert.Equal(t, "cpc.pdf", got.Metadata["filename"])

		_, err = repo.GetPassage(ctx, core.ID(1))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.CountPassages(ctx, "ccq")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("search", func(t *testing.T) {
		matches, err := repo.Search(ctx, core.SearchRequest{Vector: []float32{1, 0, 0}, TopK: 10, Namespace: "ccq", IncludeMetadata: true})
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, added[0].Id.String(), matches[0].ID)
		assert.InDelta(t, 1.0, float64(matches[0].Score), 1e-4)
		assert.Equal(t, "Art. 1457", matches[0].Metadata[core.MetaArticle])

		matches, err = repo.Search(ctx, core.SearchRequest{
			Vector: []float32{1, 0, 0},
			TopK:   10,
			Filter: map[string]string{core.MetaArticleNum: "742"},
		})
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, added[1].Id.String(), matches[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeletePassages(ctx, added[0].Id))
		err := repo.DeletePassages(ctx, added[0].Id, added[1].Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		// Rolled back: added[1] survives the failed batch
		_, err = repo.GetPassage(ctx, added[1].Id)
		assert.NoError(t, err)
	})
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "passages", unquote(`"passages"`))
	assert.Equal(t, "x", unquote("x"))
}
