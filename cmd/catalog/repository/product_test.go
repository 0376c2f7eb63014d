package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toolworks/catalog/cmd/catalog/models"
	"github.com/toolworks/catalog/common/logger"
)

func newTestRepo(t *testing.T) (*ProductRepository, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o644))

	return NewProductRepository(path, logger.New("error", "json")), path
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	drill := models.Product{
		ID:    "p1",
		Name:  "Drill",
		Tag:   "tools",
		Image: "/uploads/abc123.png",
		Specs: []any{map[string]any{"label": "diameter", "value": "6mm"}},
	}
	mill := models.Product{ID: "p2", Name: "End Mill", Specs: []any{}}

	require.NoError(t, repo.Append(ctx, drill))
	require.NoError(t, repo.Append(ctx, mill))

	// A fresh repository instance must see the same records: nothing lives
	// only in memory between requests
	reloaded := NewProductRepository(path, logger.New("error", "json"))
	products, err := reloaded.LoadAll(ctx)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, drill, products[0])
	assert.Equal(t, mill, products[1])
}

func TestAppendRejectsDuplicateID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill"}))
	err := repo.Append(ctx, models.Product{ID: "p1", Name: "Other"})
	require.Error(t, err)
}

func TestLoadAllMissingFile(t *testing.T) {
	repo := NewProductRepository(filepath.Join(t.TempDir(), "absent.json"), logger.New("error", "json"))

	_, err := repo.LoadAll(context.Background())
	require.Error(t, err)
}

func TestLoadAllMalformedDocument(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))

	// Corruption surfaces as an error on every read, never as an empty list
	products, err := repo.LoadAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, products)
}

func TestSaveAllLoadAllIsNoOp(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill", Specs: []any{}}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveAll(ctx, products))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateByID(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill", Tag: "old"}))

	updated, err := repo.UpdateByID(ctx, "p1", func(p *models.Product) error {
		p.Tag = "new"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Tag)
	assert.Equal(t, "Drill", updated.Name)

	reloaded := NewProductRepository(path, logger.New("error", "json"))
	products, err := reloaded.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "new", products[0].Tag)
}

func TestUpdateByIDNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.UpdateByID(context.Background(), "missing", func(p *models.Product) error {
		return nil
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByIDCallbackErrorDoesNotPersist(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill"}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.UpdateByID(ctx, "p1", func(p *models.Product) error {
		p.Name = "changed"
		return fmt.Errorf("boom")
	})
	require.Error(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRemoveByID(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill", Image: "/uploads/x.png"}))
	require.NoError(t, repo.Append(ctx, models.Product{ID: "p2", Name: "End Mill"}))

	removed, err := repo.RemoveByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/x.png", removed.Image)

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p2", products[0].ID)
}

func TestRemoveByIDUnknownLeavesDocumentUntouched(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.Product{ID: "p1", Name: "Drill"}))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = repo.RemoveByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "document must be byte-for-byte unchanged")
}

func TestConcurrentAppendsLoseNoUpdates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Append(ctx, models.Product{
				ID:   fmt.Sprintf("p%d", i),
				Name: fmt.Sprintf("Product %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	products, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, writers)
}
