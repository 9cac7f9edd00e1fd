package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveCategory(t *testing.T, repo *GormCategoryRepository, name string, parentID *uuid.UUID, createdAt time.Time) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(name, parentID)
	require.NoError(t, err)
	c.CreatedAt = createdAt
	c.UpdatedAt = createdAt
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestGormCategoryRepository_SaveAndFind(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	shoes := saveCategory(t, repo, "Shoes", nil, base)
	running := saveCategory(t, repo, "Running", &shoes.ID, base.Add(time.Minute))

	found, err := repo.FindByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, "Running", found.Name)
	assert.Equal(t, "running", found.Slug)
	require.NotNil(t, found.ParentID)
	assert.Equal(t, shoes.ID, *found.ParentID)
	assert.True(t, found.IsActive)
	assert.False(t, found.IsDeleted())

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCategoryRepository_FindAll(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	hats := saveCategory(t, repo, "Hats", nil, base.Add(2*time.Minute))
	shoes := saveCategory(t, repo, "Shoes", nil, base)
	hidden := saveCategory(t, repo, "Hidden", nil, base.Add(time.Minute))
	hidden.SetActive(false)
	require.NoError(t, repo.Save(ctx, hidden))
	gone := saveCategory(t, repo, "Gone", nil, base.Add(3*time.Minute))
	deletedBy := uuid.New()
	require.NoError(t, gone.SoftDelete(deletedBy, base.Add(time.Hour)))
	require.NoError(t, repo.Save(ctx, gone))

	t.Run("admin audience sees inactive live records in creation order", func(t *testing.T) {
		all, err := repo.FindAll(ctx, catalog.CategoryQuery{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []uuid.UUID{shoes.ID, hidden.ID, hats.ID}, []uuid.UUID{all[0].ID, all[1].ID, all[2].ID})
	})

	t.Run("public audience sees active only", func(t *testing.T) {
		active, err := repo.FindAll(ctx, catalog.CategoryQuery{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, active, 2)
	})

	t.Run("deleted listing carries lifecycle metadata", func(t *testing.T) {
		deleted, err := repo.FindAll(ctx, catalog.CategoryQuery{Deleted: true})
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		d, ok := deleted[0].Lifecycle.Deletion()
		require.True(t, ok)
		assert.Equal(t, deletedBy, d.By)
		assert.True(t, d.At.Equal(base.Add(time.Hour)))
	})
}

func TestGormCategoryRepository_ExistsByNameOrSlug(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	shoes := saveCategory(t, repo, "Shoes", nil, time.Now())

	exists, err := repo.ExistsByNameOrSlug(ctx, "shoes", "shoes", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNameOrSlug(ctx, "Shoes", "shoes", &shoes.ID)
	require.NoError(t, err)
	assert.False(t, exists, "record must not collide with itself")

	require.NoError(t, shoes.SoftDelete(uuid.New(), time.Now()))
	require.NoError(t, repo.Save(ctx, shoes))

	exists, err = repo.ExistsByNameOrSlug(ctx, "Shoes", "shoes", nil)
	require.NoError(t, err)
	assert.False(t, exists, "deleted records free their name")
}

func TestGormCategoryRepository_HasActiveChildren(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	parent := saveCategory(t, repo, "Shoes", nil, time.Now())

	has, err := repo.HasActiveChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.False(t, has)

	child := saveCategory(t, repo, "Running", &parent.ID, time.Now())
	has, err = repo.HasActiveChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, child.SoftDelete(uuid.New(), time.Now()))
	require.NoError(t, repo.Save(ctx, child))
	has, err = repo.HasActiveChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
