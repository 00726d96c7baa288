package persistence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/domain/content"
)

func TestGormArchiveRepository(t *testing.T) {
	db := setupTestDB(t)
	archive := NewGormArchiveRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()

	p := newTestProduct("turkey-bowl", true)
	require.NoError(t, products.Save(ctx, p))

	t.Run("archive snapshots the row and sets the flag", func(t *testing.T) {
		snap, err := archive.Archive(ctx, content.TypeProduct, p.ID, "seasonal", "admin")
		require.NoError(t, err)
		assert.Equal(t, p.ID, snap.ContentID)
		assert.Equal(t, "seasonal", snap.Reason)

		var data map[string]any
		require.NoError(t, json.Unmarshal(snap.Data, &data))
		assert.Equal(t, "turkey-bowl", data["handle"])

		found, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, found.Archived)
	})

	t.Run("archiving twice fails", func(t *testing.T) {
		_, err := archive.Archive(ctx, content.TypeProduct, p.ID, "again", "admin")
		assert.ErrorIs(t, err, content.ErrAlreadyArchived)
	})

	t.Run("restore clears the flag and marks the snapshot", func(t *testing.T) {
		snap, err := archive.Restore(ctx, content.TypeProduct, p.ID, "admin")
		require.NoError(t, err)
		assert.True(t, snap.Restored)
		assert.Equal(t, "admin", snap.RestoredBy)

		found, err := products.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, found.Archived)

		_, err = archive.Restore(ctx, content.TypeProduct, p.ID, "admin")
		assert.ErrorIs(t, err, content.ErrNotArchived)
	})

	t.Run("unknown rows and types", func(t *testing.T) {
		_, err := archive.Archive(ctx, content.TypeCaseStudy, uuid.New(), "", "admin")
		assert.ErrorIs(t, err, content.ErrContentNotFound)

		_, err = archive.Archive(ctx, content.TypeVideo, uuid.New(), "", "admin")
		assert.ErrorIs(t, err, content.ErrUnsupportedType)
	})

	t.Run("list by type", func(t *testing.T) {
		snaps, err := archive.List(ctx, content.TypeProduct)
		require.NoError(t, err)
		assert.Len(t, snaps, 1)

		snaps, err = archive.List(ctx, content.TypeCaseStudy)
		require.NoError(t, err)
		assert.Empty(t, snaps)
	})
}
