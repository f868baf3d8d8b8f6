package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/result"
)

func TestGenreService(t *testing.T) {
	f := newFixture(t)
	svc := NewGenreService(f.uows, f.logger, f.metrics)
	ctx := context.Background()

	t.Run("ListSeededGenresWithGameCounts", func(t *testing.T) {
		res := svc.GetAll(ctx)
		require.True(t, res.IsSuccess(), res.Error())

		counts := map[string]int{}
		for _, g := range res.Value() {
			counts[g.Name] = g.GameCount
		}
		assert.Len(t, counts, 5)
		assert.Equal(t, 1, counts["Strategy"])
		assert.Equal(t, 0, counts["Sports"])
	})

	t.Run("CreateAndRejectDuplicateNames", func(t *testing.T) {
		res := svc.Create(ctx, CreateCatalogEntryRequest{Name: "Puzzle", Description: domain.StringPtr("Brain teasers")})
		require.True(t, res.IsSuccess(), res.Error())
		assert.NotZero(t, res.Value().ID)
		assert.Equal(t, "Puzzle", res.Value().Name)

		dup := svc.Create(ctx, CreateCatalogEntryRequest{Name: "Action"})
		assert.Equal(t, result.Conflict, dup.ErrorType())
		assert.Equal(t, "Genre with this name already exists", dup.Error())

		blank := svc.Create(ctx, CreateCatalogEntryRequest{})
		assert.Equal(t, result.Validation, blank.ErrorType())
		assert.Equal(t, "name is required", blank.Error())
	})

	t.Run("RefuseToDeleteGenreInUse", func(t *testing.T) {
		status := svc.Delete(ctx, strategyGenreID)
		assert.Equal(t, result.Conflict, status.ErrorType())
		assert.Equal(t, "Cannot delete genre with existing games", status.Error())

		assert.True(t, svc.GetByID(ctx, strategyGenreID).IsSuccess())
	})

	t.Run("DeleteUnusedGenre", func(t *testing.T) {
		status := svc.Delete(ctx, 5)
		require.True(t, status.IsSuccess(), status.Error())

		res := svc.GetByID(ctx, 5)
		assert.Equal(t, result.NotFound, res.ErrorType())
		assert.Equal(t, "Genre not found", res.Error())
	})

	t.Run("RejectInvalidIds", func(t *testing.T) {
		assert.Equal(t, "Invalid Genre ID", svc.GetByID(ctx, 0).Error())
		assert.Equal(t, result.Validation, svc.Delete(ctx, 0).ErrorType())
		assert.Equal(t, result.NotFound, svc.Delete(ctx, 404).ErrorType())
	})
}

func TestPlatformService(t *testing.T) {
	f := newFixture(t)
	svc := NewPlatformService(f.uows, f.logger, f.metrics)
	ctx := context.Background()

	res := svc.GetByID(ctx, pcPlatformID)
	require.True(t, res.IsSuccess(), res.Error())
	assert.Equal(t, "PC", res.Value().Name)
	assert.Equal(t, 1, res.Value().GameCount)

	status := svc.Delete(ctx, pcPlatformID)
	assert.Equal(t, "Cannot delete platform with existing games", status.Error())

	dup := svc.Create(ctx, CreateCatalogEntryRequest{Name: "PC"})
	assert.Equal(t, "Platform with this name already exists", dup.Error())
	assert.Equal(t, 1.0, f.failures(t, "create_platform", "conflict"))
}
