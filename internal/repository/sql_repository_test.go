package repository

import (
	"context"
	"fmt"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/testutil"
)

func TestRepository_AddSaveGetByID(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	game := newGame("Hades", "24.99")
	added, err := uow.Games().Add(ctx, game)
	require.NoError(t, err)
	assert.Same(t, game, added)
	assert.Zero(t, game.ID, "ID is assigned at SaveChanges")

	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotZero(t, game.ID)
	assert.True(t, testutil.FixedTime.Equal(game.CreatedAt))

	found, err := uow.Games().GetByID(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hades", found.Title)
	assert.Equal(t, "Hades description", *found.Description)
	assert.True(t, game.Price.Equal(found.Price), "price %s != %s", game.Price, found.Price)
	assert.True(t, game.ReleaseDate.Equal(found.ReleaseDate))
	assert.True(t, found.IsActive)
	assert.Nil(t, found.ImageURL)
	assert.Nil(t, found.UpdatedAt)
	assert.Equal(t, seedActionGenreID, found.GenreID)
	assert.Equal(t, seedPCPlatformID, found.PlatformID)
	assert.True(t, testutil.FixedTime.Equal(found.CreatedAt))
}

func TestRepository_StagedChangesVisibleToSameUnitOfWork(t *testing.T) {
	f := newTestFactory(t)
	uow := newTestUnitOfWork(t, f)
	other := newTestUnitOfWork(t, f)
	ctx := context.Background()

	game, err := uow.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)
	game.Title = "Renamed"
	require.NoError(t, uow.Games().Update(ctx, game))

	found, err := uow.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	assert.True(t, uow.HasPendingChanges(), "flushed for a read is not saved")

	_, err = uow.Genres().Add(ctx, &domain.Genre{Name: "Roguelike"})
	require.NoError(t, err)
	assert.True(t, genreExists(t, uow, "Roguelike"))

	celeste, err := uow.Games().Add(ctx, newGame("Celeste", "19.99"))
	require.NoError(t, err)
	count, err := uow.Games().Count(ctx, sq.Eq{"title": "Celeste"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.NotZero(t, celeste.ID)

	assert.False(t, genreExists(t, other, "Roguelike"), "unsaved changes stay private")
	theirs, err := other.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)
	assert.Equal(t, "Dota 2", theirs.Title)

	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, uow.HasPendingChanges())

	assert.True(t, genreExists(t, other, "Roguelike"))
	theirs, err = other.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", theirs.Title)
}

func TestRepository_StagedChangesFailingOnRead(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	fresh, err := uow.Genres().Add(ctx, &domain.Genre{Name: "Fresh"})
	require.NoError(t, err)
	_, err = uow.Genres().Add(ctx, &domain.Genre{Name: "Action"})
	require.NoError(t, err)

	_, err = uow.Genres().GetAll(ctx)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Zero(t, fresh.ID)
	assert.False(t, uow.HasPendingChanges())
	assert.False(t, genreExists(t, uow, "Fresh"))
}

func TestRepository_SaveChangesWithoutPending(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))

	n, err := uow.SaveChanges(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepository_AddRejectsInvalidEntities(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	_, err := uow.Games().Add(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidEntity)

	persisted := newGame("Persisted", "1.00")
	persisted.ID = 42
	_, err = uow.Games().Add(ctx, persisted)
	assert.ErrorIs(t, err, ErrInvalidEntity)

	assert.ErrorIs(t, uow.Games().Update(ctx, newGame("Unsaved", "1.00")), ErrInvalidEntity)
	assert.ErrorIs(t, uow.Games().Delete(ctx, nil), ErrInvalidEntity)
	assert.False(t, uow.HasPendingChanges())
}

func TestRepository_Update(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	game, err := uow.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)

	game.Title = "Dota 2 Reborn"
	game.ImageURL = nil
	require.NoError(t, uow.Games().Update(ctx, game))
	// Staging the same entity again writes it once.
	require.NoError(t, uow.Games().Update(ctx, game))

	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotNil(t, game.UpdatedAt)
	assert.True(t, testutil.FixedTime.Equal(*game.UpdatedAt))

	found, err := uow.Games().GetByID(ctx, seedDotaGameID)
	require.NoError(t, err)
	assert.Equal(t, "Dota 2 Reborn", found.Title)
	assert.Nil(t, found.ImageURL)
	require.NotNil(t, found.UpdatedAt)
	assert.True(t, testutil.FixedTime.Equal(*found.UpdatedAt))
}

func TestRepository_UpdateMissingRow(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	ghost := newGame("Ghost", "1.00")
	ghost.ID = 9999
	require.NoError(t, uow.Games().Update(ctx, ghost))

	_, err := uow.SaveChanges(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_DeleteByID(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	games := addGames(t, uow, 2)
	id := games[0].ID

	require.NoError(t, uow.Games().DeleteByID(ctx, id))
	n, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = uow.Games().GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("NoopForMissingID", func(t *testing.T) {
		require.NoError(t, uow.Games().DeleteByID(ctx, id))
		assert.False(t, uow.HasPendingChanges())
		n, err := uow.SaveChanges(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	count, err := uow.Games().Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "seeded game and the remaining added game")
}

func TestRepository_Delete(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	genre, err := uow.Genres().Add(ctx, &domain.Genre{Name: "Puzzle"})
	require.NoError(t, err)
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	require.NoError(t, uow.Genres().Delete(ctx, genre))
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)

	exists, err := uow.Genres().Exists(ctx, sq.Eq{"name": "Puzzle"})
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_DeleteRestrictedByForeignKey(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	require.NoError(t, uow.Genres().DeleteByID(ctx, seedStrategyGenreID))
	_, err := uow.SaveChanges(ctx)
	assert.ErrorIs(t, err, ErrConstraint)

	_, err = uow.Genres().GetByID(ctx, seedStrategyGenreID)
	assert.NoError(t, err)
}

func TestRepository_Queries(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()
	addGames(t, uow, 3)

	t.Run("ReturnAllInInsertionOrder", func(t *testing.T) {
		all, err := uow.Games().GetAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Dota 2", "Game 01", "Game 02", "Game 03"}, titles(all))
	})

	t.Run("FindMatching", func(t *testing.T) {
		found, err := uow.Games().Find(ctx, sq.Like{"title": "Game%"})
		require.NoError(t, err)
		assert.Len(t, found, 3)
	})

	t.Run("ReturnEmptySliceWhenNothingMatches", func(t *testing.T) {
		found, err := uow.Games().Find(ctx, sq.Eq{"title": "nope"})
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("ReturnFirstOrNil", func(t *testing.T) {
		first, err := uow.Games().FirstOrDefault(ctx, sq.Like{"title": "Game%"})
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.Equal(t, "Game 01", first.Title)

		none, err := uow.Games().FirstOrDefault(ctx, sq.Eq{"title": "nope"})
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("CountWithAndWithoutFilter", func(t *testing.T) {
		all, err := uow.Games().Count(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, all)

		filtered, err := uow.Games().Count(ctx, sq.Like{"title": "Game%"})
		require.NoError(t, err)
		assert.Equal(t, 3, filtered)
	})

	t.Run("ReturnNotFound", func(t *testing.T) {
		_, err := uow.Games().GetByID(ctx, 99999)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_GetPaged(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	// Insert out of title order so ordering is observable.
	for i := 12; i >= 1; i-- {
		_, err := uow.Games().Add(ctx, newGame(fmt.Sprintf("Paged %02d", i), "9.99"))
		require.NoError(t, err)
	}
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)

	req := PageRequest{
		PageNumber: 2,
		PageSize:   5,
		Filter:     sq.Like{"title": "Paged%"},
		OrderBy:    []string{"title"},
	}
	items, total, err := uow.Games().GetPaged(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, []string{"Paged 06", "Paged 07", "Paged 08", "Paged 09", "Paged 10"}, titles(items))

	req.PageNumber = 3
	items, total, err = uow.Games().GetPaged(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Equal(t, []string{"Paged 11", "Paged 12"}, titles(items))

	req.PageNumber = 4
	items, _, err = uow.Games().GetPaged(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepository_GetPagedRejectsBounds(t *testing.T) {
	ds := testutil.SetupTestDatastore(t)
	uow := newTestUnitOfWork(t, NewFactory(ds))
	ctx := context.Background()

	// A closed store proves the bounds check happens first.
	require.NoError(t, ds.DB.Close())

	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"page zero", 0, 10},
		{"negative page", -1, 10},
		{"size zero", 1, 0},
		{"size over max", 1, MaxPageSize + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := uow.Games().GetPaged(ctx, PageRequest{PageNumber: tt.pageNumber, PageSize: tt.pageSize})
			assert.ErrorIs(t, err, ErrInvalidArgument)

			_, _, err = uow.Games().SearchGames(ctx, GameSearch{PageNumber: tt.pageNumber, PageSize: tt.pageSize})
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRepository_Relations(t *testing.T) {
	uow := newTestUnitOfWork(t, newTestFactory(t))
	ctx := context.Background()

	t.Run("LoadBelongsTo", func(t *testing.T) {
		game, err := uow.Games().GetByIDWithRelations(ctx, seedDotaGameID, "genre", "platform")
		require.NoError(t, err)
		require.NotNil(t, game.Genre)
		require.NotNil(t, game.Platform)
		assert.Equal(t, "Strategy", game.Genre.Name)
		assert.Equal(t, "PC", game.Platform.Name)
		assert.Nil(t, game.Reviews, "relations not requested stay unloaded")
	})

	t.Run("LoadHasManyAsEmptySlice", func(t *testing.T) {
		genres, err := uow.Genres().GetAllWithRelations(ctx, "games")
		require.NoError(t, err)
		require.Len(t, genres, 5)
		for _, g := range genres {
			require.NotNil(t, g.Games, "genre %s", g.Name)
			if g.ID == seedStrategyGenreID {
				assert.Equal(t, []string{"Dota 2"}, titles(g.Games))
			} else {
				assert.Empty(t, g.Games)
			}
		}
	})

	t.Run("LoadNestedPaths", func(t *testing.T) {
		platform, err := uow.Platforms().GetByIDWithRelations(ctx, seedPCPlatformID, "games.genre")
		require.NoError(t, err)
		require.Len(t, platform.Games, 1)
		require.NotNil(t, platform.Games[0].Genre)
		assert.Equal(t, "Strategy", platform.Games[0].Genre.Name)
	})

	t.Run("RejectUnknownRelation", func(t *testing.T) {
		_, err := uow.Games().GetByIDWithRelations(ctx, seedDotaGameID, "publisher")
		assert.ErrorIs(t, err, ErrUnknownRelation)

		_, err = uow.Games().GetAllWithRelations(ctx, "reviews.author")
		assert.ErrorIs(t, err, ErrUnknownRelation)
	})
}

func TestAnd(t *testing.T) {
	assert.Nil(t, And())
	assert.Nil(t, And(nil, nil))

	single := sq.Eq{"id": 1}
	assert.Equal(t, single, And(nil, single))

	query, args, err := And(sq.Eq{"a": 1}, nil, sq.Eq{"b": 2}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(a = ? AND b = ?)", query)
	assert.Equal(t, []any{1, 2}, args)
}
