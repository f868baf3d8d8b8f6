package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/testutil"
)

// Seeded reference data.
const (
	seedActionGenreID   int64 = 1
	seedStrategyGenreID int64 = 4
	seedPCPlatformID    int64 = 1
	seedPS5PlatformID   int64 = 2
	seedDotaGameID      int64 = 1
)

func newTestFactory(t *testing.T, opts ...FactoryOption) *Factory {
	t.Helper()
	ds := testutil.SetupTestDatastore(t)
	opts = append([]FactoryOption{WithClock(func() time.Time { return testutil.FixedTime })}, opts...)
	return NewFactory(ds, opts...)
}

func newTestUnitOfWork(t *testing.T, f *Factory) *UnitOfWork {
	t.Helper()
	uow := f.New()
	t.Cleanup(func() { _ = uow.Close() })
	return uow
}

func newGame(title string, price string) *domain.Game {
	return &domain.Game{
		Title:       title,
		Description: domain.StringPtr(title + " description"),
		Price:       decimal.RequireFromString(price),
		ReleaseDate: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
		GenreID:     seedActionGenreID,
		PlatformID:  seedPCPlatformID,
	}
}

func newUser(username, email string) *domain.User {
	return &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
	}
}

// addGames saves count active games titled "Game 01" and up in one SaveChanges.
func addGames(t *testing.T, uow *UnitOfWork, count int) []*domain.Game {
	t.Helper()
	ctx := context.Background()
	games := make([]*domain.Game, 0, count)
	for i := 1; i <= count; i++ {
		g, err := uow.Games().Add(ctx, newGame(fmt.Sprintf("Game %02d", i), "19.99"))
		require.NoError(t, err)
		games = append(games, g)
	}
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
	return games
}

func saveUser(t *testing.T, uow *UnitOfWork, username, email string) *domain.User {
	t.Helper()
	ctx := context.Background()
	u, err := uow.Users().Add(ctx, newUser(username, email))
	require.NoError(t, err)
	_, err = uow.SaveChanges(ctx)
	require.NoError(t, err)
	return u
}

func titles(games []*domain.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.Title
	}
	return out
}
