package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/gamestore/internal/datastore"
	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/repository"
	"github.com/jbweber/homelab/gamestore/internal/testutil"
)

const (
	dotaGameID      int64 = 1
	strategyGenreID int64 = 4
	pcPlatformID    int64 = 1
)

type fixture struct {
	ds       *datastore.Datastore
	uows     *repository.Factory
	logger   *log.Entry
	hook     *logtest.Hook
	registry *prometheus.Registry
	metrics  *metrics.StoreMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	reg := prometheus.NewRegistry()
	m := metrics.NewStoreMetricsWithRegisterer(reg)
	ds := testutil.SetupTestDatastore(t)

	return &fixture{
		ds:       ds,
		uows:     repository.NewFactory(ds, repository.WithMetrics(m)),
		logger:   log.NewEntry(logger),
		hook:     hook,
		registry: reg,
		metrics:  m,
	}
}

// failures returns the service failure count recorded for op and category.
func (f *fixture) failures(t *testing.T, op, category string) float64 {
	t.Helper()
	families, err := f.registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "gamestore_service_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["operation"] == op && labels["category"] == category {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// save stages entities through fn and saves them in one unit of work.
func (f *fixture) save(t *testing.T, fn func(ctx context.Context, uow *repository.UnitOfWork)) {
	t.Helper()
	ctx := context.Background()
	uow := f.uows.New()
	defer uow.Close()
	fn(ctx, uow)
	_, err := uow.SaveChanges(ctx)
	require.NoError(t, err)
}

func (f *fixture) addGame(t *testing.T, title, price string, active bool) *domain.Game {
	t.Helper()
	game := &domain.Game{
		Title:       title,
		Price:       decimal.RequireFromString(price),
		ReleaseDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		IsActive:    active,
		GenreID:     strategyGenreID,
		PlatformID:  pcPlatformID,
	}
	f.save(t, func(ctx context.Context, uow *repository.UnitOfWork) {
		_, err := uow.Games().Add(ctx, game)
		require.NoError(t, err)
	})
	return game
}

func (f *fixture) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    "Test",
	}
	f.save(t, func(ctx context.Context, uow *repository.UnitOfWork) {
		_, err := uow.Users().Add(ctx, user)
		require.NoError(t, err)
	})
	return user
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.ds.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
