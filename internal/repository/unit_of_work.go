package repository

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/datastore"
	"github.com/jbweber/homelab/gamestore/internal/domain"
	"github.com/jbweber/homelab/gamestore/internal/logging"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
)

// UnitOfWork groups the repositories of one business operation over a
// single session. Create one per operation with Factory.New and Close it
// when done; it must not be shared between goroutines.
type UnitOfWork struct {
	session *Session

	games      GameRepository
	users      UserRepository
	orders     OrderRepository
	reviews    Repository[domain.Review]
	genres     Repository[domain.Genre]
	platforms  Repository[domain.Platform]
	orderItems Repository[domain.OrderItem]
}

func (u *UnitOfWork) Games() GameRepository                    { return u.games }
func (u *UnitOfWork) Users() UserRepository                    { return u.users }
func (u *UnitOfWork) Orders() OrderRepository                  { return u.orders }
func (u *UnitOfWork) Reviews() Repository[domain.Review]       { return u.reviews }
func (u *UnitOfWork) Genres() Repository[domain.Genre]         { return u.genres }
func (u *UnitOfWork) Platforms() Repository[domain.Platform]   { return u.platforms }
func (u *UnitOfWork) OrderItems() Repository[domain.OrderItem] { return u.orderItems }

// SaveChanges writes all staged changes and returns the number of rows written.
func (u *UnitOfWork) SaveChanges(ctx context.Context) (int, error) {
	return u.session.SaveChanges(ctx)
}

// BeginTransaction returns ErrTransactionActive if a transaction is already open.
func (u *UnitOfWork) BeginTransaction(ctx context.Context) error {
	return u.session.BeginTransaction(ctx)
}

func (u *UnitOfWork) CommitTransaction(ctx context.Context) error {
	return u.session.CommitTransaction(ctx)
}

func (u *UnitOfWork) RollbackTransaction(ctx context.Context) error {
	return u.session.RollbackTransaction(ctx)
}

func (u *UnitOfWork) InTransaction() bool { return u.session.InTransaction() }

func (u *UnitOfWork) HasPendingChanges() bool { return u.session.HasPendingChanges() }

// Close rolls back any open transaction and discards staged changes.
func (u *UnitOfWork) Close() error {
	return u.session.Close()
}

// Factory creates units of work over a shared datastore.
type Factory struct {
	ds      *datastore.Datastore
	metrics *metrics.StoreMetrics
	log     *log.Entry
	now     func() time.Time
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithMetrics records commits, rollbacks and save timings.
func WithMetrics(m *metrics.StoreMetrics) FactoryOption {
	return func(f *Factory) { f.metrics = m }
}

// WithLogger sets the entry units of work log through.
func WithLogger(entry *log.Entry) FactoryOption {
	return func(f *Factory) { f.log = entry }
}

// WithClock overrides the timestamp source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) { f.now = now }
}

// NewFactory creates a unit-of-work factory.
func NewFactory(ds *datastore.Datastore, opts ...FactoryOption) *Factory {
	f := &Factory{
		ds:  ds,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logging.Discard()
	}
	return f
}

// New creates a unit of work with every repository bound to one session.
func (f *Factory) New() *UnitOfWork {
	s := &Session{
		ds:      f.ds,
		metrics: f.metrics,
		log:     f.log,
		now:     f.now,
	}
	return &UnitOfWork{
		session:    s,
		games:      newGameRepository(s),
		users:      newUserRepository(s),
		orders:     newOrderRepository(s),
		reviews:    newSQLRepository(s, reviewMapping),
		genres:     newSQLRepository(s, genreMapping),
		platforms:  newSQLRepository(s, platformMapping),
		orderItems: newSQLRepository(s, orderItemMapping),
	}
}
