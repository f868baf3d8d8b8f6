package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/gamestore/internal/logging"
	"github.com/jbweber/homelab/gamestore/internal/metrics"
	"github.com/jbweber/homelab/gamestore/internal/service"
)

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services bundles the use cases the API exposes
type Services struct {
	Games     GamesService
	Reviews   ReviewsService
	Genres    CatalogService[service.GenreDto]
	Platforms CatalogService[service.PlatformDto]
	Users     UsersService
	Orders    OrdersService
}

// NewServices builds every service on top of one unit of work factory.
func NewServices(uows service.UnitOfWorkFactory, logger *log.Entry, m *metrics.StoreMetrics) Services {
	return Services{
		Games:     service.NewGameService(uows, logger, m),
		Reviews:   service.NewReviewService(uows, logger, m),
		Genres:    service.NewGenreService(uows, logger, m),
		Platforms: service.NewPlatformService(uows, logger, m),
		Users:     service.NewUserService(uows, logger, m),
		Orders:    service.NewOrderService(uows, logger, m),
	}
}

// API holds the service dependencies of the HTTP handlers
type API struct {
	services Services
	health   HealthChecker
	gatherer prometheus.Gatherer
	logger   *log.Entry
}

// NewAPI creates a new API. A nil gatherer leaves /metrics unmounted.
func NewAPI(services Services, health HealthChecker, gatherer prometheus.Gatherer) *API {
	return &API{services: services, health: health, gatherer: gatherer, logger: logging.Discard()}
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", a.healthHandler)
	if a.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		RegisterGamesRoutes(r, NewGames(a.services.Games, a.services.Reviews))
		RegisterCatalogRoutes(r, NewGenres(a.services.Genres))
		RegisterCatalogRoutes(r, NewPlatforms(a.services.Platforms))
		RegisterUsersRoutes(r, NewUsers(a.services.Users, a.services.Orders))
	})
}

// NewRouter returns a chi router with request ids, access logging through
// logger and panic recovery, serving every route of a. Handlers of a log
// through logger as well.
func NewRouter(a *API, logger *log.Entry) chi.Router {
	a.logger = logger
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	a.RegisterRoutes(r)
	return r
}

// healthHandler handles GET /healthz.
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.health.Health(r.Context()); err != nil {
		a.logger.WithError(err).Error("health check failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
