package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/anuncios-backend/api/controllers"
	"github.com/angelmondragon/anuncios-backend/api/middleware"
	"github.com/angelmondragon/anuncios-backend/internal/listings"
	"github.com/angelmondragon/anuncios-backend/internal/publications"
	"github.com/angelmondragon/anuncios-backend/pkg/config"
	"github.com/angelmondragon/anuncios-backend/pkg/logger"
	"github.com/angelmondragon/anuncios-backend/pkg/redis"
)

// NewRouter mounts health, metrics and the /api/v1 surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	listingsService listings.Service,
	publicationsService publications.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/enums", controllers.Enums())

		r.Route("/listings", func(r chi.Router) {
			r.Get("/", controllers.ListingsList(listingsService, logg))
			r.Post("/", controllers.ListingCreate(listingsService, logg))
			r.Route("/{listingId}", func(r chi.Router) {
				r.Get("/", controllers.ListingGet(listingsService, logg))
				r.Put("/", controllers.ListingUpdate(listingsService, logg))
				r.Delete("/", controllers.ListingDelete(listingsService, logg))
				r.Post("/duplicate", controllers.ListingDuplicate(listingsService, logg))
				r.Get("/publications", controllers.ListingPublications(publicationsService, logg))
			})
		})

		r.Post("/publications", controllers.Publish(publicationsService, logg))
	})

	return r
}
