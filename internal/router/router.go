package router

import (
	"net/http"
	"time"

	_ "pet-wellness/docs"
	"pet-wellness/internal/domain/emotions"
	"pet-wellness/internal/domain/pets"
	"pet-wellness/internal/domain/records"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/domain/wellness"
	"pet-wellness/internal/middleware"
	"pet-wellness/internal/platform/logger"
	"pet-wellness/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	Logger logger.Logger

	// Opcional: si Stores.Pets es nil, in-memory.
	Stores Stores

	// Opcional: sin cache los reportes se recalculan siempre.
	Cache wellness.Cache

	Weights  *wellness.Weights
	Location *time.Location

	// Tests: reloj fijo para el reporte.
	Clock func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier, log.With(map[string]any{"component": "auth"})))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	stores := opts.Stores
	if stores.Pets == nil || stores.Records == nil {
		stores = MemoryStores()
	}

	// Services por módulo
	classifier := emotions.NewClassifier()
	petsSvc := pets.NewService(stores.Pets)
	recordsSvc := records.NewService(stores.Records, classifier, log.With(map[string]any{"component": "records"}))

	wopts := []wellness.ServiceOption{
		wellness.WithLogger(log.With(map[string]any{"component": "wellness"})),
	}
	if opts.Cache != nil {
		wopts = append(wopts, wellness.WithCache(opts.Cache))
	}
	if opts.Weights != nil {
		wopts = append(wopts, wellness.WithWeights(*opts.Weights))
	}
	if opts.Location != nil {
		wopts = append(wopts, wellness.WithLocation(opts.Location))
	}
	if opts.Clock != nil {
		wopts = append(wopts, wellness.WithClock(opts.Clock))
	}
	wellnessSvc := wellness.NewService(recordsSvc, wopts...)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc)
	records.RegisterRoutes(r, recordsSvc, petsSvc)
	wellness.RegisterRoutes(r, wellnessSvc, petsSvc)
	vitals.RegisterRoutes(r)
	emotions.RegisterRoutes(r, classifier)

	return r
}
