package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/ledgercert/internal/http/certificate"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/counterparty"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/identity"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/importcsv"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/risk"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/transaction"
)

type Handlers struct {
	Transactions   *transaction.Handler
	Import         *importcsv.Handler
	Counterparties *counterparty.Handler
	Identity       *identity.Handler
	Risk           *risk.Handler
	Certificate    *certificate.Handler
}

type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	// Gatherer backs /metrics; nil means the default registry.
	Gatherer prometheus.Gatherer
	// Authenticate guards /api/v1 when set.
	Authenticate func(http.Handler) http.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Authenticate != nil {
			r.Use(opts.Authenticate)
		}

		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/counterparties", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Counterparties.Routes(r)
		})

		r.Route("/identity", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Identity.Routes(r)
		})

		r.Route("/risk", h.Risk.Routes)
		r.Route("/certificate", h.Certificate.Routes)
	})

	return router
}
