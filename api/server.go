package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/metrics"
	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

type Options struct {
	// SignatureWindow bounds how far a request timestamp may drift from now.
	SignatureWindow time.Duration
	// Services reports runner healths for /health.
	Services func() []models.ServiceHealth
	// Persist writes committed events through before a token-moving
	// mutation replies. Failed writes stay queued for the next flush.
	Persist func() bool
	Clock   func() time.Time
}

// Server exposes the registry and ledger over HTTP. Mutations run one at a
// time behind writeMu so concurrent callers never trip the reentrancy guard.
type Server struct {
	registry *registry.Registry
	ledger   *registry.DonationLedger

	window   time.Duration
	seen     *cache.Cache
	services func() []models.ServiceHealth
	persist  func() bool
	now      func() time.Time

	writeMu sync.Mutex
}

func NewServer(reg *registry.Registry, ledger *registry.DonationLedger, opts Options) *Server {
	s := &Server{
		registry: reg,
		ledger:   ledger,
		window:   opts.SignatureWindow,
		services: opts.Services,
		persist:  opts.Persist,
		now:      opts.Clock,
	}
	if s.window <= 0 {
		s.window = 5 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	// a digest can only be replayed while its timestamp is inside the window
	s.seen = cache.New(2*s.window, s.window)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/config", s.handleConfig)
	r.Get("/stats", s.handleStats)
	r.Get("/ngos", s.handleListNGOs)
	r.Get("/ngos/{wallet}", s.handleGetNGO)
	r.Get("/ngos/{wallet}/donations", s.handleNGODonations)
	r.Get("/ngos/{wallet}/challenges", s.handleChallenges)
	r.Get("/countries/{code}/ngos", s.handleNGOsByCountry)
	r.Get("/donors/{wallet}/donations", s.handleDonorDonations)
	r.Get("/donations/recent", s.handleRecentDonations)
	r.Get("/donations/{id}", s.handleGetDonation)
	r.Get("/dids/{did}", s.handleWalletByDID)
	r.Get("/proofs/{hash}", s.handleProofUsed)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.serialize)

		r.Post("/ngos", s.handleAdmit)
		r.Put("/ngos/profile", s.handleUpdateProfile)
		r.Post("/ngos/{wallet}/challenges", s.handleChallenge)
		r.Post("/ngos/{wallet}/revocation", s.handleRevoke)
		r.Post("/donations", s.handleDonate)

		r.Put("/admin/fee", s.handleSetFee)
		r.Put("/admin/collector", s.handleSetCollector)
		r.Put("/admin/verifier", s.handleSetVerifier)
		r.Put("/admin/staging", s.handleSetStaging)
		r.Put("/admin/admin", s.handleTransferAdmin)
	})

	return r
}

func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// flush persists what the current mutation committed. The mutation already
// happened, so a failure is logged and left to the indexer's retry.
func (s *Server) flush(r *http.Request) {
	if s.persist == nil || s.persist() {
		return
	}
	log.Warn("[API] Events from ", routeOf(r), " are queued but not yet persisted")
	metrics.APIFailures.WithLabelValues(routeOf(r), "persist").Inc()
}

func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routeOf(r)
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		log.Debug("[API] ", r.Method, " ", route, " ", status, " in ", time.Since(start))
	})
}
