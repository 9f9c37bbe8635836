package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

const (
	APIServiceName  = "API"
	shutdownTimeout = 10 * time.Second
)

// HTTPService runs the API server as a service next to the runners.
type HTTPService struct {
	server *http.Server
	wg     *sync.WaitGroup

	healthMu  sync.RWMutex
	startedAt time.Time
	serving   bool
}

var _ models.Service = &HTTPService{}

func (x *HTTPService) Start() {
	defer x.wg.Done()

	x.healthMu.Lock()
	x.startedAt = time.Now()
	x.serving = true
	x.healthMu.Unlock()

	log.Info("[API] Listening on ", x.server.Addr)
	err := x.server.ListenAndServe()

	x.healthMu.Lock()
	x.serving = false
	x.healthMu.Unlock()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("[API] Server stopped: ", err)
		return
	}
	log.Info("[API] Stopped service")
}

func (x *HTTPService) Stop() {
	log.Debug("[API] Stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := x.server.Shutdown(ctx); err != nil {
		log.Error("[API] Error shutting down: ", err)
	}
}

func (x *HTTPService) Health() models.ServiceHealth {
	x.healthMu.RLock()
	defer x.healthMu.RUnlock()

	now := time.Now()
	return models.ServiceHealth{
		Name:         APIServiceName,
		LastSyncTime: x.startedAt,
		NextSyncTime: now,
		Healthy:      x.serving,
	}
}

func NewHTTPService(address string, handler http.Handler, wg *sync.WaitGroup) *HTTPService {
	return &HTTPService{
		server: &http.Server{
			Addr:              address,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		wg: wg,
	}
}
