package app

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

type Runner interface {
	Run()
	Status() models.RunnerStatus
}

// RunnerService calls Run on its runner every interval until stopped.
type RunnerService struct {
	name     string
	runner   Runner
	stop     chan bool
	interval time.Duration
	wg       *sync.WaitGroup

	healthMu     sync.RWMutex
	lastSyncTime time.Time
	nextSyncTime time.Time
	status       models.RunnerStatus
}

var _ models.Service = &RunnerService{}

func (x *RunnerService) Start() {
	log.Info("[", x.name, "] Starting service")
	defer x.wg.Done()

	for {
		log.Debug("[", x.name, "] Starting run")
		x.runner.Run()
		x.updateHealth()
		log.Debug("[", x.name, "] Finished run, sleeping for ", x.interval)

		select {
		case <-x.stop:
			log.Info("[", x.name, "] Stopped service")
			return
		case <-time.After(x.interval):
		}
	}
}

func (x *RunnerService) updateHealth() {
	x.healthMu.Lock()
	defer x.healthMu.Unlock()

	x.lastSyncTime = time.Now()
	x.nextSyncTime = x.lastSyncTime.Add(x.interval)
	x.status = x.runner.Status()
}

func (x *RunnerService) Health() models.ServiceHealth {
	x.healthMu.RLock()
	defer x.healthMu.RUnlock()

	return models.ServiceHealth{
		Name:          x.name,
		LastSyncTime:  x.lastSyncTime,
		NextSyncTime:  x.nextSyncTime,
		EventSequence: x.status.EventSequence,
		PendingEvents: x.status.PendingEvents,
		Healthy:       true,
	}
}

// Stop signals the loop to exit after its current run.
func (x *RunnerService) Stop() {
	log.Debug("[", x.name, "] Stopping service")
	select {
	case x.stop <- true:
	default:
	}
}

func NewRunnerService(name string, runner Runner, wg *sync.WaitGroup, interval time.Duration) *RunnerService {
	if name == "" || runner == nil || wg == nil || interval <= 0 {
		log.Error("[RUNNER] Invalid parameters for runner service")
		return nil
	}

	return &RunnerService{
		name:     name,
		runner:   runner,
		stop:     make(chan bool, 1),
		interval: interval,
		wg:       wg,
	}
}
