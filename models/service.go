package models

import (
	"sync"
	"time"
)

type Service interface {
	Start()
	Health() ServiceHealth
	Stop()
}

type ServiceHealth struct {
	Name          string    `bson:"name" json:"name"`
	LastSyncTime  time.Time `bson:"last_sync_time" json:"last_sync_time"`
	NextSyncTime  time.Time `bson:"next_sync_time" json:"next_sync_time"`
	EventSequence string    `bson:"event_sequence" json:"event_sequence"`
	PendingEvents string    `bson:"pending_events" json:"pending_events"`
	Healthy       bool      `bson:"healthy" json:"healthy"`
}

// RunnerStatus is what a runner reports after each run.
type RunnerStatus struct {
	EventSequence string
	PendingEvents string
}

type EmptyService struct {
	wg *sync.WaitGroup
}

func (e *EmptyService) Start() {}

func (e *EmptyService) Stop() {
	e.wg.Done()
}

const EmptyServiceName = "empty"

func (e *EmptyService) Health() ServiceHealth {
	return ServiceHealth{
		Name:          EmptyServiceName,
		LastSyncTime:  time.Now(),
		NextSyncTime:  time.Now(),
		EventSequence: "",
		PendingEvents: "",
		Healthy:       true,
	}
}

func NewEmptyService(wg *sync.WaitGroup) *EmptyService {
	return &EmptyService{
		wg: wg,
	}
}
