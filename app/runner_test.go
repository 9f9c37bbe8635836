package app

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// MockRunner is a mock implementation of the Runner interface for testing purposes.
type MockRunner struct {
	runs atomic.Int64
}

func (m *MockRunner) Run() {
	m.runs.Add(1)
}

func (m *MockRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{
		EventSequence: strconv.FormatInt(m.runs.Load(), 10),
		PendingEvents: "0",
	}
}

func TestRunnerService(t *testing.T) {
	mockRunner := &MockRunner{}
	interval := 100 * time.Millisecond
	wg := &sync.WaitGroup{}
	service := NewRunnerService("TestService", mockRunner, wg, interval)
	wg.Add(1)

	go service.Start()

	time.Sleep(600 * time.Millisecond)

	service.Stop()
	wg.Wait()

	health := service.Health()
	assert.True(t, health.Healthy)
	assert.Equal(t, "TestService", health.Name)
	runs, err := strconv.Atoi(health.EventSequence)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, runs, 5)
	assert.Equal(t, "0", health.PendingEvents)
	assert.WithinDuration(t, health.LastSyncTime.Add(interval), health.NextSyncTime, time.Millisecond)
}

func TestNewRunnerServiceInvalidParameters(t *testing.T) {
	wg := &sync.WaitGroup{}
	assert.Nil(t, NewRunnerService("", &MockRunner{}, wg, time.Second))
	assert.Nil(t, NewRunnerService("TestService", nil, wg, time.Second))
	assert.Nil(t, NewRunnerService("TestService", &MockRunner{}, nil, time.Second))
	assert.Nil(t, NewRunnerService("TestService", &MockRunner{}, wg, 0))
}

func TestRunnerServiceStop(t *testing.T) {
	// stopping a service that never started must not block
	wg := &sync.WaitGroup{}
	service := NewRunnerService("TestService", &MockRunner{}, wg, 100*time.Millisecond)
	service.Stop()
	service.Stop()
}
