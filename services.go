package main

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/api"
	"github.com/Samuel1505/TrustBridge-sub000/app"
	"github.com/Samuel1505/TrustBridge-sub000/indexer"
	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

// Node is everything the services of one process share.
type Node struct {
	Outbox   *indexer.Outbox
	Registry *registry.Registry
	Ledger   *registry.DonationLedger
	Indexer  *indexer.Runner
	Health   *app.HealthCheckRunner
}

type ServiceFactory struct {
	Enabled       func() bool
	CreateService func(*sync.WaitGroup, *Node) models.Service
}

func GetServiceFactories() map[string]ServiceFactory {
	return map[string]ServiceFactory{
		indexer.IndexerServiceName: {
			Enabled: func() bool { return app.Config.Indexer.Enabled },
			CreateService: func(wg *sync.WaitGroup, node *Node) models.Service {
				interval := time.Duration(app.Config.Indexer.IntervalMillis) * time.Millisecond
				return app.NewRunnerService(indexer.IndexerServiceName, node.Indexer, wg, interval)
			},
		},
		api.APIServiceName: {
			Enabled: func() bool { return app.Config.API.Enabled },
			CreateService: func(wg *sync.WaitGroup, node *Node) models.Service {
				server := api.NewServer(node.Registry, node.Ledger, api.Options{
					SignatureWindow: time.Duration(app.Config.API.SignatureWindowSecs) * time.Second,
					Services:        node.Health.ServiceHealths,
					Persist:         node.Indexer.Flush,
				})
				return api.NewHTTPService(app.Config.API.Address, server.Router(), wg)
			},
		},
	}
}

// CreateServices builds one service per factory in a fixed order. A disabled
// service is replaced by an empty one so the wait group stays balanced.
func CreateServices(wg *sync.WaitGroup, node *Node) []models.Service {
	factories := GetServiceFactories()
	names := []string{indexer.IndexerServiceName, api.APIServiceName}

	services := make([]models.Service, 0, len(names))
	for _, name := range names {
		factory := factories[name]
		if !factory.Enabled() {
			log.Info("[MAIN] Service ", name, " disabled")
			services = append(services, models.NewEmptyService(wg))
			continue
		}
		services = append(services, factory.CreateService(wg, node))
	}
	return services
}
