package app

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

const (
	HealthServiceName = "HEALTH"
)

// StatsFunc reports the registry and ledger sizes included in each health
// document.
type StatsFunc func() (totalNGOs uint64, totalDonations uint64)

type HealthCheckRunner struct {
	instanceID      string
	hostname        string
	operatorAddress string
	stats           StatsFunc
	services        []models.Service
}

func (x *HealthCheckRunner) Run() {
	x.PostHealth()
}

func (x *HealthCheckRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{}
}

func (x *HealthCheckRunner) SetServices(services []models.Service) {
	x.services = services
}

func (x *HealthCheckRunner) ServiceHealths() []models.ServiceHealth {
	var serviceHealths []models.ServiceHealth
	for _, service := range x.services {
		health := service.Health()
		if health.Name == models.EmptyServiceName {
			continue
		}
		serviceHealths = append(serviceHealths, health)
	}
	return serviceHealths
}

func (x *HealthCheckRunner) filter() bson.M {
	return bson.M{
		"instance_id": x.instanceID,
		"hostname":    x.hostname,
	}
}

func (x *HealthCheckRunner) FindLastHealth() (models.Health, error) {
	var health models.Health
	err := DB.FindOne(models.CollectionHealthChecks, x.filter(), &health)
	return health, err
}

func (x *HealthCheckRunner) PostHealth() bool {
	log.Debug("[HEALTH] Posting health")

	var totalNGOs, totalDonations uint64
	if x.stats != nil {
		totalNGOs, totalDonations = x.stats()
	}

	onInsert := bson.M{
		"instance_id":      x.instanceID,
		"hostname":         x.hostname,
		"operator_address": x.operatorAddress,
		"created_at":       time.Now(),
	}

	onUpdate := bson.M{
		"healthy":         true,
		"total_ngos":      totalNGOs,
		"total_donations": totalDonations,
		"service_healths": x.ServiceHealths(),
		"updated_at":      time.Now(),
	}

	update := bson.M{"$set": onUpdate, "$setOnInsert": onInsert}

	if _, err := DB.UpsertOne(models.CollectionHealthChecks, x.filter(), update); err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}

	log.Info("[HEALTH] Posted health")
	return true
}

// instanceID is stable for a given host and operator so restarts update the
// same health document.
func instanceID(hostname string, operator common.Address) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(hostname+"/"+operator.Hex())).String()
}

func NewHealthCheck(operator common.Address, stats StatsFunc) *HealthCheckRunner {
	log.Debug("[HEALTH] Initializing health")

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatal("[HEALTH] Error getting hostname: ", err)
	}

	x := &HealthCheckRunner{
		instanceID:      instanceID(hostname, operator),
		hostname:        hostname,
		operatorAddress: operator.Hex(),
		stats:           stats,
	}

	log.Info("[HEALTH] Initialized health with instance id ", x.instanceID)
	return x
}
