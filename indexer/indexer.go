package indexer

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Samuel1505/TrustBridge-sub000/app"
	"github.com/Samuel1505/TrustBridge-sub000/metrics"
	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

const (
	IndexerServiceName = "INDEXER"
	LockResource       = "indexer"
)

// Runner persists outbox events to the event log and refreshes the ngos and
// donations projections from the live registry and ledger.
type Runner struct {
	outbox   *Outbox
	registry *registry.Registry
	ledger   *registry.DonationLedger

	flushMu      sync.Mutex
	lastSequence uint64
}

var _ app.Runner = &Runner{}

func (x *Runner) Run() {
	x.Flush()
}

func (x *Runner) Status() models.RunnerStatus {
	x.flushMu.Lock()
	defer x.flushMu.Unlock()

	return models.RunnerStatus{
		EventSequence: strconv.FormatUint(x.lastSequence, 10),
		PendingEvents: strconv.Itoa(x.outbox.Len()),
	}
}

// Flush writes every pending event under the indexer lock. On failure the
// unwritten events go back to the outbox and the next run retries them; an
// event already in the log is skipped on retry.
func (x *Runner) Flush() bool {
	x.flushMu.Lock()
	defer x.flushMu.Unlock()

	events := x.outbox.drain()
	if len(events) == 0 {
		log.Debug("[INDEXER] No pending events")
		return true
	}

	log.Debug("[INDEXER] Flushing ", len(events), " events")

	lockId, err := app.DB.XLock(LockResource)
	if err != nil {
		log.Error("[INDEXER] Error locking indexer: ", err)
		metrics.IndexerFailures.WithLabelValues("lock").Inc()
		x.outbox.requeue(events)
		return false
	}
	defer func() {
		if err := app.DB.Unlock(lockId); err != nil {
			log.Error("[INDEXER] Error unlocking indexer: ", err)
		}
	}()

	for i, event := range events {
		if err := app.DB.InsertOne(models.CollectionEvents, event); err != nil {
			if !mongo.IsDuplicateKeyError(err) {
				log.Error("[INDEXER] Error inserting event ", event.Sequence, ": ", err)
				metrics.IndexerFailures.WithLabelValues("insert").Inc()
				x.outbox.requeue(events[i:])
				return false
			}
			log.Debug("[INDEXER] Event ", event.Sequence, " already stored")
		} else {
			metrics.EventsPersisted.Inc()
		}

		if err := x.project(event); err != nil {
			log.Error("[INDEXER] Error projecting event ", event.Sequence, ": ", err)
			metrics.IndexerFailures.WithLabelValues("project").Inc()
			x.outbox.requeue(events[i:])
			return false
		}
		x.lastSequence = event.Sequence
	}

	log.Info("[INDEXER] Flushed events up to ", x.lastSequence)
	return true
}

// project upserts the current state of whatever the event touched. The
// documents come from live snapshots, so a later event can race ahead of its
// own projection but never behind it.
func (x *Runner) project(event models.Event) error {
	if event.Kind == models.EventDonationMade {
		if err := x.projectDonation(event.DonationID); err != nil {
			return err
		}
	}
	if event.NGO == "" {
		return nil
	}
	return x.projectNGO(common.HexToAddress(event.NGO))
}

func (x *Runner) projectNGO(wallet common.Address) error {
	ngo, err := x.registry.GetNGO(wallet)
	if err != nil {
		return err
	}
	doc := models.NewNGODocument(ngo)
	doc.UpdatedAt = time.Now()

	filter := bson.M{"wallet": doc.Wallet}
	update := bson.M{"$set": doc}
	if _, err := app.DB.UpsertOne(models.CollectionNGOs, filter, update); err != nil {
		return fmt.Errorf("error upserting ngo %s: %w", doc.Wallet, err)
	}
	return nil
}

func (x *Runner) projectDonation(id uint64) error {
	donation, err := x.ledger.GetDonation(id)
	if err != nil {
		return err
	}
	doc := models.NewDonationDocument(donation)

	filter := bson.M{"donation_id": doc.DonationID}
	update := bson.M{"$set": doc}
	if _, err := app.DB.UpsertOne(models.CollectionDonations, filter, update); err != nil {
		return fmt.Errorf("error upserting donation %d: %w", doc.DonationID, err)
	}
	return nil
}

// LoadEvents reads the whole event log in sequence order. The shared lock
// keeps another instance from flushing a half-written batch under the read.
func LoadEvents() ([]models.Event, error) {
	lockId, err := app.DB.SLock(LockResource)
	if err != nil {
		return nil, fmt.Errorf("error locking event log: %w", err)
	}
	defer func() {
		if err := app.DB.Unlock(lockId); err != nil {
			log.Error("[INDEXER] Error unlocking event log: ", err)
		}
	}()

	var events []models.Event
	sort := bson.D{{Key: "sequence", Value: 1}}
	if err := app.DB.FindManySorted(models.CollectionEvents, bson.M{}, sort, &events); err != nil {
		return nil, fmt.Errorf("error loading events: %w", err)
	}
	log.Debug("[INDEXER] Loaded ", len(events), " events")
	return events, nil
}

func NewRunner(outbox *Outbox, reg *registry.Registry, ledger *registry.DonationLedger) *Runner {
	log.Debug("[INDEXER] Initializing indexer")
	x := &Runner{
		outbox:       outbox,
		registry:     reg,
		ledger:       ledger,
		lastSequence: reg.EventSequence(),
	}
	log.Info("[INDEXER] Initialized indexer at sequence ", x.lastSequence)
	return x
}
