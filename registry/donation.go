package registry

import (
	"context"
	"math/big"
	"sync"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

const MaxMessageLength = 200

// DonationLedger records donations to verified NGOs. It shares the
// registry's reentrancy guard, so a token callback can neither donate nor
// mutate the registry while a donation is in flight.
type DonationLedger struct {
	registry *Registry
	token    TokenPort

	mu           sync.RWMutex
	donations    []*models.Donation
	byDonor      map[common.Address][]uint64
	byNGO        map[common.Address][]uint64
	totalByDonor map[common.Address]*big.Int
	totalByNGO   map[common.Address]*big.Int
	totalAmount  *big.Int
}

// NewDonationLedger binds a ledger to registry. A nil token uses the
// registry's token port.
func NewDonationLedger(registry *Registry, token TokenPort) *DonationLedger {
	if token == nil {
		token = registry.token
	}
	return &DonationLedger{
		registry:     registry,
		token:        token,
		byDonor:      make(map[common.Address][]uint64),
		byNGO:        make(map[common.Address][]uint64),
		totalByDonor: make(map[common.Address]*big.Int),
		totalByNGO:   make(map[common.Address]*big.Int),
		totalAmount:  new(big.Int),
	}
}

// Donate moves amount from donor to ngo and records the donation.
func (l *DonationLedger) Donate(ctx context.Context, ngo common.Address, amount *big.Int, message string, donor common.Address) (models.Donation, error) {
	if err := l.registry.guard.enter(); err != nil {
		return models.Donation{}, err
	}
	defer l.registry.guard.exit()

	if ngo == (common.Address{}) {
		return models.Donation{}, ErrInvalidNGOAddress
	}
	if !ValidAmount(amount) || amount.Sign() == 0 {
		return models.Donation{}, ErrInvalidAmount
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return models.Donation{}, ErrMessageTooLong
	}
	if !l.registry.IsVerified(ngo) {
		return models.Donation{}, ErrNGONotVerified
	}

	value := new(big.Int).Set(amount)
	if err := l.token.TransferFrom(ctx, donor, ngo, value); err != nil {
		log.Warn("[LEDGER] Donation transfer from ", donor.Hex(), " to ", ngo.Hex(), " failed: ", err)
		return models.Donation{}, err
	}

	now := l.registry.now()

	l.mu.Lock()
	if err := l.registry.recordDonationAggregate(ngo, donor, value); err != nil {
		l.mu.Unlock()
		log.Error("[LEDGER] NGO ", ngo.Hex(), " changed state during donation: ", err)
		return models.Donation{}, err
	}
	donation := &models.Donation{
		ID:        uint64(len(l.donations)),
		Donor:     donor,
		NGO:       ngo,
		Amount:    value,
		Message:   message,
		Timestamp: now,
	}
	l.appendDonation(donation)
	record := donation.Copy()
	l.mu.Unlock()

	l.registry.emit(models.Event{
		Kind:       models.EventDonationMade,
		NGO:        ngo.Hex(),
		Actor:      donor.Hex(),
		DonationID: record.ID,
		Amount:     record.Amount.String(),
		Message:    message,
		Timestamp:  now,
	})

	log.Info("[LEDGER] Donation ", record.ID, " of ", record.Amount, " from ", donor.Hex(), " to ", ngo.Hex())
	return record, nil
}

// appendDonation updates the record list and all four aggregates. Callers
// hold mu.
func (l *DonationLedger) appendDonation(donation *models.Donation) {
	l.donations = append(l.donations, donation)
	l.byDonor[donation.Donor] = append(l.byDonor[donation.Donor], donation.ID)
	l.byNGO[donation.NGO] = append(l.byNGO[donation.NGO], donation.ID)
	addTo(l.totalByDonor, donation.Donor, donation.Amount)
	addTo(l.totalByNGO, donation.NGO, donation.Amount)
	l.totalAmount.Add(l.totalAmount, donation.Amount)
}

func addTo(totals map[common.Address]*big.Int, key common.Address, amount *big.Int) {
	total, ok := totals[key]
	if !ok {
		total = new(big.Int)
		totals[key] = total
	}
	total.Add(total, amount)
}

func (l *DonationLedger) GetDonation(id uint64) (models.Donation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if id >= uint64(len(l.donations)) {
		return models.Donation{}, ErrInvalidDonationID
	}
	return l.donations[id].Copy(), nil
}

// GetRecentDonations returns up to n donations, newest first.
func (l *DonationLedger) GetRecentDonations(n uint64) []models.Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := uint64(len(l.donations))
	if n > total {
		n = total
	}
	recent := make([]models.Donation, 0, n)
	for i := uint64(0); i < n; i++ {
		recent = append(recent, l.donations[total-1-i].Copy())
	}
	return recent
}

func (l *DonationLedger) GetDonationsByDonor(donor common.Address) []models.Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byDonor[donor])
}

func (l *DonationLedger) GetDonationsByNGO(ngo common.Address) []models.Donation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.collect(l.byNGO[ngo])
}

func (l *DonationLedger) collect(ids []uint64) []models.Donation {
	donations := make([]models.Donation, 0, len(ids))
	for _, id := range ids {
		donations = append(donations, l.donations[id].Copy())
	}
	return donations
}

func (l *DonationLedger) GetPlatformStats() models.PlatformStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := uint64(len(l.donations))
	average := new(big.Int)
	if count > 0 {
		average.Quo(l.totalAmount, new(big.Int).SetUint64(count))
	}
	return models.PlatformStats{
		TotalAmount:   new(big.Int).Set(l.totalAmount),
		TotalCount:    count,
		AverageAmount: average,
	}
}

func (l *DonationLedger) TotalByDonor(donor common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return valueOf(l.totalByDonor, donor)
}

func (l *DonationLedger) TotalByNGO(ngo common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return valueOf(l.totalByNGO, ngo)
}

func valueOf(totals map[common.Address]*big.Int, key common.Address) *big.Int {
	if total, ok := totals[key]; ok {
		return new(big.Int).Set(total)
	}
	return new(big.Int)
}

func (l *DonationLedger) TotalDonationsCount() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.donations))
}

func (l *DonationLedger) TotalDonationsAmount() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalAmount)
}
