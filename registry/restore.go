package registry

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// Restore rebuilds a fresh registry and its ledger from an event log ordered
// by sequence, starting at 1 with registry_initialized. The genesis event
// replaces the construction parameters. No token calls are made and nothing
// is published to the sink. On error the registry is left partially restored
// and must be discarded.
func (r *Registry) Restore(events []models.Event, ledger *DonationLedger) error {
	if err := r.guard.enter(); err != nil {
		return err
	}
	defer r.guard.exit()

	if ledger == nil || ledger.registry != r {
		return fmt.Errorf("ledger is not bound to this registry")
	}

	ledger.mu.Lock()
	defer ledger.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eventMu.Lock()
	defer r.eventMu.Unlock()

	if r.sequence != 0 || len(r.ngos) != 0 || len(ledger.donations) != 0 {
		return ErrNotFresh
	}
	if len(events) > 0 && events[0].Kind != models.EventRegistryInitialized {
		return ErrMissingGenesis
	}

	for _, event := range events {
		if event.Sequence != r.sequence+1 {
			return fmt.Errorf("%w: expected %d, got %d", ErrEventGap, r.sequence+1, event.Sequence)
		}
		if err := r.apply(event, ledger); err != nil {
			return fmt.Errorf("event %d (%s): %w", event.Sequence, event.Kind, err)
		}
		r.sequence = event.Sequence
	}

	log.Info("[REGISTRY] Restored ", len(events), " events, ", len(r.ngos), " NGOs, ", len(ledger.donations), " donations")
	return nil
}

// apply replays one event. Callers hold every lock.
func (r *Registry) apply(event models.Event, ledger *DonationLedger) error {
	switch event.Kind {
	case models.EventRegistryInitialized:
		return r.applyGenesis(event)

	case models.EventNGORegistered:
		wallet, err := parseAddress(event.NGO)
		if err != nil {
			return err
		}
		if _, ok := r.ngos[wallet]; ok {
			return ErrAlreadyRegistered
		}
		r.commitAdmission(&models.NGO{
			Wallet:                 wallet,
			FounderDID:             event.FounderDID,
			FounderAge:             event.FounderAge,
			FounderCountry:         event.Country,
			IPFSProfile:            event.Profile,
			VCExpiryDate:           event.VCExpiry,
			IsActive:               true,
			RegisteredAt:           event.Timestamp,
			TotalDonationsReceived: new(big.Int),
		}, common.HexToHash(event.ProofHash))

	case models.EventNGOProfileUpdated:
		ngo, err := r.record(event.NGO)
		if err != nil {
			return err
		}
		ngo.IPFSProfile = event.Profile

	case models.EventNGORevoked:
		ngo, err := r.record(event.NGO)
		if err != nil {
			return err
		}
		ngo.IsActive = false

	case models.EventNGOChallenged:
		ngo, err := r.record(event.NGO)
		if err != nil {
			return err
		}
		challenger, err := parseAddress(event.Actor)
		if err != nil {
			return err
		}
		state, ok := r.challenges[ngo.Wallet]
		if !ok {
			state = newChallengeState()
			r.challenges[ngo.Wallet] = state
		}
		if state.seen[challenger] {
			return ErrAlreadyChallenged
		}
		state.seen[challenger] = true
		state.challengers = append(state.challengers, challenger)
		if len(state.challengers) == RevocationThreshold {
			state.revoked = true
		}

	case models.EventDonationMade:
		ngo, err := r.record(event.NGO)
		if err != nil {
			return err
		}
		donor, err := parseAddress(event.Actor)
		if err != nil {
			return err
		}
		amount, err := parseAmount(event.Amount)
		if err != nil {
			return err
		}
		if event.DonationID != uint64(len(ledger.donations)) {
			return ErrInvalidDonationID
		}
		r.applyDonationAggregate(ngo, donor, amount)
		ledger.appendDonation(&models.Donation{
			ID:        event.DonationID,
			Donor:     donor,
			NGO:       ngo.Wallet,
			Amount:    amount,
			Message:   event.Message,
			Timestamp: event.Timestamp,
		})

	case models.EventRegistrationFeeUpdated:
		fee, err := parseAmount(event.NewValue)
		if err != nil {
			return err
		}
		r.registrationFee = fee

	case models.EventFeeCollectorUpdated:
		collector, err := parseAddress(event.NewValue)
		if err != nil {
			return err
		}
		r.feeCollector = collector

	case models.EventTrustedVerifierUpdated:
		verifier, err := parseAddress(event.NewValue)
		if err != nil {
			return err
		}
		r.trustedVerifier = verifier

	case models.EventStagingModeUpdated:
		enabled, err := strconv.ParseBool(event.NewValue)
		if err != nil {
			return err
		}
		r.stagingMode = enabled

	case models.EventAdminTransferred:
		admin, err := parseAddress(event.NewValue)
		if err != nil {
			return err
		}
		r.admin = AdminCapability{holder: admin}

	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
	return nil
}

func (r *Registry) record(wallet string) (*models.NGO, error) {
	address, err := parseAddress(wallet)
	if err != nil {
		return nil, err
	}
	ngo, ok := r.ngos[address]
	if !ok {
		return nil, ErrNGONotFound
	}
	return ngo, nil
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || !ValidAmount(amount) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	return amount, nil
}
