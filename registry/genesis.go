package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// Initialize records the construction parameters as the first event of the
// log. A registry restored from a log already carries its genesis event and
// returns ErrNotFresh.
func (r *Registry) Initialize() error {
	if err := r.guard.enter(); err != nil {
		return err
	}
	defer r.guard.exit()

	if r.EventSequence() != 0 {
		return ErrNotFresh
	}

	r.mu.RLock()
	event := models.Event{
		Kind:            models.EventRegistryInitialized,
		Actor:           r.admin.Holder().Hex(),
		FeeCollector:    r.feeCollector.Hex(),
		TrustedVerifier: r.trustedVerifier.Hex(),
		Amount:          r.registrationFee.String(),
		StagingMode:     r.stagingMode,
	}
	r.mu.RUnlock()

	r.emit(event)

	log.Info("[REGISTRY] Initialized registry with admin ", event.Actor)
	return nil
}

// applyGenesis overwrites the construction parameters with the ones the log
// was started with. Callers hold every lock.
func (r *Registry) applyGenesis(event models.Event) error {
	if event.Sequence != 1 {
		return fmt.Errorf("%w: registry_initialized must be event 1", ErrEventGap)
	}
	admin, err := parseAddress(event.Actor)
	if err != nil {
		return err
	}
	collector, err := parseAddress(event.FeeCollector)
	if err != nil {
		return err
	}
	var verifier common.Address
	if event.TrustedVerifier != "" {
		if verifier, err = parseAddress(event.TrustedVerifier); err != nil {
			return err
		}
	}
	fee, err := parseAmount(event.Amount)
	if err != nil {
		return err
	}

	r.admin = AdminCapability{holder: admin}
	r.feeCollector = collector
	r.trustedVerifier = verifier
	r.registrationFee = fee
	r.stagingMode = event.StagingMode
	return nil
}

// ParamDrift names the parameters where params disagree with the registry's
// current state. After a restore the log wins and params are only reported.
func (r *Registry) ParamDrift(params Params) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fee := params.RegistrationFee
	if fee == nil {
		fee = new(big.Int)
	}

	var drift []string
	if params.Admin != r.admin.Holder() {
		drift = append(drift, "admin")
	}
	if params.FeeCollector != r.feeCollector {
		drift = append(drift, "fee_collector")
	}
	if params.TrustedVerifier != r.trustedVerifier {
		drift = append(drift, "trusted_verifier")
	}
	if fee.Cmp(r.registrationFee) != 0 {
		drift = append(drift, "registration_fee")
	}
	if params.StagingMode != r.stagingMode {
		drift = append(drift, "staging_mode")
	}
	return drift
}
