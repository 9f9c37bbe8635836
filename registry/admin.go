package registry

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// adminUpdate runs apply under the write lock once caller is confirmed as
// admin, then emits the event apply returns.
func (r *Registry) adminUpdate(caller common.Address, apply func() (models.Event, error)) error {
	if err := r.guard.enter(); err != nil {
		return err
	}
	defer r.guard.exit()

	r.mu.Lock()
	if !r.admin.Permits(caller) {
		r.mu.Unlock()
		return ErrOnlyAdmin
	}
	event, err := apply()
	r.mu.Unlock()
	if err != nil {
		return err
	}

	event.Actor = caller.Hex()
	r.emit(event)

	log.Info("[REGISTRY] Admin update ", event.Kind, ": ", event.OldValue, " -> ", event.NewValue)
	return nil
}

func (r *Registry) SetRegistrationFee(fee *big.Int, caller common.Address) error {
	return r.adminUpdate(caller, func() (models.Event, error) {
		if !ValidAmount(fee) {
			return models.Event{}, ErrInvalidAmount
		}
		old := r.registrationFee
		r.registrationFee = new(big.Int).Set(fee)
		return models.Event{
			Kind:     models.EventRegistrationFeeUpdated,
			OldValue: old.String(),
			NewValue: fee.String(),
		}, nil
	})
}

func (r *Registry) SetFeeCollector(collector common.Address, caller common.Address) error {
	return r.adminUpdate(caller, func() (models.Event, error) {
		if collector == (common.Address{}) {
			return models.Event{}, ErrInvalidAddress
		}
		old := r.feeCollector
		r.feeCollector = collector
		return models.Event{
			Kind:     models.EventFeeCollectorUpdated,
			OldValue: old.Hex(),
			NewValue: collector.Hex(),
		}, nil
	})
}

func (r *Registry) SetTrustedVerifier(verifier common.Address, caller common.Address) error {
	return r.adminUpdate(caller, func() (models.Event, error) {
		if verifier == (common.Address{}) {
			return models.Event{}, ErrInvalidAddress
		}
		old := r.trustedVerifier
		r.trustedVerifier = verifier
		return models.Event{
			Kind:     models.EventTrustedVerifierUpdated,
			OldValue: old.Hex(),
			NewValue: verifier.Hex(),
		}, nil
	})
}

func (r *Registry) SetStagingMode(enabled bool, caller common.Address) error {
	err := r.adminUpdate(caller, func() (models.Event, error) {
		old := r.stagingMode
		r.stagingMode = enabled
		return models.Event{
			Kind:     models.EventStagingModeUpdated,
			OldValue: strconv.FormatBool(old),
			NewValue: strconv.FormatBool(enabled),
		}, nil
	})
	if err == nil && enabled {
		log.Warn("[REGISTRY] Staging mode enabled, credential signatures are not verified")
	}
	return err
}

// TransferAdmin hands the admin capability to newAdmin. The caller loses it
// in the same step.
func (r *Registry) TransferAdmin(newAdmin common.Address, caller common.Address) error {
	return r.adminUpdate(caller, func() (models.Event, error) {
		if newAdmin == (common.Address{}) {
			return models.Event{}, ErrInvalidAddress
		}
		old := r.admin.Holder()
		r.admin = AdminCapability{holder: newAdmin}
		return models.Event{
			Kind:     models.EventAdminTransferred,
			OldValue: old.Hex(),
			NewValue: newAdmin.Hex(),
		}, nil
	})
}
