package registry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

// IsVerified reports the active flag. An expired credential does not by
// itself unverify an NGO; see IsVCExpired.
func (r *Registry) IsVerified(wallet common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ngo, ok := r.ngos[wallet]
	return ok && ngo.IsActive
}

func (r *Registry) IsVCExpired(wallet common.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ngo, ok := r.ngos[wallet]
	if !ok {
		return false, ErrNGONotFound
	}
	return !ngo.VCExpiryDate.After(r.now()), nil
}

func (r *Registry) GetNGO(wallet common.Address) (models.NGO, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ngo, ok := r.ngos[wallet]
	if !ok {
		return models.NGO{}, ErrNGONotFound
	}
	return ngo.Copy(), nil
}

// GetAllVerifiedNGOs returns active wallets in registration order.
func (r *Registry) GetAllVerifiedNGOs() []common.Address {
	return r.activeWallets(func(*models.NGO) bool { return true })
}

func (r *Registry) GetNGOsByCountry(code string) []common.Address {
	return r.activeWallets(func(ngo *models.NGO) bool { return ngo.FounderCountry == code })
}

func (r *Registry) GetTotalVerifiedNGOs() uint64 {
	return uint64(len(r.GetAllVerifiedNGOs()))
}

// TotalNGOs counts every record, active or not.
func (r *Registry) TotalNGOs() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint64(len(r.order))
}

func (r *Registry) activeWallets(match func(*models.NGO) bool) []common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wallets := []common.Address{}
	for _, wallet := range r.order {
		ngo := r.ngos[wallet]
		if ngo.IsActive && match(ngo) {
			wallets = append(wallets, wallet)
		}
	}
	return wallets
}

// WalletByDID returns the wallet admitted with did, or the zero address.
func (r *Registry) WalletByDID(did string) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.walletByDID[did]
}

func (r *Registry) IsVCProofUsed(proofHash common.Hash) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.usedProofs[proofHash]
}

func (r *Registry) StagingMode() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stagingMode
}

func (r *Registry) TrustPolicy() TrustPolicy {
	if r.StagingMode() {
		return TrustUnverified
	}
	return TrustAttested
}

func (r *Registry) RegistrationFee() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(big.Int).Set(r.registrationFee)
}

func (r *Registry) FeeCollector() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feeCollector
}

func (r *Registry) TrustedVerifier() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.trustedVerifier
}

func (r *Registry) Admin() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin.Holder()
}
