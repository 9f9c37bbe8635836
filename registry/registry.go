package registry

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	tbcommon "github.com/Samuel1505/TrustBridge-sub000/common"
	"github.com/Samuel1505/TrustBridge-sub000/models"
)

const (
	MinFounderAge     = 18
	CountryCodeLength = 2
)

// TrustPolicy says whether admission requires an attested credential.
type TrustPolicy int

const (
	TrustAttested TrustPolicy = iota
	TrustUnverified
)

func (p TrustPolicy) String() string {
	if p == TrustUnverified {
		return "unverified"
	}
	return "attested"
}

// AdminCapability is held by exactly one identity at a time.
type AdminCapability struct {
	holder common.Address
}

func (a AdminCapability) Holder() common.Address {
	return a.holder
}

func (a AdminCapability) Permits(caller common.Address) bool {
	return a.holder != (common.Address{}) && a.holder == caller
}

type Params struct {
	Admin           common.Address
	FeeCollector    common.Address
	TrustedVerifier common.Address
	RegistrationFee *big.Int
	StagingMode     bool

	Token    TokenPort
	Verifier tbcommon.Verifier
	Sink     EventSink
	Clock    func() time.Time
}

// Admission carries the credential a founder presents when registering.
type Admission struct {
	FounderDID     string
	ProofHash      common.Hash
	Signature      []byte
	FounderAge     uint64
	FounderCountry string
	IPFSProfile    string
	VCExpiryDate   time.Time
}

// Registry owns NGO records and their uniqueness indices. Every mutating
// method validates first, then pays, then commits; nothing is written unless
// the whole sequence succeeds.
type Registry struct {
	guard guard

	mu              sync.RWMutex
	admin           AdminCapability
	feeCollector    common.Address
	trustedVerifier common.Address
	registrationFee *big.Int
	stagingMode     bool

	ngos        map[common.Address]*models.NGO
	order       []common.Address
	walletByDID map[string]common.Address
	usedProofs  map[common.Hash]bool
	donorsSeen  map[common.Address]map[common.Address]bool
	challenges  map[common.Address]*challengeState

	token    TokenPort
	verifier tbcommon.Verifier
	now      func() time.Time

	eventMu  sync.Mutex
	sink     EventSink
	sequence uint64
}

func New(params Params) (*Registry, error) {
	if params.Admin == (common.Address{}) {
		return nil, fmt.Errorf("%w: admin", ErrInvalidAddress)
	}
	if params.FeeCollector == (common.Address{}) {
		return nil, fmt.Errorf("%w: fee collector", ErrInvalidAddress)
	}
	if params.Token == nil {
		return nil, fmt.Errorf("token port is required")
	}
	fee := params.RegistrationFee
	if fee == nil {
		fee = new(big.Int)
	}
	if !ValidAmount(fee) {
		return nil, fmt.Errorf("%w: registration fee", ErrInvalidAmount)
	}

	r := &Registry{
		admin:           AdminCapability{holder: params.Admin},
		feeCollector:    params.FeeCollector,
		trustedVerifier: params.TrustedVerifier,
		registrationFee: new(big.Int).Set(fee),
		stagingMode:     params.StagingMode,
		ngos:            make(map[common.Address]*models.NGO),
		walletByDID:     make(map[string]common.Address),
		usedProofs:      make(map[common.Hash]bool),
		donorsSeen:      make(map[common.Address]map[common.Address]bool),
		challenges:      make(map[common.Address]*challengeState),
		token:           params.Token,
		verifier:        params.Verifier,
		sink:            params.Sink,
		now:             params.Clock,
	}
	if r.verifier == nil {
		r.verifier = tbcommon.EthVerifier{}
	}
	if r.sink == nil {
		r.sink = discardSink{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.stagingMode {
		log.Warn("[REGISTRY] Staging mode enabled, credential signatures are not verified")
	}
	return r, nil
}

// Admit registers caller as an NGO.
func (r *Registry) Admit(ctx context.Context, req Admission, caller common.Address) (models.NGO, error) {
	if err := r.guard.enter(); err != nil {
		return models.NGO{}, err
	}
	defer r.guard.exit()

	now := r.now()
	fee, collector, err := r.validateAdmission(req, caller, now)
	if err != nil {
		log.Debug("[REGISTRY] Rejected admission for ", caller.Hex(), ": ", err)
		return models.NGO{}, err
	}

	if fee.Sign() > 0 {
		if err := r.token.TransferFrom(ctx, caller, collector, fee); err != nil {
			log.Warn("[REGISTRY] Fee payment failed for ", caller.Hex(), ": ", err)
			return models.NGO{}, fmt.Errorf("%w: %w", ErrFeePaymentFailed, err)
		}
	}

	ngo := &models.NGO{
		Wallet:                 caller,
		FounderDID:             req.FounderDID,
		FounderAge:             req.FounderAge,
		FounderCountry:         req.FounderCountry,
		IPFSProfile:            req.IPFSProfile,
		VCExpiryDate:           req.VCExpiryDate,
		IsActive:               true,
		RegisteredAt:           now,
		TotalDonationsReceived: new(big.Int),
	}

	r.mu.Lock()
	r.commitAdmission(ngo, req.ProofHash)
	record := ngo.Copy()
	r.mu.Unlock()

	r.emit(models.Event{
		Kind:       models.EventNGORegistered,
		NGO:        caller.Hex(),
		FounderDID: req.FounderDID,
		ProofHash:  req.ProofHash.Hex(),
		FounderAge: req.FounderAge,
		Country:    req.FounderCountry,
		Profile:    req.IPFSProfile,
		VCExpiry:   req.VCExpiryDate,
		Amount:     fee.String(),
		Timestamp:  now,
	})

	log.Info("[REGISTRY] Admitted NGO: ", caller.Hex(), " did: ", req.FounderDID)
	return record, nil
}

// validateAdmission runs every admission check in order and returns the fee
// and collector the admission must pay.
func (r *Registry) validateAdmission(req Admission, caller common.Address, now time.Time) (*big.Int, common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if caller == (common.Address{}) {
		return nil, common.Address{}, ErrInvalidAddress
	}
	if _, ok := r.ngos[caller]; ok {
		return nil, common.Address{}, ErrAlreadyRegistered
	}
	if _, ok := r.walletByDID[req.FounderDID]; ok {
		return nil, common.Address{}, ErrDIDAlreadyUsed
	}
	if r.usedProofs[req.ProofHash] {
		return nil, common.Address{}, ErrVCAlreadyUsed
	}
	if !r.stagingMode && !r.verifier.Verify(req.ProofHash, req.Signature, r.trustedVerifier) {
		return nil, common.Address{}, ErrInvalidSignature
	}
	if req.FounderAge < MinFounderAge {
		return nil, common.Address{}, ErrFounderUnderage
	}
	if !req.VCExpiryDate.After(now) {
		return nil, common.Address{}, ErrCredentialExpired
	}
	if !validCountryCode(req.FounderCountry) {
		return nil, common.Address{}, ErrInvalidCountryCode
	}
	if req.IPFSProfile == "" {
		return nil, common.Address{}, ErrInvalidProfile
	}

	return new(big.Int).Set(r.registrationFee), r.feeCollector, nil
}

// validCountryCode accepts two ASCII letters, an ISO 3166-1 alpha-2 shape.
func validCountryCode(code string) bool {
	if len(code) != CountryCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// commitAdmission writes the record and both indices. Callers hold mu.
func (r *Registry) commitAdmission(ngo *models.NGO, proofHash common.Hash) {
	r.ngos[ngo.Wallet] = ngo
	r.order = append(r.order, ngo.Wallet)
	r.walletByDID[ngo.FounderDID] = ngo.Wallet
	r.usedProofs[proofHash] = true
}

// UpdateProfile replaces the profile reference of the caller's active record.
func (r *Registry) UpdateProfile(profile string, caller common.Address) error {
	if err := r.guard.enter(); err != nil {
		return err
	}
	defer r.guard.exit()

	r.mu.Lock()
	ngo, ok := r.ngos[caller]
	if !ok || !ngo.IsActive {
		r.mu.Unlock()
		return ErrNotVerifiedNGO
	}
	if profile == "" {
		r.mu.Unlock()
		return ErrInvalidProfile
	}
	ngo.IPFSProfile = profile
	r.mu.Unlock()

	r.emit(models.Event{
		Kind:    models.EventNGOProfileUpdated,
		NGO:     caller.Hex(),
		Profile: profile,
	})

	log.Info("[REGISTRY] Updated profile for NGO: ", caller.Hex())
	return nil
}

// AdminRevoke deactivates ngo on the admin's authority.
func (r *Registry) AdminRevoke(ngo common.Address, reason string, caller common.Address) error {
	if err := r.guard.enter(); err != nil {
		return err
	}
	defer r.guard.exit()

	r.mu.Lock()
	if !r.admin.Permits(caller) {
		r.mu.Unlock()
		return ErrOnlyAdmin
	}
	record, ok := r.ngos[ngo]
	if !ok {
		r.mu.Unlock()
		return ErrNGONotFound
	}
	record.IsActive = false
	r.mu.Unlock()

	r.emit(models.Event{
		Kind:   models.EventNGORevoked,
		NGO:    ngo.Hex(),
		Actor:  caller.Hex(),
		Reason: reason,
	})

	log.Info("[REGISTRY] Admin revoked NGO: ", ngo.Hex(), " reason: ", reason)
	return nil
}

// recordDonationAggregate is the ledger's write-back into the recipient's
// record. It takes mu itself; the ledger calls it while holding its own lock.
func (r *Registry) recordDonationAggregate(ngo common.Address, donor common.Address, amount *big.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.ngos[ngo]
	if !ok || !record.IsActive {
		return ErrNGONotActive
	}
	r.applyDonationAggregate(record, donor, amount)
	return nil
}

func (r *Registry) applyDonationAggregate(record *models.NGO, donor common.Address, amount *big.Int) {
	record.TotalDonationsReceived.Add(record.TotalDonationsReceived, amount)

	seen, ok := r.donorsSeen[record.Wallet]
	if !ok {
		seen = make(map[common.Address]bool)
		r.donorsSeen[record.Wallet] = seen
	}
	if !seen[donor] {
		seen[donor] = true
		record.DonorCount++
	}
}

func (r *Registry) emit(events ...models.Event) {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()

	for _, event := range events {
		r.sequence++
		event.Sequence = r.sequence
		if event.Timestamp.IsZero() {
			event.Timestamp = r.now()
		}
		r.sink.Publish(event)
	}
}

// EventSequence is the sequence number of the last emitted event.
func (r *Registry) EventSequence() uint64 {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()
	return r.sequence
}
