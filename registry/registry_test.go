package registry

import (
	"context"
	"io"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tbcommon "github.com/Samuel1505/TrustBridge-sub000/common"
	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/token"
)

func init() {
	log.SetOutput(io.Discard)
}

const issuerPrivateKey = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"

var (
	adminAddress     = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	collectorAddress = common.HexToAddress("0x00000000000000000000000000000000000000fe")
	operatorAddress  = common.HexToAddress("0x00000000000000000000000000000000000000c0")

	walletA = common.HexToAddress("0x000000000000000000000000000000000000a001")
	walletB = common.HexToAddress("0x000000000000000000000000000000000000a002")
	walletC = common.HexToAddress("0x000000000000000000000000000000000000a003")
	donorD  = common.HexToAddress("0x000000000000000000000000000000000000d001")
	donorE  = common.HexToAddress("0x000000000000000000000000000000000000d002")

	testFee = big.NewInt(10)
)

type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (s *recordingSink) Publish(event models.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) Events() []models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Event{}, s.events...)
}

func (s *recordingSink) Last() models.Event {
	events := s.Events()
	return events[len(events)-1]
}

type fixture struct {
	registry *Registry
	ledger   *DonationLedger
	token    *token.Memory
	port     *token.Port
	issuer   tbcommon.Signer
	sink     *recordingSink
	now      time.Time
}

type fixtureOption func(*Params)

func withStaging() fixtureOption {
	return func(p *Params) { p.StagingMode = true }
}

func withFee(fee *big.Int) fixtureOption {
	return func(p *Params) { p.RegistrationFee = fee }
}

func withPort(port TokenPort) fixtureOption {
	return func(p *Params) { p.Token = port }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	issuer, err := tbcommon.NewPrivateKeySigner(issuerPrivateKey)
	require.NoError(t, err)

	memory := token.NewMemory()
	port := memory.Port(operatorAddress)
	sink := &recordingSink{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	params := Params{
		Admin:           adminAddress,
		FeeCollector:    collectorAddress,
		TrustedVerifier: issuer.EthAddress(),
		RegistrationFee: testFee,
		Token:           port,
		Sink:            sink,
		Clock:           func() time.Time { return now },
	}
	for _, opt := range opts {
		opt(&params)
	}

	r, err := New(params)
	require.NoError(t, err)

	return &fixture{
		registry: r,
		ledger:   NewDonationLedger(r, nil),
		token:    memory,
		port:     port,
		issuer:   issuer,
		sink:     sink,
		now:      now,
	}
}

func (f *fixture) fund(wallet common.Address, amount int64) {
	f.token.Mint(wallet, big.NewInt(amount))
	f.token.Approve(wallet, operatorAddress, big.NewInt(amount))
}

func (f *fixture) admission(t *testing.T, did string) Admission {
	t.Helper()

	proofHash := crypto.Keccak256Hash([]byte("vc:" + did))
	signature, err := tbcommon.SignPersonal(f.issuer, proofHash[:])
	require.NoError(t, err)

	return Admission{
		FounderDID:     did,
		ProofHash:      proofHash,
		Signature:      signature,
		FounderAge:     25,
		FounderCountry: "KE",
		IPFSProfile:    "ipfs://profile-" + did,
		VCExpiryDate:   f.now.AddDate(1, 0, 0),
	}
}

func (f *fixture) admit(t *testing.T, wallet common.Address, did string) models.NGO {
	t.Helper()

	f.fund(wallet, 1000)
	ngo, err := f.registry.Admit(context.Background(), f.admission(t, did), wallet)
	require.NoError(t, err)
	return ngo
}

func TestNew(t *testing.T) {
	port := token.NewMemory().Port(operatorAddress)

	_, err := New(Params{FeeCollector: collectorAddress, Token: port})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = New(Params{Admin: adminAddress, Token: port})
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = New(Params{Admin: adminAddress, FeeCollector: collectorAddress})
	assert.Error(t, err)

	_, err = New(Params{Admin: adminAddress, FeeCollector: collectorAddress, Token: port, RegistrationFee: big.NewInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	r, err := New(Params{Admin: adminAddress, FeeCollector: collectorAddress, Token: port})
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), r.RegistrationFee())
	assert.Equal(t, TrustAttested, r.TrustPolicy())
	assert.Equal(t, adminAddress, r.Admin())
}

func TestAdmit(t *testing.T) {
	f := newFixture(t)
	f.fund(walletA, 100)

	req := f.admission(t, "did:x:1")
	ngo, err := f.registry.Admit(context.Background(), req, walletA)
	require.NoError(t, err)

	assert.Equal(t, walletA, ngo.Wallet)
	assert.Equal(t, "did:x:1", ngo.FounderDID)
	assert.Equal(t, uint64(25), ngo.FounderAge)
	assert.Equal(t, "KE", ngo.FounderCountry)
	assert.True(t, ngo.IsActive)
	assert.Equal(t, f.now, ngo.RegisteredAt)
	assert.Equal(t, big.NewInt(0), ngo.TotalDonationsReceived)
	assert.Zero(t, ngo.DonorCount)

	assert.True(t, f.registry.IsVerified(walletA))
	assert.Equal(t, walletA, f.registry.WalletByDID("did:x:1"))
	assert.True(t, f.registry.IsVCProofUsed(req.ProofHash))
	assert.Equal(t, uint64(1), f.registry.GetTotalVerifiedNGOs())

	assert.Equal(t, big.NewInt(90), f.token.BalanceOf(walletA))
	assert.Equal(t, testFee, f.token.BalanceOf(collectorAddress))

	event := f.sink.Last()
	assert.Equal(t, models.EventNGORegistered, event.Kind)
	assert.Equal(t, uint64(1), event.Sequence)
	assert.Equal(t, walletA.Hex(), event.NGO)
	assert.Equal(t, req.ProofHash.Hex(), event.ProofHash)
	assert.Equal(t, "10", event.Amount)
	assert.Equal(t, uint64(1), f.registry.EventSequence())
}

func TestAdmit_Rejections(t *testing.T) {
	testCases := []struct {
		name   string
		caller common.Address
		mutate func(f *fixture, req *Admission)
		err    error
	}{
		{
			name:   "zero caller",
			caller: common.Address{},
			err:    ErrInvalidAddress,
		},
		{
			name:   "already registered",
			caller: walletA,
			err:    ErrAlreadyRegistered,
		},
		{
			name:   "did reused by another wallet",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderDID = "did:x:1"
			},
			err: ErrDIDAlreadyUsed,
		},
		{
			name:   "proof hash reused",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.ProofHash = crypto.Keccak256Hash([]byte("vc:did:x:1"))
			},
			err: ErrVCAlreadyUsed,
		},
		{
			name:   "signature by someone else",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				other, _ := tbcommon.NewPrivateKeySigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
				req.Signature, _ = tbcommon.SignPersonal(other, req.ProofHash[:])
			},
			err: ErrInvalidSignature,
		},
		{
			name:   "malformed signature",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.Signature = []byte{0x01, 0x02}
			},
			err: ErrInvalidSignature,
		},
		{
			name:   "underage",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderAge = 17
			},
			err: ErrFounderUnderage,
		},
		{
			name:   "expiry equal to now",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.VCExpiryDate = f.now
			},
			err: ErrCredentialExpired,
		},
		{
			name:   "expired",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.VCExpiryDate = f.now.Add(-time.Hour)
			},
			err: ErrCredentialExpired,
		},
		{
			name:   "country too long",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderCountry = "KEN"
			},
			err: ErrInvalidCountryCode,
		},
		{
			name:   "country empty",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderCountry = ""
			},
			err: ErrInvalidCountryCode,
		},
		{
			name:   "country not letters",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderCountry = "K1"
			},
			err: ErrInvalidCountryCode,
		},
		{
			name:   "country two non-ascii runes",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.FounderCountry = "ÄÖ"
			},
			err: ErrInvalidCountryCode,
		},
		{
			name:   "empty profile",
			caller: walletB,
			mutate: func(f *fixture, req *Admission) {
				req.IPFSProfile = ""
			},
			err: ErrInvalidProfile,
		},
		{
			name:   "earliest failing check wins",
			caller: walletA,
			mutate: func(f *fixture, req *Admission) {
				req.FounderAge = 10
				req.IPFSProfile = ""
			},
			err: ErrAlreadyRegistered,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.admit(t, walletA, "did:x:1")
			f.fund(walletB, 1000)
			before := f.registry.EventSequence()

			req := f.admission(t, "did:x:2")
			if tc.mutate != nil {
				tc.mutate(f, &req)
			}

			_, err := f.registry.Admit(context.Background(), req, tc.caller)
			assert.ErrorIs(t, err, tc.err)

			assert.Equal(t, before, f.registry.EventSequence())
			assert.False(t, f.registry.IsVerified(walletB))
			assert.Equal(t, common.Address{}, f.registry.WalletByDID("did:x:2"))
			assert.Equal(t, big.NewInt(1000), f.token.BalanceOf(walletB))
			assert.Equal(t, uint64(1), f.registry.GetTotalVerifiedNGOs())
		})
	}
}

func TestAdmit_TwiceFromSameWallet(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	_, err := f.registry.Admit(context.Background(), f.admission(t, "did:x:9"), walletA)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestAdmit_StagingSkipsSignature(t *testing.T) {
	f := newFixture(t, withStaging())
	f.fund(walletA, 100)

	req := f.admission(t, "did:x:1")
	req.Signature = nil

	_, err := f.registry.Admit(context.Background(), req, walletA)
	require.NoError(t, err)
	assert.True(t, f.registry.StagingMode())
	assert.Equal(t, TrustUnverified, f.registry.TrustPolicy())
	assert.Equal(t, "unverified", f.registry.TrustPolicy().String())
}

func TestAdmit_FeePaymentFailure(t *testing.T) {
	f := newFixture(t)
	f.token.Mint(walletA, big.NewInt(5))
	f.token.Approve(walletA, operatorAddress, big.NewInt(5))

	req := f.admission(t, "did:x:1")
	_, err := f.registry.Admit(context.Background(), req, walletA)
	assert.ErrorIs(t, err, ErrFeePaymentFailed)
	assert.ErrorIs(t, err, token.ErrInsufficientBalance)

	assert.False(t, f.registry.IsVerified(walletA))
	assert.False(t, f.registry.IsVCProofUsed(req.ProofHash))
	assert.Equal(t, common.Address{}, f.registry.WalletByDID("did:x:1"))
	assert.Empty(t, f.sink.Events())
	_, err = f.registry.GetNGO(walletA)
	assert.ErrorIs(t, err, ErrNGONotFound)

	// nothing was consumed, so the same credential works once paid for
	f.fund(walletA, 100)
	_, err = f.registry.Admit(context.Background(), req, walletA)
	assert.NoError(t, err)
}

func TestAdmit_MissingAllowance(t *testing.T) {
	f := newFixture(t)
	f.token.Mint(walletA, big.NewInt(100))

	_, err := f.registry.Admit(context.Background(), f.admission(t, "did:x:1"), walletA)
	assert.ErrorIs(t, err, ErrFeePaymentFailed)
	assert.ErrorIs(t, err, token.ErrInsufficientAllowance)
}

func TestAdmit_ZeroFeeSkipsTransfer(t *testing.T) {
	f := newFixture(t, withFee(big.NewInt(0)))

	_, err := f.registry.Admit(context.Background(), f.admission(t, "did:x:1"), walletA)
	require.NoError(t, err)
	assert.True(t, f.registry.IsVerified(walletA))
	assert.Equal(t, big.NewInt(0), f.token.BalanceOf(collectorAddress))
}

func TestAdmit_ReentrantFeeCallback(t *testing.T) {
	memory := token.NewMemory()
	var r *Registry
	var nested error
	var sawVerified bool

	port := memory.Port(operatorAddress).WithHook(func(ctx context.Context, from, to common.Address, amount *big.Int) error {
		sawVerified = r.IsVerified(from)
		nested = r.UpdateProfile("ipfs://hijack", from)
		return nil
	})

	f := newFixture(t, withPort(port))
	f.token = memory
	r = f.registry
	f.fund(walletA, 100)

	_, err := r.Admit(context.Background(), f.admission(t, "did:x:1"), walletA)
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrReentrantCall)
	assert.False(t, sawVerified)

	ngo, err := r.GetNGO(walletA)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://profile-did:x:1", ngo.IPFSProfile)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	require.NoError(t, f.registry.UpdateProfile("ipfs://new", walletA))
	ngo, err := f.registry.GetNGO(walletA)
	require.NoError(t, err)
	assert.Equal(t, "ipfs://new", ngo.IPFSProfile)
	assert.Equal(t, models.EventNGOProfileUpdated, f.sink.Last().Kind)

	assert.ErrorIs(t, f.registry.UpdateProfile("ipfs://new", walletB), ErrNotVerifiedNGO)
	assert.ErrorIs(t, f.registry.UpdateProfile("", walletA), ErrInvalidProfile)

	require.NoError(t, f.registry.AdminRevoke(walletA, "policy violation", adminAddress))
	assert.ErrorIs(t, f.registry.UpdateProfile("ipfs://again", walletA), ErrNotVerifiedNGO)
}

func TestAdminRevoke(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	assert.ErrorIs(t, f.registry.AdminRevoke(walletA, "policy violation", walletB), ErrOnlyAdmin)
	assert.ErrorIs(t, f.registry.AdminRevoke(walletB, "policy violation", adminAddress), ErrNGONotFound)
	assert.True(t, f.registry.IsVerified(walletA))

	require.NoError(t, f.registry.AdminRevoke(walletA, "policy violation", adminAddress))
	assert.False(t, f.registry.IsVerified(walletA))

	event := f.sink.Last()
	assert.Equal(t, models.EventNGORevoked, event.Kind)
	assert.Equal(t, "policy violation", event.Reason)
	assert.Equal(t, adminAddress.Hex(), event.Actor)

	// the record survives revocation
	ngo, err := f.registry.GetNGO(walletA)
	require.NoError(t, err)
	assert.False(t, ngo.IsActive)
	assert.Equal(t, walletA, f.registry.WalletByDID("did:x:1"))

	_, err = f.registry.Admit(context.Background(), f.admission(t, "did:x:5"), walletA)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestQueries(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")
	f.fund(walletB, 1000)
	req := f.admission(t, "did:x:2")
	req.FounderCountry = "UG"
	_, err := f.registry.Admit(context.Background(), req, walletB)
	require.NoError(t, err)
	f.admit(t, walletC, "did:x:3")

	assert.Equal(t, []common.Address{walletA, walletB, walletC}, f.registry.GetAllVerifiedNGOs())
	assert.Equal(t, []common.Address{walletA, walletC}, f.registry.GetNGOsByCountry("KE"))
	assert.Equal(t, []common.Address{walletB}, f.registry.GetNGOsByCountry("UG"))
	assert.Empty(t, f.registry.GetNGOsByCountry("TZ"))

	require.NoError(t, f.registry.AdminRevoke(walletA, "policy violation", adminAddress))
	assert.Equal(t, []common.Address{walletB, walletC}, f.registry.GetAllVerifiedNGOs())
	assert.Equal(t, []common.Address{walletC}, f.registry.GetNGOsByCountry("KE"))
	assert.Equal(t, uint64(2), f.registry.GetTotalVerifiedNGOs())
	assert.Equal(t, uint64(3), f.registry.TotalNGOs())

	assert.Equal(t, collectorAddress, f.registry.FeeCollector())
	assert.Equal(t, f.issuer.EthAddress(), f.registry.TrustedVerifier())
	assert.Equal(t, testFee, f.registry.RegistrationFee())
	assert.False(t, f.registry.StagingMode())
}

func TestGetNGO_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	ngo, err := f.registry.GetNGO(walletA)
	require.NoError(t, err)
	ngo.TotalDonationsReceived.SetInt64(999)
	ngo.IsActive = false

	again, err := f.registry.GetNGO(walletA)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), again.TotalDonationsReceived)
	assert.True(t, again.IsActive)
}

func TestIsVCExpired(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	expired, err := f.registry.IsVCExpired(walletA)
	require.NoError(t, err)
	assert.False(t, expired)

	f.registry.now = func() time.Time { return f.now.AddDate(2, 0, 0) }
	expired, err = f.registry.IsVCExpired(walletA)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.True(t, f.registry.IsVerified(walletA))

	_, err = f.registry.IsVCExpired(walletB)
	assert.ErrorIs(t, err, ErrNGONotFound)
}

func TestAdminCapability(t *testing.T) {
	capability := AdminCapability{holder: adminAddress}
	assert.True(t, capability.Permits(adminAddress))
	assert.False(t, capability.Permits(walletA))
	assert.False(t, AdminCapability{}.Permits(common.Address{}))
}
