package registry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/token"
)

func freshRegistry(t *testing.T) (*Registry, *DonationLedger, *recordingSink) {
	t.Helper()

	sink := &recordingSink{}
	r, err := New(Params{
		Admin:        adminAddress,
		FeeCollector: collectorAddress,
		Token:        token.NewMemory().Port(operatorAddress),
		Sink:         sink,
		Clock:        func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return r, NewDonationLedger(r, nil), sink
}

func genesisEvent() models.Event {
	return models.Event{
		Sequence:     1,
		Kind:         models.EventRegistryInitialized,
		Actor:        adminAddress.Hex(),
		FeeCollector: collectorAddress.Hex(),
		Amount:       "0",
	}
}

func TestRestore(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.Initialize())
	f.admit(t, walletA, "did:x:1")
	f.admit(t, walletB, "did:x:2")
	f.fund(donorD, 1000)

	require.NoError(t, f.registry.UpdateProfile("ipfs://updated", walletA))
	_, err := f.ledger.Donate(context.Background(), walletA, big.NewInt(100), "thanks", donorD)
	require.NoError(t, err)
	_, err = f.ledger.Donate(context.Background(), walletB, big.NewInt(30), "", donorD)
	require.NoError(t, err)
	for i := 1; i <= RevocationThreshold; i++ {
		_, err := f.registry.Challenge(walletB, validReason, challenger(i))
		require.NoError(t, err)
	}
	require.NoError(t, f.registry.SetRegistrationFee(big.NewInt(99), adminAddress))
	require.NoError(t, f.registry.SetStagingMode(true, adminAddress))
	require.NoError(t, f.registry.TransferAdmin(walletC, adminAddress))

	events := f.sink.Events()
	r, ledger, sink := freshRegistry(t)
	require.NoError(t, r.Restore(events, ledger))

	assert.Empty(t, sink.Events())
	assert.Equal(t, f.registry.EventSequence(), r.EventSequence())

	for _, wallet := range f.registry.order {
		want, err := f.registry.GetNGO(wallet)
		require.NoError(t, err)
		got, err := r.GetNGO(wallet)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	assert.Equal(t, f.registry.GetAllVerifiedNGOs(), r.GetAllVerifiedNGOs())
	assert.Equal(t, f.registry.Challengers(walletB), r.Challengers(walletB))
	assert.Equal(t, walletA, r.WalletByDID("did:x:1"))
	assert.True(t, r.IsVCProofUsed(f.admission(t, "did:x:2").ProofHash))
	assert.Equal(t, big.NewInt(99), r.RegistrationFee())
	assert.True(t, r.StagingMode())
	assert.Equal(t, walletC, r.Admin())

	assert.Equal(t, f.ledger.GetPlatformStats(), ledger.GetPlatformStats())
	assert.Equal(t, f.ledger.GetRecentDonations(10), ledger.GetRecentDonations(10))
	assert.Equal(t, f.ledger.TotalByDonor(donorD), ledger.TotalByDonor(donorD))

	// the restored registry continues the sequence
	_, err = r.Admit(context.Background(), f.admission(t, "did:x:1"), walletC)
	assert.ErrorIs(t, err, ErrDIDAlreadyUsed)
	require.NoError(t, r.UpdateProfile("ipfs://after", walletA))
	assert.Equal(t, f.registry.EventSequence()+1, sink.Last().Sequence)
}

func TestRestore_NotFresh(t *testing.T) {
	f := newFixture(t)
	f.admit(t, walletA, "did:x:1")

	err := f.registry.Restore(f.sink.Events(), f.ledger)
	assert.ErrorIs(t, err, ErrNotFresh)
}

func TestRestore_Gap(t *testing.T) {
	r, ledger, _ := freshRegistry(t)
	events := []models.Event{
		genesisEvent(),
		{Sequence: 2, Kind: models.EventStagingModeUpdated, NewValue: "true"},
		{Sequence: 4, Kind: models.EventStagingModeUpdated, NewValue: "false"},
	}

	err := r.Restore(events, ledger)
	assert.ErrorIs(t, err, ErrEventGap)
}

func TestRestore_BadEvents(t *testing.T) {
	testCases := []struct {
		name  string
		event models.Event
		err   error
	}{
		{name: "unknown ngo", event: models.Event{Sequence: 2, Kind: models.EventNGORevoked, NGO: walletA.Hex()}, err: ErrNGONotFound},
		{name: "bad address", event: models.Event{Sequence: 2, Kind: models.EventAdminTransferred, NewValue: "nope"}, err: ErrInvalidAddress},
		{name: "bad amount", event: models.Event{Sequence: 2, Kind: models.EventRegistrationFeeUpdated, NewValue: "-3"}, err: ErrInvalidAmount},
		{name: "second genesis", event: func() models.Event { e := genesisEvent(); e.Sequence = 2; return e }(), err: ErrEventGap},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ledger, _ := freshRegistry(t)
			assert.ErrorIs(t, r.Restore([]models.Event{genesisEvent(), tc.event}, ledger), tc.err)
		})
	}

	r, ledger, _ := freshRegistry(t)
	assert.Error(t, r.Restore([]models.Event{genesisEvent(), {Sequence: 2, Kind: "bogus"}}, ledger))

	other, _, _ := freshRegistry(t)
	assert.Error(t, r.Restore(nil, NewDonationLedger(other, nil)))
}

func TestRestore_MissingGenesis(t *testing.T) {
	r, ledger, _ := freshRegistry(t)
	events := []models.Event{
		{Sequence: 1, Kind: models.EventStagingModeUpdated, NewValue: "true"},
	}

	assert.ErrorIs(t, r.Restore(events, ledger), ErrMissingGenesis)
	assert.False(t, r.StagingMode())

	bad := genesisEvent()
	bad.FeeCollector = "nope"
	r, ledger, _ = freshRegistry(t)
	assert.ErrorIs(t, r.Restore([]models.Event{bad}, ledger), ErrInvalidAddress)
}

func TestRestore_GenesisOverridesParams(t *testing.T) {
	f := newFixture(t, withStaging())
	require.NoError(t, f.registry.Initialize())
	f.admit(t, walletA, "did:x:1")
	f.fund(donorD, 1000)
	for i := 0; i < 3; i++ {
		_, err := f.ledger.Donate(context.Background(), walletA, big.NewInt(7), "", donorD)
		require.NoError(t, err)
	}
	for i := 1; i <= RevocationThreshold+1; i++ {
		_, err := f.registry.Challenge(walletA, validReason, challenger(i))
		require.NoError(t, err)
	}

	// built from different parameters, as after a config edit
	r, ledger, _ := freshRegistry(t)
	params := Params{Admin: walletC, FeeCollector: walletB}
	require.NoError(t, r.Restore(f.sink.Events(), ledger))

	assert.Equal(t, adminAddress, r.Admin())
	assert.Equal(t, collectorAddress, r.FeeCollector())
	assert.Equal(t, f.issuer.EthAddress(), r.TrustedVerifier())
	assert.Equal(t, testFee, r.RegistrationFee())
	assert.True(t, r.StagingMode())
	assert.Equal(t, TrustUnverified, r.TrustPolicy())
	assert.Equal(t, f.ledger.GetPlatformStats(), ledger.GetPlatformStats())
	assert.Equal(t, f.registry.Challengers(walletA), r.Challengers(walletA))

	assert.Equal(t, []string{"admin", "fee_collector", "trusted_verifier", "registration_fee", "staging_mode"}, r.ParamDrift(params))
	assert.Empty(t, r.ParamDrift(Params{
		Admin:           adminAddress,
		FeeCollector:    collectorAddress,
		TrustedVerifier: f.issuer.EthAddress(),
		RegistrationFee: big.NewInt(10),
		StagingMode:     true,
	}))

	// the old admin keeps its capability, the configured one gets none
	assert.ErrorIs(t, r.SetStagingMode(false, walletC), ErrOnlyAdmin)
	assert.NoError(t, r.SetStagingMode(false, adminAddress))
}

func TestInitialize(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.registry.Initialize())
	event := f.sink.Last()
	assert.Equal(t, uint64(1), event.Sequence)
	assert.Equal(t, models.EventRegistryInitialized, event.Kind)
	assert.Equal(t, adminAddress.Hex(), event.Actor)
	assert.Equal(t, collectorAddress.Hex(), event.FeeCollector)
	assert.Equal(t, f.issuer.EthAddress().Hex(), event.TrustedVerifier)
	assert.Equal(t, "10", event.Amount)
	assert.False(t, event.StagingMode)

	assert.ErrorIs(t, f.registry.Initialize(), ErrNotFresh)
	assert.Len(t, f.sink.Events(), 1)

	// a restored registry already has its genesis
	r, ledger, _ := freshRegistry(t)
	require.NoError(t, r.Restore(f.sink.Events(), ledger))
	assert.ErrorIs(t, r.Initialize(), ErrNotFresh)
}
