package models

import (
	"time"
)

const (
	CollectionEvents = "events"
)

type EventKind string

// types of registry and ledger events
const (
	EventRegistryInitialized    EventKind = "registry_initialized"
	EventNGORegistered          EventKind = "ngo_registered"
	EventNGOProfileUpdated      EventKind = "ngo_profile_updated"
	EventNGORevoked             EventKind = "ngo_revoked"
	EventNGOChallenged          EventKind = "ngo_challenged"
	EventDonationMade           EventKind = "donation_made"
	EventRegistrationFeeUpdated EventKind = "registration_fee_updated"
	EventFeeCollectorUpdated    EventKind = "fee_collector_updated"
	EventTrustedVerifierUpdated EventKind = "trusted_verifier_updated"
	EventStagingModeUpdated     EventKind = "staging_mode_updated"
	EventAdminTransferred       EventKind = "admin_transferred"
)

// Event is the storable form of a committed state change. Addresses are hex
// strings and amounts decimal strings so the log replays without loss.
type Event struct {
	Sequence   uint64    `bson:"sequence" json:"sequence"`
	Kind       EventKind `bson:"kind" json:"kind"`
	NGO        string    `bson:"ngo,omitempty" json:"ngo,omitempty"`
	Actor      string    `bson:"actor,omitempty" json:"actor,omitempty"`
	FounderDID string    `bson:"founder_did,omitempty" json:"founder_did,omitempty"`
	ProofHash  string    `bson:"proof_hash,omitempty" json:"proof_hash,omitempty"`
	FounderAge uint64    `bson:"founder_age,omitempty" json:"founder_age,omitempty"`
	Country    string    `bson:"country,omitempty" json:"country,omitempty"`
	Profile    string    `bson:"profile,omitempty" json:"profile,omitempty"`
	VCExpiry   time.Time `bson:"vc_expiry,omitempty" json:"vc_expiry,omitempty"`
	Reason     string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Count      uint64    `bson:"count,omitempty" json:"count,omitempty"`
	DonationID uint64    `bson:"donation_id" json:"donation_id"`
	Amount     string    `bson:"amount,omitempty" json:"amount,omitempty"`
	Message    string    `bson:"message,omitempty" json:"message,omitempty"`
	OldValue   string    `bson:"old_value,omitempty" json:"old_value,omitempty"`
	NewValue   string    `bson:"new_value,omitempty" json:"new_value,omitempty"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`

	// initial parameters, set on registry_initialized only
	FeeCollector    string `bson:"fee_collector,omitempty" json:"fee_collector,omitempty"`
	TrustedVerifier string `bson:"trusted_verifier,omitempty" json:"trusted_verifier,omitempty"`
	StagingMode     bool   `bson:"staging_mode,omitempty" json:"staging_mode,omitempty"`
}
