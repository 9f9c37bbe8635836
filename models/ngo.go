package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	CollectionNGOs = "ngos"
)

// NGO is the registry record of an admitted organization. Records are never
// deleted; revocation only clears IsActive.
type NGO struct {
	Wallet                 common.Address
	FounderDID             string
	FounderAge             uint64
	FounderCountry         string
	IPFSProfile            string
	VCExpiryDate           time.Time
	IsActive               bool
	RegisteredAt           time.Time
	TotalDonationsReceived *big.Int
	DonorCount             uint64
}

// Copy returns a record that shares no mutable state with n.
func (n *NGO) Copy() NGO {
	c := *n
	c.TotalDonationsReceived = new(big.Int).Set(n.TotalDonationsReceived)
	return c
}

// NGODocument is the mongo projection of an NGO record.
type NGODocument struct {
	Wallet                 string    `bson:"wallet" json:"wallet"`
	FounderDID             string    `bson:"founder_did" json:"founder_did"`
	FounderAge             uint64    `bson:"founder_age" json:"founder_age"`
	FounderCountry         string    `bson:"founder_country" json:"founder_country"`
	IPFSProfile            string    `bson:"ipfs_profile" json:"ipfs_profile"`
	VCExpiryDate           time.Time `bson:"vc_expiry_date" json:"vc_expiry_date"`
	IsActive               bool      `bson:"is_active" json:"is_active"`
	RegisteredAt           time.Time `bson:"registered_at" json:"registered_at"`
	TotalDonationsReceived string    `bson:"total_donations_received" json:"total_donations_received"`
	DonorCount             uint64    `bson:"donor_count" json:"donor_count"`
	UpdatedAt              time.Time `bson:"updated_at" json:"updated_at"`
}

func NewNGODocument(n NGO) NGODocument {
	total := "0"
	if n.TotalDonationsReceived != nil {
		total = n.TotalDonationsReceived.String()
	}
	return NGODocument{
		Wallet:                 n.Wallet.Hex(),
		FounderDID:             n.FounderDID,
		FounderAge:             n.FounderAge,
		FounderCountry:         n.FounderCountry,
		IPFSProfile:            n.IPFSProfile,
		VCExpiryDate:           n.VCExpiryDate,
		IsActive:               n.IsActive,
		RegisteredAt:           n.RegisteredAt,
		TotalDonationsReceived: total,
		DonorCount:             n.DonorCount,
	}
}

// ChallengeState tracks the distinct challengers of one NGO.
type ChallengeState struct {
	Challengers []common.Address
	Count       uint64
	Revoked     bool
}
