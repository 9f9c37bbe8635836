package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	CollectionDonations = "donations"
)

type Donation struct {
	ID        uint64
	Donor     common.Address
	NGO       common.Address
	Amount    *big.Int
	Message   string
	Timestamp time.Time
}

func (d *Donation) Copy() Donation {
	c := *d
	c.Amount = new(big.Int).Set(d.Amount)
	return c
}

type DonationDocument struct {
	DonationID uint64    `bson:"donation_id" json:"donation_id"`
	Donor      string    `bson:"donor" json:"donor"`
	NGO        string    `bson:"ngo" json:"ngo"`
	Amount     string    `bson:"amount" json:"amount"`
	Message    string    `bson:"message" json:"message"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}

func NewDonationDocument(d Donation) DonationDocument {
	return DonationDocument{
		DonationID: d.ID,
		Donor:      d.Donor.Hex(),
		NGO:        d.NGO.Hex(),
		Amount:     d.Amount.String(),
		Message:    d.Message,
		Timestamp:  d.Timestamp,
	}
}

// PlatformStats summarizes the ledger. AverageAmount truncates.
type PlatformStats struct {
	TotalAmount   *big.Int
	TotalCount    uint64
	AverageAmount *big.Int
}
