package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Samuel1505/TrustBridge-sub000/models"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

type admitRequest struct {
	FounderDID     string    `json:"founder_did"`
	ProofHash      string    `json:"proof_hash"`
	Signature      string    `json:"signature"`
	FounderAge     uint64    `json:"founder_age"`
	FounderCountry string    `json:"founder_country"`
	IPFSProfile    string    `json:"ipfs_profile"`
	VCExpiryDate   time.Time `json:"vc_expiry_date"`
}

// admission converts the request. An empty signature is allowed so staging
// admissions need not carry one.
func (req admitRequest) admission() (registry.Admission, error) {
	proof, err := hexutil.Decode(req.ProofHash)
	if err != nil || len(proof) != common.HashLength {
		return registry.Admission{}, fmt.Errorf("%w: proof_hash must be 32 bytes of hex", ErrInvalidRequest)
	}
	var signature []byte
	if req.Signature != "" {
		signature, err = hexutil.Decode(req.Signature)
		if err != nil {
			return registry.Admission{}, fmt.Errorf("%w: signature: %s", ErrInvalidRequest, err)
		}
	}
	return registry.Admission{
		FounderDID:     req.FounderDID,
		ProofHash:      common.BytesToHash(proof),
		Signature:      signature,
		FounderAge:     req.FounderAge,
		FounderCountry: strings.ToUpper(req.FounderCountry),
		IPFSProfile:    req.IPFSProfile,
		VCExpiryDate:   req.VCExpiryDate,
	}, nil
}

type profileRequest struct {
	IPFSProfile string `json:"ipfs_profile"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type donateRequest struct {
	NGO     string `json:"ngo"`
	Amount  string `json:"amount"`
	Message string `json:"message"`
}

type feeRequest struct {
	Fee string `json:"fee"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type stagingRequest struct {
	Enabled bool `json:"enabled"`
}

type ngoResponse struct {
	Wallet                 string    `json:"wallet"`
	FounderDID             string    `json:"founder_did"`
	FounderAge             uint64    `json:"founder_age"`
	FounderCountry         string    `json:"founder_country"`
	IPFSProfile            string    `json:"ipfs_profile"`
	VCExpiryDate           time.Time `json:"vc_expiry_date"`
	IsActive               bool      `json:"is_active"`
	RegisteredAt           time.Time `json:"registered_at"`
	TotalDonationsReceived string    `json:"total_donations_received"`
	DonorCount             uint64    `json:"donor_count"`
	VCExpired              bool      `json:"vc_expired"`
	ChallengeCount         uint64    `json:"challenge_count"`
}

func newNGOResponse(ngo models.NGO, expired bool, challenges uint64) ngoResponse {
	doc := models.NewNGODocument(ngo)
	return ngoResponse{
		Wallet:                 doc.Wallet,
		FounderDID:             doc.FounderDID,
		FounderAge:             doc.FounderAge,
		FounderCountry:         doc.FounderCountry,
		IPFSProfile:            doc.IPFSProfile,
		VCExpiryDate:           doc.VCExpiryDate,
		IsActive:               doc.IsActive,
		RegisteredAt:           doc.RegisteredAt,
		TotalDonationsReceived: doc.TotalDonationsReceived,
		DonorCount:             doc.DonorCount,
		VCExpired:              expired,
		ChallengeCount:         challenges,
	}
}

type walletsResponse struct {
	Wallets []string `json:"wallets"`
	Total   uint64   `json:"total"`
}

func newWalletsResponse(wallets []common.Address) walletsResponse {
	out := walletsResponse{Wallets: make([]string, 0, len(wallets)), Total: uint64(len(wallets))}
	for _, wallet := range wallets {
		out.Wallets = append(out.Wallets, wallet.Hex())
	}
	return out
}

type challengesResponse struct {
	Count       uint64   `json:"count"`
	Challengers []string `json:"challengers"`
	Revoked     bool     `json:"revoked"`
}

type donationsResponse struct {
	Donations []models.DonationDocument `json:"donations"`
	Total     string                    `json:"total,omitempty"`
}

func newDonationsResponse(donations []models.Donation, total *big.Int) donationsResponse {
	out := donationsResponse{Donations: make([]models.DonationDocument, 0, len(donations))}
	for _, donation := range donations {
		out.Donations = append(out.Donations, models.NewDonationDocument(donation))
	}
	if total != nil {
		out.Total = total.String()
	}
	return out
}

type statsResponse struct {
	TotalAmount   string `json:"total_amount"`
	TotalCount    uint64 `json:"total_count"`
	AverageAmount string `json:"average_amount"`
	TotalNGOs     uint64 `json:"total_ngos"`
	VerifiedNGOs  uint64 `json:"verified_ngos"`
}

type configResponse struct {
	Admin           string `json:"admin"`
	FeeCollector    string `json:"fee_collector"`
	TrustedVerifier string `json:"trusted_verifier"`
	RegistrationFee string `json:"registration_fee"`
	StagingMode     bool   `json:"staging_mode"`
	TrustPolicy     string `json:"trust_policy"`
	EventSequence   uint64 `json:"event_sequence"`
}

type healthResponse struct {
	Healthy       bool                   `json:"healthy"`
	EventSequence uint64                 `json:"event_sequence"`
	Services      []models.ServiceHealth `json:"services"`
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	return nil
}

func parseAddress(value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%w: %q is not an address", ErrInvalidRequest, value)
	}
	return common.HexToAddress(value), nil
}

func parseAmount(value string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal amount", ErrInvalidRequest, value)
	}
	if amount.BitLen() > registry.MaxAmountBits {
		return nil, fmt.Errorf("%w: %q exceeds uint256", ErrInvalidRequest, value)
	}
	return amount, nil
}
