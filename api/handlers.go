package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

func (s *Server) walletParam(w http.ResponseWriter, r *http.Request) (common.Address, bool) {
	wallet, err := parseAddress(chi.URLParam(r, "wallet"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return common.Address{}, false
	}
	return wallet, true
}

func (s *Server) ngoResponse(wallet common.Address) (ngoResponse, error) {
	ngo, err := s.registry.GetNGO(wallet)
	if err != nil {
		return ngoResponse{}, err
	}
	expired, err := s.registry.IsVCExpired(wallet)
	if err != nil {
		return ngoResponse{}, err
	}
	return newNGOResponse(ngo, expired, s.registry.ChallengeCount(wallet)), nil
}

func (s *Server) configResponse() configResponse {
	return configResponse{
		Admin:           s.registry.Admin().Hex(),
		FeeCollector:    s.registry.FeeCollector().Hex(),
		TrustedVerifier: s.registry.TrustedVerifier().Hex(),
		RegistrationFee: s.registry.RegistrationFee().String(),
		StagingMode:     s.registry.StagingMode(),
		TrustPolicy:     s.registry.TrustPolicy().String(),
		EventSequence:   s.registry.EventSequence(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Healthy:       true,
		EventSequence: s.registry.EventSequence(),
	}
	if s.services != nil {
		response.Services = s.services()
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.configResponse())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.ledger.GetPlatformStats()
	writeJSON(w, http.StatusOK, statsResponse{
		TotalAmount:   stats.TotalAmount.String(),
		TotalCount:    stats.TotalCount,
		AverageAmount: stats.AverageAmount.String(),
		TotalNGOs:     s.registry.TotalNGOs(),
		VerifiedNGOs:  s.registry.GetTotalVerifiedNGOs(),
	})
}

func (s *Server) handleListNGOs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newWalletsResponse(s.registry.GetAllVerifiedNGOs()))
}

func (s *Server) handleNGOsByCountry(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	writeJSON(w, http.StatusOK, newWalletsResponse(s.registry.GetNGOsByCountry(code)))
}

func (s *Server) handleGetNGO(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	response, err := s.ngoResponse(wallet)
	if err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleNGODonations(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	if _, err := s.registry.GetNGO(wallet); err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newDonationsResponse(s.ledger.GetDonationsByNGO(wallet), s.ledger.TotalByNGO(wallet)))
}

func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	if _, err := s.registry.GetNGO(wallet); err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	state := s.registry.Challengers(wallet)
	response := challengesResponse{
		Count:       state.Count,
		Challengers: make([]string, 0, len(state.Challengers)),
		Revoked:     state.Revoked,
	}
	for _, challenger := range state.Challengers {
		response.Challengers = append(response.Challengers, challenger.Hex())
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleDonorDonations(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newDonationsResponse(s.ledger.GetDonationsByDonor(wallet), s.ledger.TotalByDonor(wallet)))
}

func (s *Server) handleRecentDonations(w http.ResponseWriter, r *http.Request) {
	limit := uint64(DefaultRecentLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
		limit = min(parsed, MaxRecentLimit)
	}
	writeJSON(w, http.StatusOK, newDonationsResponse(s.ledger.GetRecentDonations(limit), nil))
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	donation, err := s.ledger.GetDonation(id)
	if err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, models.NewDonationDocument(donation))
}

func (s *Server) handleWalletByDID(w http.ResponseWriter, r *http.Request) {
	wallet := s.registry.WalletByDID(chi.URLParam(r, "did"))
	if wallet == (common.Address{}) {
		writeError(w, r, http.StatusNotFound, errDIDNotFound)
		return
	}
	writeJSON(w, http.StatusOK, addressRequest{Address: wallet.Hex()})
}

func (s *Server) handleProofUsed(w http.ResponseWriter, r *http.Request) {
	hash, err := hexutil.Decode(chi.URLParam(r, "hash"))
	if err != nil || len(hash) != common.HashLength {
		writeError(w, r, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"used": s.registry.IsVCProofUsed(common.BytesToHash(hash))})
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	var req admitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	admission, err := req.admission()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	caller := Caller(r.Context())
	if _, err := s.registry.Admit(r.Context(), admission, caller); err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.flush(r)
	s.writeNGO(w, r, http.StatusCreated, caller)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	caller := Caller(r.Context())
	if err := s.registry.UpdateProfile(req.IPFSProfile, caller); err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeNGO(w, r, http.StatusOK, caller)
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	count, err := s.registry.Challenge(wallet, req.Reason, Caller(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	wallet, ok := s.walletParam(w, r)
	if !ok {
		return
	}
	var req reasonRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.registry.AdminRevoke(wallet, req.Reason, Caller(r.Context())); err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeNGO(w, r, http.StatusOK, wallet)
}

// handleDonate reports token failures, which the ledger returns unwrapped,
// as payment required.
func (s *Server) handleDonate(w http.ResponseWriter, r *http.Request) {
	var req donateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	ngo, err := parseAddress(req.NGO)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	donation, err := s.ledger.Donate(r.Context(), ngo, amount, req.Message, Caller(r.Context()))
	if err != nil {
		writeDomainError(w, r, err, http.StatusPaymentRequired)
		return
	}
	s.flush(r)
	writeJSON(w, http.StatusCreated, models.NewDonationDocument(donation))
}

func (s *Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	fee, err := parseAmount(req.Fee)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeAdminResult(w, r, s.registry.SetRegistrationFee(fee, Caller(r.Context())))
}

func (s *Server) handleSetCollector(w http.ResponseWriter, r *http.Request) {
	s.handleAddressUpdate(w, r, s.registry.SetFeeCollector)
}

func (s *Server) handleSetVerifier(w http.ResponseWriter, r *http.Request) {
	s.handleAddressUpdate(w, r, s.registry.SetTrustedVerifier)
}

func (s *Server) handleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	s.handleAddressUpdate(w, r, s.registry.TransferAdmin)
}

func (s *Server) handleAddressUpdate(w http.ResponseWriter, r *http.Request, update func(address common.Address, caller common.Address) error) {
	var req addressRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	address, err := parseAddress(req.Address)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeAdminResult(w, r, update(address, Caller(r.Context())))
}

func (s *Server) handleSetStaging(w http.ResponseWriter, r *http.Request) {
	var req stagingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	s.writeAdminResult(w, r, s.registry.SetStagingMode(req.Enabled, Caller(r.Context())))
}

func (s *Server) writeAdminResult(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Info("[API] Admin update ", r.URL.Path, " by ", Caller(r.Context()).Hex())
	writeJSON(w, http.StatusOK, s.configResponse())
}

func (s *Server) writeNGO(w http.ResponseWriter, r *http.Request, status int, wallet common.Address) {
	response, err := s.ngoResponse(wallet)
	if err != nil {
		writeDomainError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, response)
}
