package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/metrics"
	"github.com/Samuel1505/TrustBridge-sub000/registry"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	errDIDNotFound    = errors.New("founder DID not registered")
)

var statusGroups = []struct {
	status int
	errs   []error
}{
	{http.StatusPaymentRequired, []error{
		registry.ErrFeePaymentFailed,
	}},
	{http.StatusNotFound, []error{
		registry.ErrNGONotFound,
		registry.ErrInvalidDonationID,
	}},
	{http.StatusForbidden, []error{
		registry.ErrOnlyAdmin,
		registry.ErrNotVerifiedNGO,
		registry.ErrInvalidSignature,
		registry.ErrCannotChallengeSelf,
	}},
	{http.StatusConflict, []error{
		registry.ErrAlreadyRegistered,
		registry.ErrDIDAlreadyUsed,
		registry.ErrVCAlreadyUsed,
		registry.ErrAlreadyChallenged,
		registry.ErrNGONotActive,
		registry.ErrNGONotVerified,
		registry.ErrReentrantCall,
	}},
	{http.StatusBadRequest, []error{
		ErrInvalidRequest,
		registry.ErrFounderUnderage,
		registry.ErrCredentialExpired,
		registry.ErrInvalidCountryCode,
		registry.ErrInvalidProfile,
		registry.ErrReasonTooShort,
		registry.ErrInvalidNGOAddress,
		registry.ErrInvalidAmount,
		registry.ErrMessageTooLong,
		registry.ErrInvalidAddress,
	}},
}

// statusFor maps a domain error to its status. Anything unknown gets
// fallback.
func statusFor(err error, fallback int) int {
	for _, group := range statusGroups {
		for _, target := range group.errs {
			if errors.Is(err, target) {
				return group.status
			}
		}
	}
	return fallback
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusPaymentRequired:
		return "payment_required"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "internal_error"
	}
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("[API] Error encoding response: ", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := codeFor(status)
	metrics.APIFailures.WithLabelValues(routeOf(r), code).Inc()

	response := errorResponse{Error: code}
	if status == http.StatusInternalServerError {
		log.Error("[API] ", r.Method, " ", r.URL.Path, ": ", err)
	} else {
		response.Description = err.Error()
	}
	writeJSON(w, status, response)
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	writeError(w, r, statusFor(err, fallback), err)
}
