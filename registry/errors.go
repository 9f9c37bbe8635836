package registry

import "errors"

// admission and profile errors
var (
	ErrAlreadyRegistered  = errors.New("wallet already registered")
	ErrDIDAlreadyUsed     = errors.New("founder DID already used")
	ErrVCAlreadyUsed      = errors.New("credential proof already used")
	ErrInvalidSignature   = errors.New("invalid credential signature")
	ErrFounderUnderage    = errors.New("founder must be at least 18")
	ErrCredentialExpired  = errors.New("credential expired")
	ErrInvalidCountryCode = errors.New("country code must be 2 letters")
	ErrInvalidProfile     = errors.New("profile reference must not be empty")
	ErrFeePaymentFailed   = errors.New("registration fee payment failed")
	ErrNotVerifiedNGO     = errors.New("caller is not a verified NGO")
	ErrNGONotActive       = errors.New("NGO not active")
	ErrNGONotFound        = errors.New("NGO not found")
)

// challenge errors
var (
	ErrCannotChallengeSelf = errors.New("cannot challenge self")
	ErrReasonTooShort      = errors.New("challenge reason too short")
	ErrAlreadyChallenged   = errors.New("already challenged this NGO")
)

// donation errors
var (
	ErrInvalidNGOAddress = errors.New("invalid NGO address")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrMessageTooLong    = errors.New("message exceeds 200 characters")
	ErrNGONotVerified    = errors.New("NGO not verified")
	ErrInvalidDonationID = errors.New("invalid donation id")
)

// admin and guard errors
var (
	ErrOnlyAdmin      = errors.New("caller is not admin")
	ErrInvalidAddress = errors.New("invalid address")
	ErrReentrantCall  = errors.New("reentrant call")
	ErrNotFresh       = errors.New("registry already has state")
	ErrEventGap       = errors.New("event log out of sequence")
	ErrMissingGenesis = errors.New("event log does not start with registry_initialized")
)
