package common

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrMalformedSignature = errors.New("malformed signature")

// Verifier decides whether a credential proof was attested by an authority.
type Verifier interface {
	Verify(proofHash common.Hash, signature []byte, authority common.Address) bool
}

// EthVerifier accepts EIP-191 personal signatures over the 32 byte proof hash,
// the format produced by wallet personal_sign and SignPersonal.
type EthVerifier struct{}

var _ Verifier = EthVerifier{}

func (EthVerifier) Verify(proofHash common.Hash, signature []byte, authority common.Address) bool {
	if authority == (common.Address{}) {
		return false
	}
	signer, err := RecoverPersonalSigner(proofHash[:], signature)
	if err != nil {
		return false
	}
	return signer == authority
}

// RecoverPersonalSigner returns the address that produced signature over the
// EIP-191 digest of message. Recovery ids 0/1 and 27/28 are accepted; high-s
// signatures are rejected.
func RecoverPersonalSigner(message []byte, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, ErrMalformedSignature
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[crypto.RecoveryIDOffset], r, s, true) {
		return common.Address{}, ErrMalformedSignature
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash(message), sig)
	if err != nil {
		return common.Address{}, ErrMalformedSignature
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
