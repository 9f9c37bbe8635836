package common

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Struct Definition
type MnemonicSigner struct {
	ethAddress common.Address
	ethPrivKey *ecdsa.PrivateKey
}

var _ Signer = &MnemonicSigner{}

// Constructor Function
func NewMnemonicSigner(mnemonic string) (*MnemonicSigner, error) {

	ethPrivKey, err := EthereumPrivateKeyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to create ethereum private key: %w", err)
	}

	return newKeySigner(ethPrivKey), nil
}

// NewPrivateKeySigner loads a hex encoded secp256k1 private key.
func NewPrivateKeySigner(privateKey string) (*MnemonicSigner, error) {
	ethPrivKey, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load ethereum private key: %w", err)
	}

	return newKeySigner(ethPrivKey), nil
}

func newKeySigner(ethPrivKey *ecdsa.PrivateKey) *MnemonicSigner {
	publicKeyECDSA, _ := ethPrivKey.Public().(*ecdsa.PublicKey) // impossible to get an error since the private key is not nil

	return &MnemonicSigner{
		ethPrivKey: ethPrivKey,
		ethAddress: crypto.PubkeyToAddress(*publicKeyECDSA),
	}
}

// Destructor Function
func (s *MnemonicSigner) Destroy() {
	// nothing to do
}

// Method Implementations
func (s *MnemonicSigner) EthSign(data []byte) ([]byte, error) {
	digest := data
	if len(digest) != 32 {
		digest = crypto.Keccak256(data)
	}
	hash := common.BytesToHash(digest)
	signature, err := crypto.Sign(hash[:], s.ethPrivKey)
	if err != nil {
		return nil, err
	}

	if signature[64] == 0 || signature[64] == 1 {
		signature[64] += 27
	}

	return signature, nil
}

func (s *MnemonicSigner) EthAddress() common.Address {
	return s.ethAddress
}
