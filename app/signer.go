package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Samuel1505/TrustBridge-sub000/common"
)

// CreateOperatorSigner builds the signer that pays gas for token calls.
// A mnemonic wins over a raw private key, which wins over a KMS key.
func CreateOperatorSigner() (common.Signer, error) {
	config := Config.Ethereum

	var signer common.Signer
	var err error
	switch {
	case config.Mnemonic != "":
		signer, err = common.NewMnemonicSigner(config.Mnemonic)
	case config.PrivateKey != "":
		signer, err = common.NewPrivateKeySigner(config.PrivateKey)
	case config.GcpKmsKeyName != "":
		signer, err = common.NewGcpKmsSigner(config.GcpKmsKeyName)
	default:
		return nil, fmt.Errorf("mnemonic, private key and gcp kms key name are all empty")
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing operator signer: %w", err)
	}

	log.Debug("[SIGNER] Operator address: ", signer.EthAddress().Hex())
	return signer, nil
}
