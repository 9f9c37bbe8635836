package common

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// Interface Definition
type Signer interface {
	EthSign(data []byte) ([]byte, error)
	EthAddress() common.Address
	Destroy()
}

var ErrSignerMismatch = errors.New("signer not authorized for address")

func EthereumPrivateKeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	wallet, err := hdwallet.NewFromMnemonic(mnemonic, DefaultBIP39Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	path, err := hdwallet.ParseDerivationPath(DefaultETHHDPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse derivation path: %w", err)
	}

	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	return wallet.PrivateKey(account)
}

// SignPersonal signs the EIP-191 personal message digest of message.
func SignPersonal(signer Signer, message []byte) ([]byte, error) {
	return signer.EthSign(accounts.TextHash(message))
}

// NewTransactor builds transact options whose transactions are signed by
// signer for the given chain.
func NewTransactor(signer Signer, chainID *big.Int) *bind.TransactOpts {
	txSigner := types.LatestSignerForChainID(chainID)
	from := signer.EthAddress()

	return &bind.TransactOpts{
		From: from,
		Signer: func(address common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if address != from {
				return nil, ErrSignerMismatch
			}
			hash := txSigner.Hash(tx)
			signature, err := signer.EthSign(hash[:])
			if err != nil {
				return nil, err
			}
			sig := make([]byte, len(signature))
			copy(sig, signature)
			if sig[crypto.RecoveryIDOffset] >= 27 {
				sig[crypto.RecoveryIDOffset] -= 27
			}
			return tx.WithSignature(txSigner, sig)
		},
	}
}
