package common

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

const (
	testMnemonic   = "test test test test test test test test test test test junk"
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNewMnemonicSigner(t *testing.T) {
	signer, err := NewMnemonicSigner(testMnemonic)
	assert.NoError(t, err)
	assert.NotNil(t, signer)

	assert.NotNil(t, signer.ethPrivKey)
	assert.Equal(t, common.HexToAddress(testAddress), signer.EthAddress())
}

func TestNewMnemonicSigner_InvalidMnemonic(t *testing.T) {
	signer, err := NewMnemonicSigner("not a valid mnemonic phrase")
	assert.Error(t, err)
	assert.Nil(t, signer)
}

func TestNewPrivateKeySigner(t *testing.T) {
	signer, err := NewPrivateKeySigner(testPrivateKey)
	assert.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), signer.EthAddress())

	_, err = NewPrivateKeySigner("zz")
	assert.Error(t, err)
}

func TestMnemonicSigner_EthSign(t *testing.T) {
	signer, err := NewMnemonicSigner(testMnemonic)
	assert.NoError(t, err)

	data := []byte("test data")
	sig, err := signer.EthSign(data)
	assert.NoError(t, err)
	assert.NotNil(t, sig)

	if sig[64] != 27 && sig[64] != 28 {
		t.Fatalf("invalid Ethereum signature")
	}

	sig[64] -= 27

	hash := crypto.Keccak256(data)
	pubKey, err := crypto.SigToPub(hash, sig)
	assert.NoError(t, err)

	recoveredAddr := crypto.PubkeyToAddress(*pubKey)
	assert.Equal(t, signer.EthAddress(), recoveredAddr)
}

func TestMnemonicSigner_EthSignDigest(t *testing.T) {
	signer, err := NewMnemonicSigner(testMnemonic)
	assert.NoError(t, err)

	digest := crypto.Keccak256([]byte("already hashed"))
	sig, err := signer.EthSign(digest)
	assert.NoError(t, err)

	sig[64] -= 27
	pubKey, err := crypto.SigToPub(digest, sig)
	assert.NoError(t, err)
	assert.Equal(t, signer.EthAddress(), crypto.PubkeyToAddress(*pubKey))
}

func TestMnemonicSigner_Destroy(t *testing.T) {
	signer, err := NewMnemonicSigner(testMnemonic)
	assert.NoError(t, err)

	signer.Destroy()
	// Nothing to assert here since the Destroy method does nothing
}
