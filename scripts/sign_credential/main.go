package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Samuel1505/TrustBridge-sub000/common"
)

// Issues a credential attestation the registry accepts: the proof hash is
// keccak256 of the credential payload and the signature is the issuer's
// personal signature over it.
func main() {
	var key string
	var payload string
	flag.StringVar(&key, "key", "", "issuer private key (hex) or mnemonic")
	flag.StringVar(&payload, "payload", "", "credential payload to attest")
	flag.Parse()

	if key == "" {
		fmt.Printf("key is required\n")
		os.Exit(1)
	}
	if payload == "" {
		fmt.Printf("payload is required\n")
		os.Exit(1)
	}

	var signer common.Signer
	var err error
	if strings.Contains(key, " ") {
		signer, err = common.NewMnemonicSigner(key)
	} else {
		signer, err = common.NewPrivateKeySigner(strings.TrimPrefix(key, "0x"))
	}
	if err != nil {
		fmt.Printf("error loading issuer key: %v\n", err)
		os.Exit(1)
	}
	defer signer.Destroy()

	proofHash := crypto.Keccak256Hash([]byte(payload))
	signature, err := common.SignPersonal(signer, proofHash[:])
	if err != nil {
		fmt.Printf("error signing proof: %v\n", err)
		os.Exit(1)
	}

	if !(common.EthVerifier{}).Verify(proofHash, signature, signer.EthAddress()) {
		fmt.Printf("signature does not verify against issuer\n")
		os.Exit(1)
	}

	fmt.Printf("issuer: %s\n", signer.EthAddress().Hex())
	fmt.Printf("proof_hash: %s\n", proofHash.Hex())
	fmt.Printf("signature: %s\n", hexutil.Encode(signature))
}
