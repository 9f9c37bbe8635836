package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Samuel1505/TrustBridge-sub000/common"
)

// Prints the address behind a KMS key, the address owners must approve as
// spender, and checks that a personal signature recovers to it.
func main() {
	GoogleKeyName := os.Getenv("GCP_KMS_KEY_NAME")

	fmt.Println("Google KMS Key Name: ", GoogleKeyName)
	if GoogleKeyName == "" {
		log.Fatalf("GCP KMS Key Name not set")
	}

	signer, err := common.NewGcpKmsSigner(GoogleKeyName)
	if err != nil {
		log.Fatalf("failed to create GCP KMS signer: %v", err)
	}
	defer signer.Destroy()

	fmt.Println("Eth Address: ", signer.EthAddress().Hex())

	message := []byte("trustbridge operator check")
	signature, err := common.SignPersonal(signer, message)
	if err != nil {
		log.Fatalf("failed to sign message: %v", err)
	}
	fmt.Println("Personal Signature: ", hexutil.Encode(signature))

	recovered, err := common.RecoverPersonalSigner(message, signature)
	if err != nil {
		log.Fatalf("failed to recover signer: %v", err)
	}
	if recovered != signer.EthAddress() {
		log.Fatalf("recovered %s, expected %s", recovered.Hex(), signer.EthAddress().Hex())
	}
	fmt.Println("Signature recovers to the key address")
}
