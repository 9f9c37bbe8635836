package main

import (
	"bytes"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Samuel1505/TrustBridge-sub000/api"
	"github.com/Samuel1505/TrustBridge-sub000/common"
)

// Prints the auth headers for a signed API call, e.g.
//
//	sign_request -key $KEY -method POST -path /donations -body '{"ngo":"0x..","amount":"10"}'
func main() {
	var key, method, path, body string
	flag.StringVar(&key, "key", "", "caller private key (hex)")
	flag.StringVar(&method, "method", http.MethodPost, "http method")
	flag.StringVar(&path, "path", "", "request path")
	flag.StringVar(&body, "body", "", "request body")
	flag.Parse()

	if key == "" || path == "" {
		fmt.Printf("key and path are required\n")
		os.Exit(1)
	}

	signer, err := common.NewPrivateKeySigner(strings.TrimPrefix(key, "0x"))
	if err != nil {
		fmt.Printf("error loading key: %v\n", err)
		os.Exit(1)
	}
	defer signer.Destroy()

	req, err := http.NewRequest(strings.ToUpper(method), path, bytes.NewReader([]byte(body)))
	if err != nil {
		fmt.Printf("error building request: %v\n", err)
		os.Exit(1)
	}
	if err := api.SignRequest(req, []byte(body), signer, time.Now()); err != nil {
		fmt.Printf("error signing request: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("caller: %s\n", signer.EthAddress().Hex())
	fmt.Printf("%s: %s\n", api.HeaderTimestamp, req.Header.Get(api.HeaderTimestamp))
	fmt.Printf("%s: %s\n", api.HeaderSignature, req.Header.Get(api.HeaderSignature))
}
