package app

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"
)

type SecretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

var NewSecretManagerClient = func(ctx context.Context) (SecretManagerClient, error) {
	return secretmanager.NewClient(ctx)
}

func accessSecretVersion(client SecretManagerClient, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", Config.GoogleSecretManager.ProjectID, name),
	}

	result, err := client.AccessSecretVersion(context.Background(), req)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}

// readKeysFromGSM fills the mongo uri and the operator key from Secret
// Manager when they are not already configured. An operator secret made of
// words is taken as a mnemonic, anything else as a hex private key.
func readKeysFromGSM() {
	if !Config.GoogleSecretManager.Enabled {
		log.Debug("[GSM] Google Secret Manager is disabled")
		return
	}

	if Config.GoogleSecretManager.ProjectID == "" {
		log.Fatal("[GSM] ProjectID is empty")
	}

	ctx := context.Background()
	client, err := NewSecretManagerClient(ctx)
	if err != nil {
		log.Fatalf("[GSM] Failed to create secretmanager client: %v", err)
	}
	defer client.Close()

	if Config.MongoDB.URI == "" && Config.GoogleSecretManager.MongoSecretName != "" {
		log.Debug("[GSM] Reading mongodb uri")
		Config.MongoDB.URI, err = accessSecretVersion(client, Config.GoogleSecretManager.MongoSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access mongodb uri: %v", err)
		}
		log.Info("[GSM] Successfully read mongodb uri")
	}

	operatorKeyMissing := Config.Ethereum.Mnemonic == "" && Config.Ethereum.PrivateKey == "" && Config.Ethereum.GcpKmsKeyName == ""
	if operatorKeyMissing && Config.GoogleSecretManager.OperatorSecretName != "" {
		log.Debug("[GSM] Reading operator key")
		secret, err := accessSecretVersion(client, Config.GoogleSecretManager.OperatorSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access operator key: %v", err)
		}
		if strings.Contains(secret, " ") {
			Config.Ethereum.Mnemonic = secret
		} else {
			Config.Ethereum.PrivateKey = strings.TrimPrefix(secret, "0x")
		}
		log.Info("[GSM] Successfully read operator key")
	}
}
