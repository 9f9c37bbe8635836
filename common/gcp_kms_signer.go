package common

import (
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	kms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	dcrecSecp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	gax "github.com/googleapis/gax-go/v2"
)

type GCPKeyManagementClient interface {
	Close() error
	GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest, opts ...gax.CallOption) (*kmspb.PublicKey, error)
	AsymmetricSign(ctx context.Context, req *kmspb.AsymmetricSignRequest, opts ...gax.CallOption) (*kmspb.AsymmetricSignResponse, error)
	GetCryptoKeyVersion(ctx context.Context, req *kmspb.GetCryptoKeyVersionRequest, opts ...gax.CallOption) (*kmspb.CryptoKeyVersion, error)
}

// GcpKmsSigner signs with a secp256k1 key held in Cloud KMS. The private key
// never leaves KMS; the recovery id is found by trial recovery.
type GcpKmsSigner struct {
	client     GCPKeyManagementClient
	keyName    string
	ethAddress common.Address
	timeout    time.Duration
}

var _ Signer = &GcpKmsSigner{}

const defaultKmsTimeout = 10 * time.Second

var NewGCPKeyManagementClient = func(ctx context.Context) (GCPKeyManagementClient, error) {
	return kms.NewKeyManagementClient(ctx)
}

var ecPublicKeyOID = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}

func NewGcpKmsSigner(keyName string) (*GcpKmsSigner, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultKmsTimeout)
	defer cancel()

	client, err := NewGCPKeyManagementClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create KMS client: %w", err)
	}

	version, err := client.GetCryptoKeyVersion(ctx, &kmspb.GetCryptoKeyVersionRequest{Name: keyName})
	if err != nil {
		return nil, fmt.Errorf("failed to get key version details: %w", err)
	}
	if version.Algorithm != kmspb.CryptoKeyVersion_EC_SIGN_SECP256K1_SHA256 {
		return nil, fmt.Errorf("key algorithm %s is not EC_SIGN_SECP256K1_SHA256", version.Algorithm)
	}

	pubKeyBytes, err := kmsPublicKeyBytes(ctx, client, keyName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve public key: %w", err)
	}

	if _, err := dcrecSecp256k1.ParsePubKey(pubKeyBytes); err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ethPublicKey, err := crypto.UnmarshalPubkey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal public key: %w", err)
	}

	ethAddress := addressFromUncompressed(pubKeyBytes)
	if ethAddress != crypto.PubkeyToAddress(*ethPublicKey) {
		return nil, fmt.Errorf("ethereum address mismatch")
	}

	return &GcpKmsSigner{
		client:     client,
		keyName:    keyName,
		ethAddress: ethAddress,
		timeout:    defaultKmsTimeout,
	}, nil
}

func (s *GcpKmsSigner) Destroy() {
	s.client.Close()
}

func (s *GcpKmsSigner) EthAddress() common.Address {
	return s.ethAddress
}

func (s *GcpKmsSigner) EthSign(data []byte) ([]byte, error) {
	digest := data
	if len(digest) != 32 {
		digest = crypto.Keccak256(data)
	}
	hash := common.BytesToHash(digest)

	timeout := s.timeout
	if timeout == 0 {
		timeout = defaultKmsTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := s.client.AsymmetricSign(ctx, &kmspb.AsymmetricSignRequest{
		Name: s.keyName,
		Digest: &kmspb.Digest{
			Digest: &kmspb.Digest_Sha256{Sha256: hash[:]},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("asymmetric sign operation: %w", err)
	}

	r, sv, err := parseDERSignature(resp.Signature)
	if err != nil {
		return nil, err
	}

	return recoverableSignature(hash, r, sv, s.ethAddress)
}

func kmsPublicKeyBytes(ctx context.Context, client GCPKeyManagementClient, keyName string) ([]byte, error) {
	resp, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: keyName})
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	block, _ := pem.Decode([]byte(resp.Pem))
	if block == nil {
		return nil, fmt.Errorf("public key %q PEM empty", keyName)
	}

	var info struct {
		AlgID pkix.AlgorithmIdentifier
		Key   asn1.BitString
	}
	if _, err := asn1.Unmarshal(block.Bytes, &info); err != nil {
		return nil, fmt.Errorf("public key %q PEM block %q: %w", keyName, block.Type, err)
	}
	if !info.AlgID.Algorithm.Equal(ecPublicKeyOID) {
		return nil, fmt.Errorf("public key %q ASN.1 algorithm %s instead of %s", keyName, info.AlgID.Algorithm, ecPublicKeyOID)
	}

	return info.Key.Bytes, nil
}

func addressFromUncompressed(pubKey []byte) common.Address {
	digest := crypto.Keccak256(pubKey[1:])
	return common.BytesToAddress(digest[12:])
}

func parseDERSignature(der []byte) (*big.Int, *big.Int, error) {
	var params struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(der, &params); err != nil {
		return nil, nil, fmt.Errorf("asymmetric signature encoding: %w", err)
	}
	if params.R == nil || params.S == nil {
		return nil, nil, fmt.Errorf("asymmetric signature missing r or s")
	}

	rLen := (params.R.BitLen() + 7) / 8
	sLen := (params.S.BitLen() + 7) / 8
	if rLen == 0 || rLen > 32 || sLen == 0 || sLen > 32 {
		return nil, nil, fmt.Errorf("asymmetric signature with %d-byte r and %d-byte s denied on size", rLen, sLen)
	}
	return params.R, params.S, nil
}

// recoverableSignature turns (r, s) into a 65 byte [R || S || V] signature
// by trying both recovery ids against the expected address.
func recoverableSignature(hash common.Hash, r, s *big.Int, expected common.Address) ([]byte, error) {
	// KMS does not normalize s; chain and verifier accept low-s only
	curveN := crypto.S256().Params().N
	if s.Cmp(new(big.Int).Rsh(curveN, 1)) > 0 {
		s = new(big.Int).Sub(curveN, s)
	}

	// compact layout: 1 byte header, 32 byte r, 32 byte s
	var compact [65]byte
	r.FillBytes(compact[1:33])
	s.FillBytes(compact[33:65])

	var lastErr error
	for recoveryID := byte(0); recoveryID < 2; recoveryID++ {
		compact[0] = recoveryID + 27
		pubKey, _, err := btcecdsa.RecoverCompact(compact[:], hash[:])
		if err != nil {
			lastErr = err
			continue
		}
		if addressFromUncompressed(pubKey.SerializeUncompressed()) != expected {
			continue
		}

		sig := make([]byte, 65)
		copy(sig, compact[1:])
		sig[64] = recoveryID

		recovered, err := crypto.SigToPub(hash[:], sig)
		if err != nil {
			return nil, fmt.Errorf("failed to recover public key: %w", err)
		}
		if crypto.PubkeyToAddress(*recovered) != expected {
			return nil, fmt.Errorf("recovered address mismatch")
		}

		sig[64] += 27
		return sig, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("asymmetric signature address recovery failed: %w", lastErr)
	}
	return nil, fmt.Errorf("signature address mismatch")
}
