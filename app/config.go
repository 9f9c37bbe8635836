package app

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/Samuel1505/TrustBridge-sub000/models"
)

var (
	Config models.Config
)

func InitConfig(configFile string, envFile string) {
	log.Debug("[CONFIG] Initializing config")
	readConfigFromConfigFile(configFile)
	readConfigFromENV(envFile)
	readKeysFromGSM()
	validateConfig()
	log.Info("[CONFIG] Config initialized")
}

func readConfigFromConfigFile(configFile string) bool {
	if configFile == "" {
		log.Debug("[CONFIG] No config file provided")
		return false
	}

	log.Debug("[CONFIG] Reading config file")
	yamlFile, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &Config)
	if err != nil {
		log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
	}
	log.Debug("[CONFIG] Config loaded from file")
	return true
}

func validateConfig() {
	log.Debug("[CONFIG] Validating config")

	// mongodb
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}
	if Config.MongoDB.TimeoutMillis == 0 {
		log.Fatal("[CONFIG] MongoDB.TimeoutMillis is required")
	}

	// registry
	if !common.IsHexAddress(Config.Registry.Admin) {
		log.Fatal("[CONFIG] Registry.Admin is invalid")
	}
	if !common.IsHexAddress(Config.Registry.FeeCollector) {
		log.Fatal("[CONFIG] Registry.FeeCollector is invalid")
	}
	if !Config.Registry.StagingMode && !common.IsHexAddress(Config.Registry.TrustedVerifier) {
		log.Fatal("[CONFIG] Registry.TrustedVerifier is required unless staging mode is enabled")
	}
	if Config.Registry.RegistrationFee != "" {
		fee, ok := new(big.Int).SetString(Config.Registry.RegistrationFee, 10)
		if !ok || fee.Sign() < 0 || fee.BitLen() > 256 {
			log.Fatal("[CONFIG] Registry.RegistrationFee is invalid")
		}
	}

	// ethereum
	if Config.Ethereum.RPCURL != "" {
		if Config.Ethereum.ChainID == "" {
			log.Fatal("[CONFIG] Ethereum.ChainID is required")
		}
		if Config.Ethereum.RPCTimeoutMillis == 0 {
			log.Fatal("[CONFIG] Ethereum.RPCTimeoutMillis is required")
		}
		if !common.IsHexAddress(Config.Ethereum.TokenAddress) {
			log.Fatal("[CONFIG] Ethereum.TokenAddress is invalid")
		}
		if Config.Ethereum.Mnemonic == "" && Config.Ethereum.PrivateKey == "" && Config.Ethereum.GcpKmsKeyName == "" {
			log.Fatal("[CONFIG] Ethereum.Mnemonic, Ethereum.PrivateKey or Ethereum.GcpKmsKeyName is required")
		}
	} else if !Config.Registry.StagingMode {
		log.Fatal("[CONFIG] Ethereum.RPCURL is required unless staging mode is enabled")
	}

	// services
	// without the indexer nothing is persisted, so only a chainless staging
	// node may run without it
	if !Config.Indexer.Enabled && (Config.Ethereum.RPCURL != "" || !Config.Registry.StagingMode) {
		log.Fatal("[CONFIG] Indexer.Enabled is required unless running staging mode without a chain")
	}
	if Config.Indexer.Enabled && Config.Indexer.IntervalMillis == 0 {
		log.Fatal("[CONFIG] Indexer.IntervalMillis is required")
	}
	if Config.HealthCheck.IntervalMillis == 0 {
		log.Fatal("[CONFIG] HealthCheck.IntervalMillis is required")
	}
	if Config.API.Enabled {
		if Config.API.Address == "" {
			log.Fatal("[CONFIG] API.Address is required")
		}
		if Config.API.SignatureWindowSecs == 0 {
			log.Fatal("[CONFIG] API.SignatureWindowSecs is required")
		}
	}

	log.Debug("[CONFIG] Config validated")
}
