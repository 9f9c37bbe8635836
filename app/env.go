package app

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func envInt64(name string, target *int64) {
	if os.Getenv(name) == "" {
		return
	}
	value, err := strconv.ParseInt(os.Getenv(name), 10, 64)
	if err != nil {
		log.Warn("[ENV] Error parsing ", name, ": ", err.Error())
		return
	}
	*target = value
}

func envBool(name string, target *bool) {
	if os.Getenv(name) == "" {
		return
	}
	value, err := strconv.ParseBool(os.Getenv(name))
	if err != nil {
		log.Warn("[ENV] Error parsing ", name, ": ", err.Error())
		return
	}
	*target = value
}

func envString(name string, target *string) {
	if os.Getenv(name) != "" {
		*target = os.Getenv(name)
	}
}

func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	envString("MONGODB_URI", &Config.MongoDB.URI)
	envString("MONGODB_DATABASE", &Config.MongoDB.Database)
	envInt64("MONGODB_TIMEOUT_MS", &Config.MongoDB.TimeoutMillis)

	// ethereum
	envString("ETH_RPC_URL", &Config.Ethereum.RPCURL)
	envString("ETH_CHAIN_ID", &Config.Ethereum.ChainID)
	envInt64("ETH_RPC_TIMEOUT_MS", &Config.Ethereum.RPCTimeoutMillis)
	envString("ETH_TOKEN_ADDRESS", &Config.Ethereum.TokenAddress)
	envString("ETH_MNEMONIC", &Config.Ethereum.Mnemonic)
	envString("ETH_PRIVATE_KEY", &Config.Ethereum.PrivateKey)
	envString("ETH_GCP_KMS_KEY_NAME", &Config.Ethereum.GcpKmsKeyName)

	// registry
	envString("REGISTRY_ADMIN", &Config.Registry.Admin)
	envString("REGISTRY_FEE_COLLECTOR", &Config.Registry.FeeCollector)
	envString("REGISTRY_TRUSTED_VERIFIER", &Config.Registry.TrustedVerifier)
	envString("REGISTRY_REGISTRATION_FEE", &Config.Registry.RegistrationFee)
	envBool("REGISTRY_STAGING_MODE", &Config.Registry.StagingMode)

	// indexer
	envBool("INDEXER_ENABLED", &Config.Indexer.Enabled)
	envInt64("INDEXER_INTERVAL_MS", &Config.Indexer.IntervalMillis)

	// api
	envBool("API_ENABLED", &Config.API.Enabled)
	envString("API_ADDRESS", &Config.API.Address)
	envInt64("API_SIGNATURE_WINDOW_SECS", &Config.API.SignatureWindowSecs)

	// health check
	envInt64("HEALTH_CHECK_INTERVAL_MS", &Config.HealthCheck.IntervalMillis)

	// logging
	envString("LOG_LEVEL", &Config.Logger.Level)
	if Config.Logger.Level == "" {
		log.Warn("[ENV] Setting LogLevel to info")
		Config.Logger.Level = "info"
	}

	// google secret manager
	envBool("GOOGLE_SECRET_MANAGER_ENABLED", &Config.GoogleSecretManager.Enabled)
	envString("GOOGLE_PROJECT_ID", &Config.GoogleSecretManager.ProjectID)
	envString("GOOGLE_MONGO_SECRET_NAME", &Config.GoogleSecretManager.MongoSecretName)
	envString("GOOGLE_OPERATOR_SECRET_NAME", &Config.GoogleSecretManager.OperatorSecretName)
}
