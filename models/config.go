package models

type Config struct {
	GoogleSecretManager GoogleSecretManagerConfig `yaml:"google_secret_manager" json:"google_secret_manager"`
	HealthCheck         HealthCheckConfig         `yaml:"health_check" json:"health_check"`
	Logger              LoggerConfig              `yaml:"logger" json:"logger"`
	MongoDB             MongoConfig               `yaml:"mongodb" json:"mongo_db"`
	Ethereum            EthereumConfig            `yaml:"ethereum" json:"ethereum"`
	Registry            RegistryConfig            `yaml:"registry" json:"registry"`
	Indexer             ServiceConfig             `yaml:"indexer" json:"indexer"`
	API                 APIConfig                 `yaml:"api" json:"api"`
}

type GoogleSecretManagerConfig struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	ProjectID          string `yaml:"project_id" json:"project_id"`
	MongoSecretName    string `yaml:"mongo_secret_name" json:"mongo_secret_name"`
	OperatorSecretName string `yaml:"operator_secret_name" json:"operator_secret_name"`
}

type HealthCheckConfig struct {
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

// EthereumConfig describes the chain hosting the donation token. An empty
// RPCURL runs the service against an in-process token.
type EthereumConfig struct {
	RPCURL           string `yaml:"rpc_url" json:"rpcurl"`
	RPCTimeoutMillis int64  `yaml:"rpc_timeout_ms" json:"rpc_timeout_ms"`
	ChainID          string `yaml:"chain_id" json:"chain_id"`
	TokenAddress     string `yaml:"token_address" json:"token_address"`
	Mnemonic         string `yaml:"mnemonic" json:"mnemonic"`
	PrivateKey       string `yaml:"private_key" json:"private_key"`
	GcpKmsKeyName    string `yaml:"gcp_kms_key_name" json:"gcp_kms_key_name"`
}

// RegistryConfig seeds the admin-controlled parameters at startup. After
// that they only change through admin operations.
type RegistryConfig struct {
	Admin           string `yaml:"admin" json:"admin"`
	FeeCollector    string `yaml:"fee_collector" json:"fee_collector"`
	TrustedVerifier string `yaml:"trusted_verifier" json:"trusted_verifier"`
	RegistrationFee string `yaml:"registration_fee" json:"registration_fee"`
	StagingMode     bool   `yaml:"staging_mode" json:"staging_mode"`
}

type ServiceConfig struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type APIConfig struct {
	Enabled             bool   `yaml:"enabled" json:"enabled"`
	Address             string `yaml:"address" json:"address"`
	SignatureWindowSecs int64  `yaml:"signature_window_secs" json:"signature_window_secs"`
}
