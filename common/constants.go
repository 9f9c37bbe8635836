package common

// Operator and issuer keys derive from the first account of the standard
// Ethereum path with no passphrase.
const (
	DefaultBIP39Passphrase = ""
	DefaultETHHDPath       = "m/44'/60'/0'/0/0"
)
