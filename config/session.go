package config

import (
	"fmt"
	"os"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/joho/godotenv"
)

// Environment variables recognized at startup. Flags take precedence.
const (
	EnvChain  = "SPACED_CHAIN"
	EnvRPCURL = "SPACED_RPC_URL"
	EnvWallet = "SPACED_WALLET"
	EnvLog    = "SPACED_LOG"
)

// DefaultWallet is the wallet the service loads when none is named.
const DefaultWallet = "default"

// Session is the process-scoped client configuration, read by every
// dispatch.
type Session struct {
	Network Network
	RPCURL  string
	Wallet  string

	// Transaction shaping defaults, overridable per call.
	Dust        *btcutil.Amount
	Force       bool
	SkipTxCheck bool

	LogLevel string
}

// SessionFromEnv builds the session defaults from the environment. An
// optional .env file in the working directory is loaded first; a
// missing file is not an error.
func SessionFromEnv() Session {
	_ = godotenv.Load()

	s := Session{
		Network:  Mainnet,
		Wallet:   DefaultWallet,
		LogLevel: os.Getenv(EnvLog),
	}
	if chain := os.Getenv(EnvChain); chain != "" {
		if n, err := ParseNetwork(chain); err == nil {
			s.Network = n
		}
	}
	if wallet := os.Getenv(EnvWallet); wallet != "" {
		s.Wallet = wallet
	}
	s.RPCURL = os.Getenv(EnvRPCURL)
	return s
}

// Finalize fills derived values and checks the session is usable.
// Must be called once, before the first dispatch.
func (s *Session) Finalize() error {
	if s.Wallet == "" {
		return fmt.Errorf("wallet name cannot be empty")
	}
	if s.RPCURL == "" {
		s.RPCURL = DefaultRPCURL(s.Network)
	}
	return ValidateRPCURL(s.RPCURL)
}
