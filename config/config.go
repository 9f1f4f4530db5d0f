// Package config handles client configuration.
//
// A Session is built once at startup from flags, environment
// variables, and an optional .env file, and is immutable afterwards.
// The only derived value is the default RPC endpoint, a deterministic
// function of the selected network.
package config

import (
	"fmt"
	"net/url"
)

// Network identifies which bitcoin network the wallet service anchors
// spaces in.
type Network string

const (
	Mainnet  Network = "mainnet"
	Testnet4 Network = "testnet4"
	Signet   Network = "signet"
	Regtest  Network = "regtest"
)

// ParseNetwork converts a user-supplied chain name to a Network.
// "testnet" is accepted as an alias for testnet4.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "mainnet", "":
		return Mainnet, nil
	case "testnet", "testnet4":
		return Testnet4, nil
	case "signet":
		return Signet, nil
	case "regtest":
		return Regtest, nil
	default:
		return "", fmt.Errorf("unknown chain %q (expected mainnet, testnet4, signet, or regtest)", s)
	}
}

// String returns the canonical network name.
func (n Network) String() string {
	return string(n)
}

// DefaultRPCPort returns the wallet service port for a network.
func DefaultRPCPort(n Network) uint16 {
	switch n {
	case Testnet4:
		return 7224
	case Signet:
		return 7221
	case Regtest:
		return 7218
	default:
		return 7225
	}
}

// DefaultRPCURL returns the default local endpoint for a network.
func DefaultRPCURL(n Network) string {
	return fmt.Sprintf("http://127.0.0.1:%d", DefaultRPCPort(n))
}

// ValidateRPCURL checks that an endpoint override is a usable HTTP URL.
func ValidateRPCURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid rpc url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid rpc url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid rpc url %q: missing host", raw)
	}
	return nil
}
