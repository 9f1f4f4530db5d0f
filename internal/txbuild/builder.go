// Package txbuild composes wallet operations into a single batched
// transaction-construction request and submits it. All local
// validation happens here, before any network call; everything past
// Submit is owned by the remote service.
package txbuild

import (
	"encoding/json"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/spacedlabs/space-cli/internal/report"
	"github.com/spacedlabs/space-cli/internal/rpc"
	"github.com/spacedlabs/space-cli/internal/rpcclient"
)

// Builder submits transaction-construction requests for one wallet.
// Dust, force, and skip-check defaults come from the session and apply
// to every submission unless a command overrides them.
type Builder struct {
	client *rpcclient.Client
	wallet string

	dust        *btcutil.Amount
	force       bool
	skipTxCheck bool
}

// Options carries the session-level shaping defaults.
type Options struct {
	Dust        *btcutil.Amount
	Force       bool
	SkipTxCheck bool
}

// New creates a builder for the named wallet.
func New(client *rpcclient.Client, wallet string, opts Options) *Builder {
	return &Builder{
		client:      client,
		wallet:      wallet,
		dust:        opts.Dust,
		force:       opts.Force,
		skipTxCheck: opts.SkipTxCheck,
	}
}

// Submit composes at most one operation plus an optional bidout
// pre-creation count into a single request and issues exactly one
// outbound call. Both absent is a caller error caught locally: there
// is nothing to submit.
func (b *Builder) Submit(req *rpc.WalletRequest, bidouts *uint8, feeRate *uint64, confirmedOnly bool) (json.RawMessage, error) {
	if req == nil && bidouts == nil {
		return nil, report.LocalValidationf("nothing to submit: no operation and no bidout count")
	}
	if feeRate != nil && *feeRate == 0 {
		return nil, report.LocalValidationf("fee rate must be greater than zero")
	}

	requests := []rpc.WalletRequest{}
	if req != nil {
		if err := req.Validate(); err != nil {
			return nil, report.LocalValidationf("invalid %s request: %v", req.Kind(), err)
		}
		requests = append(requests, *req)
	}

	return b.client.WalletSendRequest(b.wallet, rpc.TxBuilder{
		Bidouts:       bidouts,
		Requests:      requests,
		FeeRate:       feeRate,
		Dust:          b.dust,
		Force:         b.force,
		ConfirmedOnly: confirmedOnly,
		SkipTxCheck:   b.skipTxCheck,
	})
}

// ParseFeeRate parses a sat/vB fee rate argument. Empty means absent;
// zero or unparsable values fail locally before any transmission.
func ParseFeeRate(s string) (*uint64, error) {
	if s == "" {
		return nil, nil
	}
	rate, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, report.LocalValidationf("invalid fee rate %q: must be a positive integer in sat/vB", s)
	}
	if rate == 0 {
		return nil, report.LocalValidationf("fee rate must be greater than zero")
	}
	return &rate, nil
}
