package rpcclient

import (
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/spacedlabs/space-cli/internal/rpc"
)

// Typed wrappers around Call, one per RPC method. Results the client
// does not interpret are returned as raw JSON for display.

// GetServerInfo returns chain and sync state of the service.
func (c *Client) GetServerInfo() (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodGetServerInfo, nil, &out)
	return out, err
}

// GetSpace looks a space record up by the hash of its encoded name.
func (c *Client) GetSpace(spaceHash string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodGetSpace, rpc.SpaceHashParam{SpaceHash: spaceHash}, &out)
	return out, err
}

// GetSpaceOut looks a protocol-relevant output up by coordinate.
func (c *Client) GetSpaceOut(outpoint wire.OutPoint) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodGetSpaceOut, rpc.SpaceOutParam{Outpoint: rpc.NewOutPoint(outpoint)}, &out)
	return out, err
}

// GetRollout returns the estimated rollout batch for the target
// interval.
func (c *Client) GetRollout(target int) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodGetRollout, rpc.TargetParam{Target: target}, &out)
	return out, err
}

// EstimateBid returns the minimum bid in satoshis for a rollout within
// the target blocks.
func (c *Client) EstimateBid(target int) (uint64, error) {
	var out uint64
	err := c.Call(rpc.MethodEstimateBid, rpc.TargetParam{Target: target}, &out)
	return out, err
}

// WalletCreate generates a new wallet on the service.
func (c *Client) WalletCreate(wallet string) error {
	return c.Call(rpc.MethodWalletCreate, rpc.WalletParam{Wallet: wallet}, nil)
}

// WalletLoad loads an existing wallet on the service.
func (c *Client) WalletLoad(wallet string) error {
	return c.Call(rpc.MethodWalletLoad, rpc.WalletParam{Wallet: wallet}, nil)
}

// WalletImport passes an opaque wallet export document through to the
// service.
func (c *Client) WalletImport(doc json.RawMessage) error {
	return c.Call(rpc.MethodWalletImport, rpc.ImportParam{Wallet: doc}, nil)
}

// WalletExport returns the opaque export document for a wallet.
func (c *Client) WalletExport(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletExport, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletGetInfo returns wallet state as reported by the service.
func (c *Client) WalletGetInfo(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletGetInfo, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletGetBalance returns the wallet balance breakdown.
func (c *Client) WalletGetBalance(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletGetBalance, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletSendRequest submits a composed transaction-construction request
// as a single atomic call.
func (c *Client) WalletSendRequest(wallet string, builder rpc.TxBuilder) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletSendRequest, rpc.SendRequestParam{
		Wallet:  wallet,
		Request: builder,
	}, &out)
	return out, err
}

// WalletListTransactions pages through recent wallet transactions.
func (c *Client) WalletListTransactions(wallet string, count, skip int) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletListTransactions, rpc.ListTransactionsParam{
		Wallet: wallet,
		Count:  count,
		Skip:   skip,
	}, &out)
	return out, err
}

// WalletListSpaces lists spaces won or currently winning.
func (c *Client) WalletListSpaces(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletListSpaces, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletListBidOuts lists unspent auction outputs.
func (c *Client) WalletListBidOuts(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletListBidouts, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletListUnspent lists unspent coins owned by the wallet.
func (c *Client) WalletListUnspent(wallet string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletListUnspent, rpc.WalletParam{Wallet: wallet}, &out)
	return out, err
}

// WalletGetNewAddress derives a receive address of the given kind.
func (c *Client) WalletGetNewAddress(wallet string, kind rpc.AddressKind) (string, error) {
	var out string
	err := c.Call(rpc.MethodWalletGetNewAddress, rpc.NewAddressParam{
		Wallet: wallet,
		Kind:   kind,
	}, &out)
	return out, err
}

// WalletBumpFee replaces the fee on a transaction created by the
// wallet.
func (c *Client) WalletBumpFee(wallet string, txid chainhash.Hash, feeRate uint64, skipTxCheck bool) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletBumpFee, rpc.BumpFeeParam{
		Wallet:      wallet,
		Txid:        txid.String(),
		FeeRate:     feeRate,
		SkipTxCheck: skipTxCheck,
	}, &out)
	return out, err
}

// WalletForceSpend spends an output owned by the wallet regardless of
// protocol state. Testing facility.
func (c *Client) WalletForceSpend(wallet string, outpoint wire.OutPoint, feeRate uint64) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.Call(rpc.MethodWalletForceSpend, rpc.ForceSpendParam{
		Wallet:   wallet,
		Outpoint: rpc.NewOutPoint(outpoint),
		FeeRate:  feeRate,
	}, &out)
	return out, err
}
