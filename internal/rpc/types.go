package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// RPC method names, 1:1 with the commands and queries the service
// exposes.
const (
	MethodGetServerInfo          = "getserverinfo"
	MethodGetSpace               = "getspace"
	MethodGetSpaceOut            = "getspaceout"
	MethodGetRollout             = "getrollout"
	MethodEstimateBid            = "estimatebid"
	MethodWalletCreate           = "walletcreate"
	MethodWalletLoad             = "walletload"
	MethodWalletImport           = "walletimport"
	MethodWalletExport           = "walletexport"
	MethodWalletGetInfo          = "walletgetinfo"
	MethodWalletGetBalance       = "walletgetbalance"
	MethodWalletSendRequest      = "walletsendrequest"
	MethodWalletListTransactions = "walletlisttransactions"
	MethodWalletListSpaces       = "walletlistspaces"
	MethodWalletListBidouts      = "walletlistbidouts"
	MethodWalletListUnspent      = "walletlistunspent"
	MethodWalletGetNewAddress    = "walletgetnewaddress"
	MethodWalletBumpFee          = "walletbumpfee"
	MethodWalletForceSpend       = "walletforcespend"
)

// ScriptBytes is an opaque space script payload, hex-encoded on the wire.
type ScriptBytes []byte

// MarshalJSON encodes the script as a hex string.
func (s ScriptBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(s))
}

// UnmarshalJSON decodes the script from a hex string.
func (s *ScriptBytes) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	raw, err := hex.DecodeString(str)
	if err != nil {
		return fmt.Errorf("decode script hex: %w", err)
	}
	*s = raw
	return nil
}

// AddressKind selects which kind of receive address the wallet derives.
type AddressKind string

const (
	// AddressCoin is compatible with most bitcoin wallets.
	AddressCoin AddressKind = "coin"
	// AddressSpace can receive spaces as well as coins.
	AddressSpace AddressKind = "space"
)

// TxBuilder is the transaction-construction payload submitted with
// walletsendrequest. All shaping parameters are forwarded verbatim;
// the service owns coin selection, signing, and broadcast.
type TxBuilder struct {
	// Bidouts pre-creates that many bid output pairs.
	Bidouts *uint8 `json:"bidouts,omitempty"`
	// Requests holds at most one operation. Empty is valid only when
	// Bidouts is set.
	Requests []WalletRequest `json:"requests"`
	// FeeRate in sat/vB. Absent lets the service estimate.
	FeeRate *uint64 `json:"fee_rate,omitempty"`
	// Dust overrides the bid output dust amount in satoshis.
	Dust *btcutil.Amount `json:"dust,omitempty"`
	// Force submits even if the transaction would be invalid.
	Force bool `json:"force"`
	// ConfirmedOnly restricts coin selection to confirmed outputs.
	ConfirmedOnly bool `json:"confirmed_only"`
	// SkipTxCheck bypasses the service-side transaction checker.
	SkipTxCheck bool `json:"skip_tx_check"`
}

// OutPoint references a transaction output in txid:vout form.
type OutPoint struct {
	Txid string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// NewOutPoint converts a wire outpoint to its wire-format param.
func NewOutPoint(op wire.OutPoint) OutPoint {
	return OutPoint{Txid: op.Hash.String(), Vout: op.Index}
}

// ParseOutPoint parses the canonical txid:vout string form.
func ParseOutPoint(s string) (wire.OutPoint, error) {
	idx := strings.LastIndexByte(s, ':')
	if idx < 0 {
		return wire.OutPoint{}, fmt.Errorf("outpoint %q missing ':' separator", s)
	}
	hash, err := chainhash.NewHashFromStr(s[:idx])
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint txid: %w", err)
	}
	vout, err := strconv.ParseUint(s[idx+1:], 10, 32)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("outpoint index: %w", err)
	}
	return *wire.NewOutPoint(hash, uint32(vout)), nil
}

// ── Param types ─────────────────────────────────────────────────────────

// WalletParam is used by methods that only need a wallet name.
type WalletParam struct {
	Wallet string `json:"wallet"`
}

// SpaceHashParam looks a space up by the hash of its encoded name.
type SpaceHashParam struct {
	SpaceHash string `json:"space_hash"`
}

// SpaceOutParam looks a spaceout up by coordinate.
type SpaceOutParam struct {
	Outpoint OutPoint `json:"outpoint"`
}

// TargetParam is used by getrollout and estimatebid.
type TargetParam struct {
	Target int `json:"target"`
}

// SendRequestParam submits a transaction-construction request for the
// named wallet.
type SendRequestParam struct {
	Wallet  string    `json:"wallet"`
	Request TxBuilder `json:"request"`
}

// ImportParam carries the opaque wallet export document.
type ImportParam struct {
	Wallet json.RawMessage `json:"wallet"`
}

// ListTransactionsParam pages through wallet transactions.
type ListTransactionsParam struct {
	Wallet string `json:"wallet"`
	Count  int    `json:"count"`
	Skip   int    `json:"skip"`
}

// NewAddressParam derives a receive address of the given kind.
type NewAddressParam struct {
	Wallet string      `json:"wallet"`
	Kind   AddressKind `json:"kind"`
}

// BumpFeeParam replaces the fee on a wallet transaction.
type BumpFeeParam struct {
	Wallet      string `json:"wallet"`
	Txid        string `json:"txid"`
	FeeRate     uint64 `json:"fee_rate"`
	SkipTxCheck bool   `json:"skip_tx_check"`
}

// ForceSpendParam spends an output owned by the wallet regardless of
// protocol state. Testing facility.
type ForceSpendParam struct {
	Wallet   string   `json:"wallet"`
	Outpoint OutPoint `json:"outpoint"`
	FeeRate  uint64   `json:"fee_rate"`
}
