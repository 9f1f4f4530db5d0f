// Package rpc defines the wire types exchanged with a spaced wallet
// service: the wallet operation vocabulary, the batched transaction
// builder payload, and the param shapes of every RPC method.
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/spacedlabs/space-cli/pkg/slabel"
)

// OpenParams opens an auction for a space.
type OpenParams struct {
	Name   string `json:"name"`
	Amount uint64 `json:"amount"`
}

// BidParams places a bid on a space in auction.
type BidParams struct {
	Name   string `json:"name"`
	Amount uint64 `json:"amount"`
}

// RegisterParams registers a won auction, optionally to a recipient.
type RegisterParams struct {
	Name string  `json:"name"`
	To   *string `json:"to,omitempty"`
}

// TransferParams transfers ownership of spaces to a space or address.
type TransferParams struct {
	Spaces []string `json:"spaces"`
	To     string   `json:"to"`
}

// SendCoinsParams sends the given amount of coins to a space or address.
type SendCoinsParams struct {
	Amount uint64 `json:"amount"`
	To     string `json:"to"`
}

// ExecuteParams applies a space script to the spaces in context.
type ExecuteParams struct {
	Context []string    `json:"context"`
	Script  ScriptBytes `json:"space_script"`
}

// WalletRequest is one operation in a transaction-construction request.
// Exactly one variant is set per instance; space names are normalized
// by the constructors and never re-normalized downstream.
type WalletRequest struct {
	Open      *OpenParams
	Bid       *BidParams
	Register  *RegisterParams
	Transfer  *TransferParams
	SendCoins *SendCoinsParams
	Execute   *ExecuteParams
}

// NewOpen builds an Open operation for the normalized space name.
func NewOpen(space string, amount uint64) WalletRequest {
	return WalletRequest{Open: &OpenParams{Name: slabel.Normalize(space), Amount: amount}}
}

// NewBid builds a Bid operation for the normalized space name.
func NewBid(space string, amount uint64) WalletRequest {
	return WalletRequest{Bid: &BidParams{Name: slabel.Normalize(space), Amount: amount}}
}

// NewRegister builds a Register operation. to is the optional recipient
// space name or address, passed through as given.
func NewRegister(space string, to *string) WalletRequest {
	return WalletRequest{Register: &RegisterParams{Name: slabel.Normalize(space), To: to}}
}

// NewTransfer builds a Transfer of the given spaces, each normalized.
func NewTransfer(spaces []string, to string) WalletRequest {
	normalized := make([]string, len(spaces))
	for i, s := range spaces {
		normalized[i] = slabel.Normalize(s)
	}
	return WalletRequest{Transfer: &TransferParams{Spaces: normalized, To: to}}
}

// NewSendCoins builds a SendCoins operation.
func NewSendCoins(amount uint64, to string) WalletRequest {
	return WalletRequest{SendCoins: &SendCoinsParams{Amount: amount, To: to}}
}

// NewExecute builds an Execute operation applying script to the
// normalized context spaces.
func NewExecute(context []string, script []byte) WalletRequest {
	normalized := make([]string, len(context))
	for i, s := range context {
		normalized[i] = slabel.Normalize(s)
	}
	return WalletRequest{Execute: &ExecuteParams{Context: normalized, Script: script}}
}

// Kind returns the wire tag of the active variant.
func (r WalletRequest) Kind() string {
	switch {
	case r.Open != nil:
		return "open"
	case r.Bid != nil:
		return "bid"
	case r.Register != nil:
		return "register"
	case r.Transfer != nil:
		return "transfer"
	case r.SendCoins != nil:
		return "sendcoins"
	case r.Execute != nil:
		return "execute"
	default:
		return ""
	}
}

// Validate checks the structural constraints knowable without the
// remote service. Semantic rules (ownership, auction state) are the
// service's to enforce.
func (r WalletRequest) Validate() error {
	set := 0
	for _, active := range []bool{
		r.Open != nil, r.Bid != nil, r.Register != nil,
		r.Transfer != nil, r.SendCoins != nil, r.Execute != nil,
	} {
		if active {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("wallet request must have exactly one operation, got %d", set)
	}

	switch {
	case r.Transfer != nil:
		if len(r.Transfer.Spaces) == 0 {
			return fmt.Errorf("transfer requires at least one space")
		}
		if r.Transfer.To == "" {
			return fmt.Errorf("transfer requires a recipient")
		}
	case r.SendCoins != nil:
		if r.SendCoins.To == "" {
			return fmt.Errorf("send requires a recipient")
		}
	case r.Execute != nil:
		if len(r.Execute.Context) == 0 {
			return fmt.Errorf("execute requires at least one context space")
		}
	}
	return nil
}

// MarshalJSON emits the internally tagged form the service expects:
// the variant tag under "request" with the params flattened beside it.
func (r WalletRequest) MarshalJSON() ([]byte, error) {
	var params interface{}
	switch {
	case r.Open != nil:
		params = r.Open
	case r.Bid != nil:
		params = r.Bid
	case r.Register != nil:
		params = r.Register
	case r.Transfer != nil:
		params = r.Transfer
	case r.SendCoins != nil:
		params = r.SendCoins
	case r.Execute != nil:
		params = r.Execute
	default:
		return nil, fmt.Errorf("wallet request has no operation set")
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	fields["request"] = json.RawMessage(fmt.Sprintf("%q", r.Kind()))
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the internally tagged form back into the
// matching variant.
func (r *WalletRequest) UnmarshalJSON(data []byte) error {
	var tag struct {
		Request string `json:"request"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	*r = WalletRequest{}
	switch tag.Request {
	case "open":
		r.Open = &OpenParams{}
		return json.Unmarshal(data, r.Open)
	case "bid":
		r.Bid = &BidParams{}
		return json.Unmarshal(data, r.Bid)
	case "register":
		r.Register = &RegisterParams{}
		return json.Unmarshal(data, r.Register)
	case "transfer":
		r.Transfer = &TransferParams{}
		return json.Unmarshal(data, r.Transfer)
	case "sendcoins":
		r.SendCoins = &SendCoinsParams{}
		return json.Unmarshal(data, r.SendCoins)
	case "execute":
		r.Execute = &ExecuteParams{}
		return json.Unmarshal(data, r.Execute)
	default:
		return fmt.Errorf("unknown wallet request %q", tag.Request)
	}
}
