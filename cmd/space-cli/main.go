// space-cli is a command-line client for a spaced wallet service: it
// translates commands into typed wallet operations, submits them over
// JSON-RPC, and renders results or classified errors.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/spacedlabs/space-cli/config"
	"github.com/spacedlabs/space-cli/internal/log"
	"github.com/spacedlabs/space-cli/internal/report"
	"github.com/spacedlabs/space-cli/internal/rpc"
	"github.com/spacedlabs/space-cli/internal/rpcclient"
	"github.com/spacedlabs/space-cli/internal/txbuild"
	"github.com/spacedlabs/space-cli/pkg/slabel"
)

// cli bundles the per-invocation state: the immutable session, the
// transport, and the request builder.
type cli struct {
	session config.Session
	client  *rpcclient.Client
	builder *txbuild.Builder
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	session := config.SessionFromEnv()

	// Scan global flags that appear before the subcommand.
	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--chain" && len(args) > 1:
			setChain(&session, args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--chain="):
			setChain(&session, args[0][len("--chain="):])
			args = args[1:]
		case args[0] == "--spaced-rpc-url" && len(args) > 1:
			session.RPCURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--spaced-rpc-url="):
			session.RPCURL = args[0][len("--spaced-rpc-url="):]
			args = args[1:]
		case (args[0] == "--wallet" || args[0] == "-w") && len(args) > 1:
			session.Wallet = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--wallet="):
			session.Wallet = args[0][len("--wallet="):]
			args = args[1:]
		case args[0] == "--dust" && len(args) > 1:
			setDust(&session, args[1])
			args = args[2:]
		case strings.HasPrefix(args[0], "--dust="):
			setDust(&session, args[0][len("--dust="):])
			args = args[1:]
		case args[0] == "--force":
			session.Force = true
			args = args[1:]
		case args[0] == "--skip-tx-check":
			session.SkipTxCheck = true
			args = args[1:]
		case args[0] == "--log-level" && len(args) > 1:
			session.LogLevel = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--log-level="):
			session.LogLevel = args[0][len("--log-level="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	log.Init(session.LogLevel, false)

	if err := session.Finalize(); err != nil {
		fatal("%v", err)
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	c := &cli{session: session}
	c.client = rpcclient.New(session.RPCURL)
	c.builder = txbuild.New(c.client, session.Wallet, txbuild.Options{
		Dust:        session.Dust,
		Force:       session.Force,
		SkipTxCheck: session.SkipTxCheck,
	})

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "createwallet":
		c.run(c.client.WalletCreate(session.Wallet))
	case "loadwallet":
		c.run(c.client.WalletLoad(session.Wallet))
	case "exportwallet":
		c.cmdExportWallet(cmdArgs)
	case "importwallet":
		c.cmdImportWallet(cmdArgs)
	case "getwalletinfo":
		c.show(c.client.WalletGetInfo(session.Wallet))
	case "getserverinfo":
		c.show(c.client.GetServerInfo())
	case "balance":
		c.show(c.client.WalletGetBalance(session.Wallet))
	case "open":
		c.cmdOpen(cmdArgs)
	case "bid":
		c.cmdBid(cmdArgs)
	case "register":
		c.cmdRegister(cmdArgs)
	case "transfer":
		c.cmdTransfer(cmdArgs)
	case "send":
		c.cmdSendCoins(cmdArgs)
	case "setrawfallback":
		c.cmdSetRawFallback(cmdArgs)
	case "createbidouts":
		c.cmdCreateBidOuts(cmdArgs)
	case "bumpfee":
		c.cmdBumpFee(cmdArgs)
	case "forcespend":
		c.cmdForceSpend(cmdArgs)
	case "getspace":
		c.cmdGetSpace(cmdArgs)
	case "getspaceout":
		c.cmdGetSpaceOut(cmdArgs)
	case "getrollout":
		c.cmdGetRollout(cmdArgs)
	case "estimatebid":
		c.cmdEstimateBid(cmdArgs)
	case "listtransactions":
		c.cmdListTransactions(cmdArgs)
	case "listspaces":
		c.show(c.client.WalletListSpaces(session.Wallet))
	case "listbidouts":
		c.show(c.client.WalletListBidOuts(session.Wallet))
	case "listunspent":
		c.show(c.client.WalletListUnspent(session.Wallet))
	case "getnewaddress":
		c.showText(c.client.WalletGetNewAddress(session.Wallet, rpc.AddressCoin))
	case "getnewspaceaddress":
		c.showText(c.client.WalletGetNewAddress(session.Wallet, rpc.AddressSpace))
	case "hashspace":
		c.cmdHashSpace(cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func setChain(s *config.Session, chain string) {
	n, err := config.ParseNetwork(chain)
	if err != nil {
		fatal("%v", err)
	}
	s.Network = n
}

func setDust(s *config.Session, value string) {
	sat, err := strconv.ParseUint(value, 10, 63)
	if err != nil {
		fatal("invalid dust amount %q: %v", value, err)
	}
	dust := btcutil.Amount(sat)
	s.Dust = &dust
}

// ── transaction-building commands ───────────────────────────────────────

func (c *cli) cmdOpen(args []string) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 1 {
		fatal("Usage: space-cli open <space> [initial-bid] [--fee-rate <rate>]")
	}
	initialBid := uint64(1000)
	if len(pos) > 1 {
		var err error
		initialBid, err = strconv.ParseUint(pos[1], 10, 64)
		if err != nil {
			c.fail(report.LocalValidationf("invalid initial bid %q: %v", pos[1], err))
		}
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewOpen(pos[0], initialBid)
	c.show(c.builder.Submit(&req, nil, feeRate, false))
}

func (c *cli) cmdBid(args []string) {
	fs := flag.NewFlagSet("bid", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	confirmedOnly := fs.Bool("confirmed-only", false, "Spend only confirmed outputs")
	pos := parseMixed(fs, args)

	if len(pos) < 2 {
		fatal("Usage: space-cli bid <space> <amount> [--fee-rate <rate>] [--confirmed-only]")
	}
	amount, err := strconv.ParseUint(pos[1], 10, 64)
	if err != nil {
		c.fail(report.LocalValidationf("invalid bid amount %q: %v", pos[1], err))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewBid(pos[0], amount)
	c.show(c.builder.Submit(&req, nil, feeRate, *confirmedOnly))
}

func (c *cli) cmdRegister(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 1 {
		fatal("Usage: space-cli register <space> [address] [--fee-rate <rate>]")
	}
	var to *string
	if len(pos) > 1 {
		to = &pos[1]
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewRegister(pos[0], to)
	c.show(c.builder.Submit(&req, nil, feeRate, false))
}

func (c *cli) cmdTransfer(args []string) {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	to := fs.String("to", "", "Recipient space name or address")
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 1 || *to == "" {
		fatal("Usage: space-cli transfer <spaces>... --to <space-or-address> [--fee-rate <rate>]")
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewTransfer(pos, *to)
	c.show(c.builder.Submit(&req, nil, feeRate, false))
}

func (c *cli) cmdSendCoins(args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	to := fs.String("to", "", "Recipient space name or address")
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 1 || *to == "" {
		fatal("Usage: space-cli send <amount> --to <space-or-address> [--fee-rate <rate>]")
	}
	amount, err := strconv.ParseUint(pos[0], 10, 64)
	if err != nil {
		c.fail(report.LocalValidationf("invalid amount %q: %v", pos[0], err))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewSendCoins(amount, *to)
	c.show(c.builder.Submit(&req, nil, feeRate, false))
}

func (c *cli) cmdSetRawFallback(args []string) {
	fs := flag.NewFlagSet("setrawfallback", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 2 {
		fatal("Usage: space-cli setrawfallback <space> <hex-data> [--fee-rate <rate>]")
	}
	data, err := hex.DecodeString(pos[1])
	if err != nil {
		c.fail(report.LocalValidationf("could not hex decode data: %v", err))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	req := rpc.NewExecute([]string{pos[0]}, rpc.CreateSetFallback(data))
	c.show(c.builder.Submit(&req, nil, feeRate, false))
}

func (c *cli) cmdCreateBidOuts(args []string) {
	fs := flag.NewFlagSet("createbidouts", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB")
	pos := parseMixed(fs, args)

	if len(pos) < 1 {
		fatal("Usage: space-cli createbidouts <pairs> [--fee-rate <rate>]")
	}
	pairs, err := strconv.ParseUint(pos[0], 10, 8)
	if err != nil {
		c.fail(report.LocalValidationf("invalid pair count %q: must be 0-255", pos[0]))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	bidouts := uint8(pairs)
	c.show(c.builder.Submit(nil, &bidouts, feeRate, false))
}

// ── other mutating commands ─────────────────────────────────────────────

func (c *cli) cmdBumpFee(args []string) {
	fs := flag.NewFlagSet("bumpfee", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB (required)")
	pos := parseMixed(fs, args)

	if len(pos) < 1 || *feeRateStr == "" {
		fatal("Usage: space-cli bumpfee <txid> --fee-rate <rate>")
	}
	txid, err := chainhash.NewHashFromStr(pos[0])
	if err != nil {
		c.fail(report.LocalValidationf("invalid txid %q: %v", pos[0], err))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	c.show(c.client.WalletBumpFee(c.session.Wallet, *txid, *feeRate, c.session.SkipTxCheck))
}

func (c *cli) cmdForceSpend(args []string) {
	fs := flag.NewFlagSet("forcespend", flag.ExitOnError)
	feeRateStr := fs.String("fee-rate", "", "Fee rate in sat/vB (required)")
	pos := parseMixed(fs, args)

	if len(pos) < 1 || *feeRateStr == "" {
		fatal("Usage: space-cli forcespend <txid:vout> --fee-rate <rate>")
	}
	outpoint, err := rpc.ParseOutPoint(pos[0])
	if err != nil {
		c.fail(report.LocalValidationf("%v", err))
	}
	feeRate, err := txbuild.ParseFeeRate(*feeRateStr)
	if err != nil {
		c.fail(err)
	}

	c.show(c.client.WalletForceSpend(c.session.Wallet, outpoint, *feeRate))
}

// ── wallet document import/export ───────────────────────────────────────

func (c *cli) cmdExportWallet(args []string) {
	if len(args) < 1 {
		fatal("Usage: space-cli exportwallet <path>")
	}

	doc, err := c.client.WalletExport(c.session.Wallet)
	if err != nil {
		c.fail(err)
	}
	pretty, err := prettyJSON(doc)
	if err != nil {
		c.fail(err)
	}
	if err := os.WriteFile(args[0], []byte(pretty+"\n"), 0600); err != nil {
		c.fail(report.LocalValidationf("could not save to path: %v", err))
	}
}

func (c *cli) cmdImportWallet(args []string) {
	if len(args) < 1 {
		fatal("Usage: space-cli importwallet <path>")
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		c.fail(report.LocalValidationf("could not read wallet file: %v", err))
	}
	// The document is opaque to the client; only well-formedness is
	// checked before passing it through.
	if !json.Valid(content) {
		c.fail(report.LocalValidationf("wallet file %s is not valid JSON", args[0]))
	}
	c.run(c.client.WalletImport(content))
}

// ── read-only queries ───────────────────────────────────────────────────

func (c *cli) cmdGetSpace(args []string) {
	if len(args) < 1 {
		fatal("Usage: space-cli getspace <space>")
	}
	spaceHash, err := slabel.HashHex(args[0])
	if err != nil {
		c.fail(report.LocalValidationf("%v", err))
	}
	c.show(c.client.GetSpace(spaceHash))
}

func (c *cli) cmdGetSpaceOut(args []string) {
	if len(args) < 1 {
		fatal("Usage: space-cli getspaceout <txid:vout>")
	}
	outpoint, err := rpc.ParseOutPoint(args[0])
	if err != nil {
		c.fail(report.LocalValidationf("%v", err))
	}
	c.show(c.client.GetSpaceOut(outpoint))
}

func (c *cli) cmdGetRollout(args []string) {
	target, err := parseTarget(args)
	if err != nil {
		c.fail(err)
	}
	c.show(c.client.GetRollout(target))
}

func (c *cli) cmdEstimateBid(args []string) {
	target, err := parseTarget(args)
	if err != nil {
		c.fail(err)
	}
	amount, err := c.client.EstimateBid(target)
	if err != nil {
		c.fail(err)
	}
	fmt.Printf("%d sat\n", amount)
}

func (c *cli) cmdListTransactions(args []string) {
	count, skip := 10, 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			c.fail(report.LocalValidationf("invalid count %q", args[0]))
		}
		count = n
	}
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			c.fail(report.LocalValidationf("invalid skip %q", args[1]))
		}
		skip = n
	}
	c.show(c.client.WalletListTransactions(c.session.Wallet, count, skip))
}

// ── pure local ──────────────────────────────────────────────────────────

func (c *cli) cmdHashSpace(args []string) {
	if len(args) < 1 {
		fatal("Usage: space-cli hashspace <space>")
	}
	spaceHash, err := slabel.HashHex(args[0])
	if err != nil {
		c.fail(report.LocalValidationf("%v", err))
	}
	fmt.Println(spaceHash)
}

func parseTarget(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	target, err := strconv.Atoi(args[0])
	if err != nil || target < 0 {
		return 0, report.LocalValidationf("invalid target %q: must be a non-negative integer", args[0])
	}
	return target, nil
}

// parseMixed parses a command argument list in which flags may follow
// positional arguments, the way the service's users expect
// ("open foo 1000 --fee-rate 5"). Returns the positional arguments.
func parseMixed(fs *flag.FlagSet, args []string) []string {
	var flags, pos []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || arg[0] != '-' {
			pos = append(pos, arg)
			continue
		}
		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.ContainsRune(name, '=') {
			continue
		}
		def := fs.Lookup(name)
		if def == nil {
			continue // fs.Parse reports the unknown flag
		}
		bf, ok := def.Value.(interface{ IsBoolFlag() bool })
		if (!ok || !bf.IsBoolFlag()) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	fs.Parse(flags)
	return pos
}

// ── output ──────────────────────────────────────────────────────────────

// run finishes a command that returns no result on success.
func (c *cli) run(err error) {
	if err != nil {
		c.fail(err)
	}
}

// show pretty-prints a JSON result, or fails with the classified error.
func (c *cli) show(result json.RawMessage, err error) {
	if err != nil {
		c.fail(err)
	}
	if len(result) == 0 {
		return
	}
	pretty, err := prettyJSON(result)
	if err != nil {
		c.fail(err)
	}
	fmt.Println(pretty)
}

// showText prints a bare string result such as an address.
func (c *cli) showText(result string, err error) {
	if err != nil {
		c.fail(err)
	}
	fmt.Println(result)
}

// fail classifies err, attaches the endpoint context, renders it, and
// exits non-zero. Every failure path of every command ends here.
func (c *cli) fail(err error) {
	rep := report.Classify(err)
	rep.Endpoint = c.session.RPCURL
	rep.Network = c.session.Network.String()
	fmt.Println(rep.Render())
	os.Exit(1)
}

func prettyJSON(raw json.RawMessage) (string, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return "", fmt.Errorf("indent result: %w", err)
	}
	return out.String(), nil
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: space-cli [global flags] <command> [args]

Global flags:
  --chain <net>            mainnet (default), testnet4, signet, or regtest
  --spaced-rpc-url <url>   Wallet service RPC URL (default: derived from chain)
  --wallet, -w <name>      Wallet to use (default: default)
  --dust <sat>             Custom dust amount in sat for bid outputs
  --force                  Force invalid transaction (for testing only)
  --skip-tx-check          Skip tx checker (not recommended)
  --log-level <level>      debug, info, warn, error (default: disabled)

Wallet:
  createwallet                    Generate a new wallet
  loadwallet                      Load a wallet
  exportwallet <path>             Export the wallet to a JSON file
  importwallet <path>             Import a wallet from a JSON file
  getwalletinfo                   Show wallet info
  balance                         Show wallet balance
  getnewaddress                   New address for receiving coins
  getnewspaceaddress              New address for receiving spaces and coins

Spaces:
  open <space> [initial-bid]      Open an auction (default bid: 1000 sat)
  bid <space> <amount>            Place a bid
  register <space> [address]      Register a won auction
  transfer <spaces>... --to <x>   Transfer spaces to a space or address
  send <amount> --to <x>          Send coins to a space or address
  createbidouts <pairs>           Pre-create bid output pairs
  setrawfallback <space> <hex>    Associate raw fallback data with a space

Transactions:
  bumpfee <txid> --fee-rate <r>   Bump the fee of a wallet transaction
  forcespend <txid:vout> --fee-rate <r>
                                  Force spend an output (for testing only)
  listtransactions [count] [skip] List recent wallet transactions
  listspaces                      List owned and winning spaces
  listbidouts                     List unspent bid outputs
  listunspent                     List unspent coins

Queries:
  getserverinfo                   Show server info
  getspace <space>                Show a space record
  getspaceout <txid:vout>         Show a protocol output
  getrollout [interval]           Estimated rollout batch for an interval
  estimatebid [target]            Estimated minimum bid for a rollout target
  hashspace <space>               Hash of the encoded space name (offline)

All transaction-building commands accept --fee-rate <sat/vB>.
`)
}
