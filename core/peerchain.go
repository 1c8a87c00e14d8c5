package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
)

// Selectors for the two Compound-style view functions the peerchain
// poller reads to keep the leveraged base token's exchange rate and
// interest rate current (spec.md §6, bit-exact for interoperability).
const (
	selectorExchangeRateCurrent = "0xbd6d894d"
	selectorSupplyRatePerBlock  = "0xae9d70b0"
)

// Log topics the poller filters eth_getLogs by (spec.md §6). The
// Transfer topic is the standard ERC-20 event signature; the other two
// are fixed by the bridge contract deployed on the peerchain.
var (
	transferTopic    = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	redeemTopic      = common.HexToHash("0xff051e185ca4ab867487cbb2112ad9dcf4b6e45ec93c6c83fe371bfd126d1da6")
	receivedETHTopic = common.HexToHash("0x4103257eaac983ca79a70d28f90dfc4fa16b619bb0c17ee7cab0d4034c279624")
)

// Ethereum-mainnet addresses of the ERC-20 tokens the bridge recognizes,
// used only as keys into TokenDecimals below.
var (
	btcTokenAddress = common.HexToAddress("0xeb4c2781e4eba804ce9a9803c67d0893436bb27d")
	daiTokenAddress = common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
	// cUSDTokenAddress is the Compound cUSD market backing LeveragedBaseToken;
	// exchangeRateCurrent/supplyRatePerBlock are read from this address.
	cUSDTokenAddress = common.HexToAddress("0x5d3a536E4D6DbD6114cc1Ead35777bAB948E3643")
)

// TokenDecimals maps a known bridged token to its peerchain decimal
// count, used to rescale inbound mint amounts to this chain's 6-decimal
// ELC-equivalent units (spec.md §4.M). The Bridge, Token, and OrderBook
// contracts never need this map themselves; only the poller does.
var TokenDecimals = map[Address]uint8{
	ethTokenAddress(btcTokenAddress):  8,
	ethTokenAddress(daiTokenAddress):  18,
	ethTokenAddress(cUSDTokenAddress): 8,
}

// PeerchainClient is the minimal subset of an Ethereum JSON-RPC client
// the poller needs (spec.md §6); *rpc.Client satisfies it directly,
// letting tests substitute a fake.
type PeerchainClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// DialPeerchain opens a JSON-RPC connection to the peerchain endpoint
// (spec.md §6 WEB3_URL).
func DialPeerchain(ctx context.Context, url string) (*rpc.Client, error) {
	return rpc.DialContext(ctx, url)
}

// PeerchainUpdate is the result of one poller cycle: either Pending (the
// peerchain has not advanced) or Ready with the observed mints, redeem
// confirmations, and current rate parameters (spec.md §4.M).
type PeerchainUpdate struct {
	Ready                   bool
	BlockNumber             uint64
	BaseTokenInterestRate   uint64
	BaseTokenExchangeRate   *big.Int
	Mints                   []MintEvent
	RedeemConfirmationIDs   []uint64
}

// Poll reads the Bridge's last-ingested peerchain block, asks client for
// the current one, and — if it has advanced — scrapes eth_getLogs for
// mints and redeem confirmations in between, and the two Compound-style
// rate selectors at the current block (spec.md §4.M). It does not write
// to db; callers apply the result via ApplyUpdate.
func Poll(ctx context.Context, client PeerchainClient, db *Db, bridgeContract common.Address) (PeerchainUpdate, error) {
	current, err := blockNumber(ctx, client)
	if err != nil {
		return PeerchainUpdate{}, err
	}
	last := EthereumBlockNumber(db)
	if current <= last {
		return PeerchainUpdate{}, nil
	}

	from := last + 1
	if current-last > peerchainLogRetentionBlocks {
		from = current
	}

	logs, err := getLogs(ctx, client, from, current, bridgeContract)
	if err != nil {
		return PeerchainUpdate{}, err
	}

	var mints []MintEvent
	var redeemIDs []uint64
	for _, log := range logs {
		switch {
		case len(log.Topics) > 0 && log.Topics[0] == transferTopic && len(log.Topics) > 2 && common.BytesToAddress(log.Topics[2].Bytes()) == bridgeContract:
			token := log.Address
			amount := new(big.Int).SetBytes(log.Data)
			scaled := rescale(amount, token)
			mints = append(mints, MintEvent{
				Amount:  scaled.Uint64(),
				Token:   ethTokenAddress(token),
				Address: addressFromTopic(log.Topics[1]),
			})
		case len(log.Topics) > 0 && log.Topics[0] == receivedETHTopic && log.Address == bridgeContract:
			amount := new(big.Int).SetBytes(log.Data)
			mints = append(mints, MintEvent{
				Amount:  amount.Uint64(),
				Token:   EthereumAddress,
				Address: addressFromTopic(log.Topics[1]),
			})
		case len(log.Topics) > 0 && log.Topics[0] == redeemTopic:
			if len(log.Topics) > 1 {
				redeemIDs = append(redeemIDs, binary.BigEndian.Uint64(log.Topics[1].Bytes()[24:]))
			}
		}
	}

	exchangeRate, err := ethCall(ctx, client, cUSDTokenAddress, selectorExchangeRateCurrent)
	if err != nil {
		logrus.WithError(err).Warn("peerchain: exchangeRateCurrent call failed")
		exchangeRate = big.NewInt(0)
	}
	interestRate, err := ethCall(ctx, client, cUSDTokenAddress, selectorSupplyRatePerBlock)
	if err != nil {
		logrus.WithError(err).Warn("peerchain: supplyRatePerBlock call failed")
		interestRate = big.NewInt(0)
	}

	return PeerchainUpdate{
		Ready:                 true,
		BlockNumber:           current,
		BaseTokenInterestRate: interestRate.Uint64(),
		BaseTokenExchangeRate: exchangeRate,
		Mints:                 mints,
		RedeemConfirmationIDs: redeemIDs,
	}, nil
}

// rescale converts amount, expressed in token's native peerchain decimal
// count, to this chain's elcDecimals-scaled units (spec.md §4.M).
func rescale(amount *big.Int, token common.Address) *big.Int {
	decimals, ok := TokenDecimals[ethTokenAddress(token)]
	if !ok || decimals <= elcDecimals {
		return amount
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals-elcDecimals)), nil)
	return new(big.Int).Div(amount, divisor)
}

func ethTokenAddress(a common.Address) Address {
	addr, _ := AddressFromBytes(a.Bytes())
	return addr
}

func addressFromTopic(h common.Hash) Address {
	addr, _ := AddressFromBytes(h.Bytes()[12:])
	return addr
}

func blockNumber(ctx context.Context, client PeerchainClient) (uint64, error) {
	var result hexutil.Uint64
	if err := client.CallContext(ctx, &result, "eth_blockNumber"); err != nil {
		return 0, fmt.Errorf("peerchain: eth_blockNumber: %w", err)
	}
	return uint64(result), nil
}

func ethCall(ctx context.Context, client PeerchainClient, to common.Address, selector string) (*big.Int, error) {
	var result hexutil.Bytes
	args := map[string]interface{}{"to": to, "data": selector}
	if err := client.CallContext(ctx, &result, "eth_call", args, "latest"); err != nil {
		return nil, fmt.Errorf("peerchain: eth_call %s: %w", selector, err)
	}
	return new(big.Int).SetBytes(result), nil
}

func getLogs(ctx context.Context, client PeerchainClient, from, to uint64, bridgeContract common.Address) ([]types.Log, error) {
	var result []types.Log
	filter := map[string]interface{}{
		"fromBlock": hexutil.Uint64(from),
		"toBlock":   hexutil.Uint64(to),
		"topics":    [][]common.Hash{{transferTopic, receivedETHTopic, redeemTopic}},
	}
	if err := client.CallContext(ctx, &result, "eth_getLogs", filter); err != nil {
		return nil, fmt.Errorf("peerchain: eth_getLogs: %w", err)
	}
	return result, nil
}

// CancelExpiredRedeemRequests cancels every pending redeem request whose
// expiration has passed the newly observed peerchain block (spec.md
// §4.M, folded into ApplyUpdate for the Update dispatcher action but
// exposed standalone for a poller that applies state directly rather
// than via a signed transaction).
func CancelExpiredRedeemRequests(db *Db, currentPeerchainBlock uint64) {
	for _, r := range PendingRedeemRequests(db) {
		if r.ExpirationBlockNumber != nil && *r.ExpirationBlockNumber < currentPeerchainBlock {
			_ = CancelRedeemRequest(db, r.ID)
		}
	}
}
