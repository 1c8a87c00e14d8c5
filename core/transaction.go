package core

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Transaction is the unsigned envelope every mutating request carries
// (spec.md §4.K, §4.O).
type Transaction struct {
	TransactionNumber uint64
	NetworkID         uint64
	Action            Action
}

// SignedTransaction pairs a Transaction with a 65-byte recoverable
// signature over its verification string (spec.md §6).
type SignedTransaction struct {
	Transaction Transaction
	Signature   [65]byte
}

// ethPersonalSignPrefix is Ethereum's personal-sign preamble (spec.md
// §6): the signer hashes prefix || len(msg) || msg with Keccak-256.
const ethPersonalSignPrefix = "\x19Ethereum Signed Message:\n"

// Sender recovers the address that signed t, by ecrecover over the
// Keccak-256 personal-sign hash of t.Transaction's verification string
// (spec.md §6).
func (t SignedTransaction) Sender() (Address, error) {
	msg, err := t.Transaction.VerificationString()
	if err != nil {
		return Address{}, err
	}
	hash := PersonalSignHash(msg)
	return Ecrecover(hash, t.Signature[:])
}

// Run recovers t's sender and dispatches its action, the top-level entry
// point for a transaction arriving off the wire (spec.md §4.K).
func (t SignedTransaction) Run(db *Db) error {
	sender, err := t.Sender()
	if err != nil {
		return err
	}
	return Dispatch(db, sender, t.Transaction.Action)
}

// PersonalSignHash computes the Ethereum personal-sign digest of msg
// (spec.md §6).
func PersonalSignHash(msg string) [32]byte {
	prefixed := ethPersonalSignPrefix + strconv.Itoa(len(msg)) + msg
	return Keccak256([]byte(prefixed))
}

// VerificationString renders t as the canonical human-readable message a
// wallet displays before signing (spec.md §4.O).
func (t Transaction) VerificationString() (string, error) {
	actionStr, err := t.Action.VerificationString()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Network ID: %d\nTransaction Number: %d\nAction: %s",
		t.NetworkID, t.TransactionNumber, actionStr), nil
}

// VerificationString renders a's human-readable description, one
// template per Kind (spec.md §4.O). Kinds with no signer-facing meaning
// (Seal, StartBridge, Update, Harvest's silent twin FillOrder's raw
// fields) still get a template, since every signed transaction must
// render to something before it is signed.
func (a Action) VerificationString() (string, error) {
	switch a.Kind {
	case ActionAddLiquidity:
		return fmt.Sprintf("Add %s %s to the liquidity pool",
			amountToString(a.AddLiquidityAmount), addressToString(a.AddLiquidityToken)), nil
	case ActionCreateOrder:
		return fmt.Sprintf("Create a limit order to %s %s %s for $%s each",
			orderTypeToString(a.CreateOrderType), amountToString(a.CreateOrderAmount),
			addressToString(a.CreateOrderToken), amountToString(a.CreateOrderPrice)), nil
	case ActionCreatePool:
		return fmt.Sprintf("Create a pool of %s %s at an initial price of $%s USD",
			amountToString(a.CreatePoolAmount), addressToString(a.CreatePoolToken),
			amountToString(a.CreatePoolStartingPrice)), nil
	case ActionCreateProposal:
		actionsStr, err := actionsToString(a.CreateProposalActions)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Create Proposal\nTitle: %s\nSubtitle: %s\nContent: %s\nActions: %s",
			a.CreateProposalTitle, a.CreateProposalSubtitle, a.CreateProposalContent, actionsStr), nil
	case ActionCreateRedeemRequest:
		return fmt.Sprintf("Redeem %s %s",
			amountToString(a.CreateRedeemRequestAmount), addressToString(a.CreateRedeemRequestToken)), nil
	case ActionFillOrder:
		return fmt.Sprintf("Fill order #%d", a.FillOrderID), nil
	case ActionHarvest:
		return "Harvest", nil
	case ActionMigrate:
		return fmt.Sprintf("Migrate\nLegacy Address: %s\nLegacy Signature: %s",
			base64.RawURLEncoding.EncodeToString(a.MigrateLegacyAddress[:]),
			base64.RawURLEncoding.EncodeToString(a.MigrateLegacySignature)), nil
	case ActionPay:
		return fmt.Sprintf("Pay %s %s %s",
			addressToString(a.PayRecipient), amountToString(a.PayAmount), addressToString(a.PayToken)), nil
	case ActionRemoveLiquidity:
		return fmt.Sprintf("Remove %s of my %s from the liquidity pool",
			percentageToString(a.RemoveLiquidityPercentage), addressToString(a.RemoveLiquidityToken)), nil
	case ActionSeal:
		return fmt.Sprintf("Seal %s", hex.EncodeToString(a.SealOnionSkin[:])), nil
	case ActionSignRedeemRequest:
		return fmt.Sprintf("Sign redeem request #%d", a.SignRedeemRequestID), nil
	case ActionStartBridge:
		return fmt.Sprintf("Start bridge at Ethereum block %d", a.StartBridgeEthereumBlockNumber), nil
	case ActionStartMining:
		return fmt.Sprintf("Start mining at %s", a.StartMiningHost), nil
	case ActionTrade:
		return fmt.Sprintf("Trade %s %s for at least %s %s",
			amountToString(a.TradeInputAmount), addressToString(a.TradeInputToken),
			amountToString(a.TradeMinimumOutputAmount), addressToString(a.TradeOutputToken)), nil
	case ActionUpdate:
		return fmt.Sprintf("Update bridge to Ethereum block %d", a.UpdateBridge.EthereumBlockNumber), nil
	case ActionVote:
		return fmt.Sprintf("Vote %s on proposal %d", voteChoiceToString(a.VoteChoice), a.VoteProposalID), nil
	default:
		return "", fmt.Errorf("transaction: unknown action kind %d", a.Kind)
	}
}

func actionsToString(actions []Action) (string, error) {
	parts := make([]string, len(actions))
	for i, a := range actions {
		s, err := a.VerificationString()
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, "\n"), nil
}

func voteChoiceToString(c VoteChoice) string {
	if c == VoteFor {
		return "Yes"
	}
	return "No"
}

func orderTypeToString(t OrderType) string {
	if t == OrderTypeBuy {
		return "buy"
	}
	return "sell"
}

// amountToString renders a BaseFactor-scaled amount as a comma-grouped
// decimal with 6 fractional digits (spec.md §4.O), e.g. 1_500_000 ->
// "1.500000".
func amountToString(n uint64) string {
	whole := n / BaseFactor
	frac := n % BaseFactor
	return fmt.Sprintf("%s.%06d", groupThousands(whole), frac)
}

// percentageToString renders a BaseFactor-scaled fraction as a percentage
// with 4 fractional digits, e.g. 500_000 (50%) -> "50.0000%".
func percentageToString(n uint64) string {
	scaled := n * 100
	whole := scaled / BaseFactor
	frac := scaled % BaseFactor
	return fmt.Sprintf("%d.%04d%%", whole, frac/100)
}

func groupThousands(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	return strings.Join(groups, ",")
}

// addressToString renders a well-known contract address by name and any
// other address as a pseudo-checksummed hex string: each hex digit of
// the address is uppercased wherever the corresponding nibble of
// Keccak-256(hex(address)) exceeds 7, an EIP-55-shaped display that lets
// a wallet catch a single-character transcription error (spec.md §4.O).
func addressToString(a Address) string {
	switch a {
	case BaseToken:
		return "MS"
	case LeveragedBaseToken:
		return "USD"
	case EthereumAddress:
		return "ETH"
	}

	addrHex := hex.EncodeToString(a.Bytes())
	hash := Keccak256([]byte(addrHex))
	hashHex := hex.EncodeToString(hash[:])

	var b strings.Builder
	b.WriteString("0x")
	for i, c := range addrHex {
		n, _ := strconv.ParseUint(hashHex[i:i+1], 16, 8)
		if n > 7 {
			b.WriteString(strings.ToUpper(string(c)))
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}
