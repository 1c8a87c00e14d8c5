package core

// Bridge field ids (spec.md §3).
const (
	bridgeFieldEthereumBlockNumber   uint16 = 0
	bridgeFieldPendingRedeemRequests uint16 = 1
	bridgeFieldRedeemIDCounter       uint16 = 2
)

// bridgeAddress is the Bridge contract's own synthetic address; tokens
// pending redemption are held there (spec.md §3 invariant).
var bridgeAddress = ContractAddress(ContractIDBridge)

// RedeemRequest is a pending withdrawal back to the peerchain
// (spec.md §3).
type RedeemRequest struct {
	ID                    uint64
	Sender                Address
	Token                 Address
	Amount                uint64
	ExpirationBlockNumber *uint64
	Signature             []byte
}

// EthereumBlockNumber returns the last peerchain block number the poller
// has ingested up to (spec.md §3).
func EthereumBlockNumber(db *Db) uint64 {
	return GetValue[uint64](db, ContractIDBridge, bridgeFieldEthereumBlockNumber)
}

// SetEthereumBlockNumber records the peerchain block the poller has
// ingested up to.
func SetEthereumBlockNumber(db *Db, blockNumber uint64) {
	SetValue(db, ContractIDBridge, bridgeFieldEthereumBlockNumber, blockNumber)
}

func getPendingRedeemRequests(db *Db) []RedeemRequest {
	return GetValue[[]RedeemRequest](db, ContractIDBridge, bridgeFieldPendingRedeemRequests)
}

func setPendingRedeemRequests(db *Db, requests []RedeemRequest) {
	SetValue(db, ContractIDBridge, bridgeFieldPendingRedeemRequests, requests)
}

// PendingRedeemRequests returns every redeem request awaiting signature,
// expiration, or redemption (spec.md §3).
func PendingRedeemRequests(db *Db) []RedeemRequest {
	return getPendingRedeemRequests(db)
}

func nextRedeemID(db *Db) uint64 {
	id := GetValue[uint64](db, ContractIDBridge, bridgeFieldRedeemIDCounter)
	SetValue(db, ContractIDBridge, bridgeFieldRedeemIDCounter, id+1)
	return id
}

func findRedeemRequest(db *Db, redeemID uint64) (RedeemRequest, int, bool) {
	requests := getPendingRedeemRequests(db)
	for i, r := range requests {
		if r.ID == redeemID {
			return r, i, true
		}
	}
	return RedeemRequest{}, -1, false
}

func removeRedeemRequestAt(db *Db, idx int) {
	requests := getPendingRedeemRequests(db)
	requests = append(requests[:idx], requests[idx+1:]...)
	setPendingRedeemRequests(db, requests)
}

// BridgeMint credits address on this chain for an observed peerchain
// deposit (spec.md §4.G, called only by the peerchain poller).
func BridgeMint(db *Db, amount uint64, token, address Address) {
	Mint(db, amount, token, address)
}

// CreateRedeemRequest debits sender and opens a pending RedeemRequest,
// holding the tokens at the Bridge's synthetic address until a signer
// attests to it and it is redeemed or cancelled (spec.md §4.G).
func CreateRedeemRequest(db *Db, sender Address, amount uint64, token Address) (uint64, error) {
	if err := Transfer(db, sender, bridgeAddress, amount, token); err != nil {
		return 0, err
	}
	r := RedeemRequest{
		ID:     nextRedeemID(db),
		Sender: sender,
		Token:  token,
		Amount: amount,
	}
	setPendingRedeemRequests(db, append(getPendingRedeemRequests(db), r))
	return r.ID, nil
}

// SignRedeemRequest attaches a signer's attestation (an expiration block
// number and signature) to a pending redeem request (spec.md §4.G).
func SignRedeemRequest(db *Db, redeemID uint64, expirationBlockNumber uint64, signature []byte) error {
	r, idx, ok := findRedeemRequest(db, redeemID)
	if !ok {
		return ErrRedeemRequestNotFound
	}
	r.ExpirationBlockNumber = &expirationBlockNumber
	r.Signature = signature
	requests := getPendingRedeemRequests(db)
	requests[idx] = r
	setPendingRedeemRequests(db, requests)
	return nil
}

// CancelRedeemRequest removes redeemID and returns its escrowed tokens to
// the original sender (spec.md §4.G).
func CancelRedeemRequest(db *Db, redeemID uint64) error {
	r, idx, ok := findRedeemRequest(db, redeemID)
	if !ok {
		return ErrRedeemRequestNotFound
	}
	removeRedeemRequestAt(db, idx)
	return Transfer(db, bridgeAddress, r.Sender, r.Amount, r.Token)
}

// Redeem removes redeemID and burns its escrowed tokens; the
// corresponding payout happens on the peerchain, outside this chain's
// state (spec.md §4.G).
func Redeem(db *Db, redeemID uint64) error {
	r, idx, ok := findRedeemRequest(db, redeemID)
	if !ok {
		return ErrRedeemRequestNotFound
	}
	removeRedeemRequestAt(db, idx)
	return Burn(db, r.Amount, r.Token, bridgeAddress)
}

// Start bootstraps the block number the peerchain poller resumes
// scanning from. It is a no-op once the bridge has already observed a
// peerchain block, so a StartBridge action replayed against a running
// chain (or raced against the poller's own ingestion) cannot rewind
// history (spec.md §4.M).
func Start(db *Db, ethereumBlockNumber uint64) {
	if EthereumBlockNumber(db) != 0 {
		return
	}
	SetEthereumBlockNumber(db, ethereumBlockNumber)
}

// MintEvent is a single observed peerchain deposit (spec.md §4.M).
type MintEvent struct {
	Amount  uint64
	Token   Address
	Address Address
}

// RedeemSignature attaches a signer's attestation to a pending redeem
// request, the on-chain counterpart of a peerchain payout becoming
// executable (spec.md §4.G).
type RedeemSignature struct {
	RedeemID              uint64
	ExpirationBlockNumber uint64
	Signature             []byte
}

// Update is the batch of effects a peerchain poller cycle produces:
// newly observed mints, newly attested redeem signatures, and the
// peerchain block number scanned up to (spec.md §4.M). Dispatching it
// as a single Action keeps a poller cycle's mints, signatures, and
// expiration-driven cancellations atomic with the block number advance
// that guards against re-ingesting the same peerchain blocks.
type Update struct {
	EthereumBlockNumber uint64
	Mints               []MintEvent
	Signatures          []RedeemSignature
	Redeems             []uint64
}

// ApplyUpdate ingests a peerchain poller cycle: credits every mint,
// attaches every redeem signature, burns every confirmed redeem's
// escrow, cancels any pending redeem request whose expiration has
// passed the newly observed peerchain block, and advances
// ethereum_block_number. The block number only ever advances (spec.md
// §4.M "skip ahead", never back).
func ApplyUpdate(db *Db, update Update) error {
	for _, m := range update.Mints {
		BridgeMint(db, m.Amount, m.Token, m.Address)
	}
	for _, s := range update.Signatures {
		if err := SignRedeemRequest(db, s.RedeemID, s.ExpirationBlockNumber, s.Signature); err != nil {
			return err
		}
	}
	for _, redeemID := range update.Redeems {
		if err := Redeem(db, redeemID); err != nil {
			return err
		}
	}
	for _, r := range getPendingRedeemRequests(db) {
		if r.ExpirationBlockNumber != nil && *r.ExpirationBlockNumber < update.EthereumBlockNumber {
			if err := CancelRedeemRequest(db, r.ID); err != nil {
				return err
			}
		}
	}
	if update.EthereumBlockNumber > EthereumBlockNumber(db) {
		SetEthereumBlockNumber(db, update.EthereumBlockNumber)
	}
	return nil
}
