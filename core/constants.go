package core

// Contract ids, fixed by the persisted key layout (spec.md §6). These are
// baked into every Db key via ContractAddress/assembleKey and must never
// change without a migration.
const (
	ContractIDAMM         uint16 = 0
	ContractIDBridge      uint16 = 1
	ContractIDEllipticoin uint16 = 2
	ContractIDGovernance  uint16 = 3
	ContractIDOrderBook   uint16 = 4
	ContractIDSystem      uint16 = 5
	ContractIDToken       uint16 = 6
)

// BaseFactor is the fixed-point scale applied to every on-chain amount
// (spec.md GLOSSARY).
const BaseFactor = 1_000_000

// AMM trading fee: FEE / BaseFactor = 0.3%.
const (
	AMMFee = 3_000
)

// Ellipticoin issuance schedule (spec.md §4.J).
const (
	BlocksPerEra  = 8_000_000
	NumberOfEras  = 8
	// baseBlockReward is BASE_FACTOR * 128 * 10^6 / 10^8 ELC per block in
	// era 0, i.e. BaseFactor * 1.28.
	baseBlockRewardNumerator   = 128_000_000
	baseBlockRewardDenominator = 100_000_000
)

// BlockDurationSeconds is the wall-clock pace, in seconds, of the miner loop (spec.md §4.L).
const BlockDurationSeconds = 4

// Token mantissas for the leveraged base token's underlying-amount mapping
// (spec.md §4.D): underlying = amount * R / 10^(BaseTokenMantissa+ExchangeRateMantissa).
const (
	BaseTokenMantissa     = 6
	ExchangeRateMantissa  = 6
	underlyingMantissaSum = BaseTokenMantissa + ExchangeRateMantissa
)

// elcDecimals is ELC's on-chain decimal count, used to scale peerchain
// deposit amounts down to this chain's units (spec.md §4.M).
const elcDecimals = 6

// Peerchain log-retention window: beyond this many blocks of drift, the
// poller skips ahead instead of scanning history that has rolled off
// (spec.md §4.M).
const peerchainLogRetentionBlocks = 128

var (
	// BaseToken is the chain's native settlement asset; AMM pools price
	// every other token against it.
	BaseToken = ContractAddress(0xFFFF)
	// LeveragedBaseToken is the interest-bearing wrapper around BaseToken
	// (spec.md §4.D).
	LeveragedBaseToken = ContractAddress(0xFFFE)
	// EthereumAddress is the synthetic token identifying native ETH
	// deposits observed by the peerchain poller (spec.md §4.M).
	EthereumAddress = ContractAddress(0xFFFD)
)

// ELCAddress is the Ellipticoin contract's own synthetic address; it also
// names the native reward/governance token balances are denominated in.
var ELCAddress = ContractAddress(ContractIDEllipticoin)

// MinerAllowList is the static allow-list of addresses permitted to call
// StartMining (spec.md §4.J). Populated at startup from configuration; a
// package-level var (rather than a parameter threaded through every
// contract call) keeps it process-wide, since the allow-list is fixed
// for the lifetime of a running node.
var MinerAllowList = map[Address]struct{}{}

// SetMinerAllowList replaces the static allow-list, e.g. from config at
// startup.
func SetMinerAllowList(addrs []Address) {
	m := make(map[Address]struct{}, len(addrs))
	for _, a := range addrs {
		m[a] = struct{}{}
	}
	MinerAllowList = m
}

// IncentivisedPools lists the tokens whose AMM liquidity providers share in
// block-reward issuance (spec.md §4.J, GLOSSARY).
var IncentivisedPools []Address

// SetIncentivisedPools replaces the incentivised-pool list, e.g. from
// configuration at startup.
func SetIncentivisedPools(tokens []Address) {
	IncentivisedPools = append([]Address(nil), tokens...)
}
