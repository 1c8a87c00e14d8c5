package core

import (
	"encoding/binary"
	"math/rand"
)

// Ellipticoin field ids (spec.md §3).
const (
	ellipticoinFieldIssuanceRewards uint16 = 0
	ellipticoinFieldMiners          uint16 = 1
)

// elcContractAddress is the Ellipticoin contract's own synthetic address:
// issued ELC is minted to it and harvested rewards are paid out of it
// (spec.md §3, §4.J).
var elcContractAddress = ELCAddress

// Miner is a registered block producer committed to a hash-onion chain
// (spec.md §3).
type Miner struct {
	Host                string
	Address             Address
	HashOnionSkin       [32]byte
	HashOnionLayersLeft uint64
}

// IssuanceRewards returns address's unharvested ELC issuance rewards
// (spec.md §3).
func IssuanceRewards(db *Db, address Address) uint64 {
	return GetValue[uint64](db, ContractIDEllipticoin, ellipticoinFieldIssuanceRewards, AddressKey(address))
}

func setIssuanceRewards(db *Db, address Address, amount uint64) {
	SetValue(db, ContractIDEllipticoin, ellipticoinFieldIssuanceRewards, amount, AddressKey(address))
}

func getMiners(db *Db) []Miner {
	return GetValue[[]Miner](db, ContractIDEllipticoin, ellipticoinFieldMiners)
}

func setMiners(db *Db, miners []Miner) {
	SetValue(db, ContractIDEllipticoin, ellipticoinFieldMiners, miners)
}

// Miners returns the current miner list; its head is the current leader
// (spec.md §3 invariant).
func Miners(db *Db) []Miner {
	return getMiners(db)
}

// StartMining registers sender as a miner, committing to the tail of a
// sender-specific hash-onion chain (spec.md §4.J). sender must be on the
// static MinerAllowList.
func StartMining(db *Db, sender Address, host string, hashOnionSkin [32]byte, layerCount uint64) error {
	if _, ok := MinerAllowList[sender]; !ok {
		return ErrNotAllowListed
	}
	m := Miner{Host: host, Address: sender, HashOnionSkin: hashOnionSkin, HashOnionLayersLeft: layerCount}
	setMiners(db, append(getMiners(db), m))
	return nil
}

// Seal is the terminal action of a block (spec.md §4.J, the most
// important method). sender must be the current leader (miners[0]) and
// hashOnionSkin must hash (SHA-256) to miners[0]'s committed skin; on any
// failure no state changes (spec.md §8 property 6).
func Seal(db *Db, sender Address, hashOnionSkin [32]byte) error {
	miners := getMiners(db)
	if len(miners) == 0 || miners[0].Address != sender {
		return ErrNotWinner
	}
	if Sha256(hashOnionSkin[:]) != miners[0].HashOnionSkin {
		return ErrInvalidOnionSkin
	}

	winner := miners[0]
	winner.HashOnionSkin = hashOnionSkin
	winner.HashOnionLayersLeft--
	miners[0] = winner

	settleBlockRewards(db, miners, winner)
	miners = shuffleMiners(miners, hashOnionSkin)
	setMiners(db, miners)

	issueBlockRewards(db, BlockNumber(db)+1)
	IncrementBlockNumber(db)
	return nil
}

// settleBlockRewards is a placeholder for a burn-per-block economic
// mechanism the original leaves at zero (spec.md §4.J, §9 open question):
// it transfers a zero amount of ELC from every miner to the winner, kept
// as a loop so a future nonzero burn only needs this function's amount
// changed.
func settleBlockRewards(db *Db, miners []Miner, winner Miner) {
	const burnPerBlock = 0
	for _, m := range miners {
		if burnPerBlock == 0 {
			continue
		}
		_ = Transfer(db, m.Address, winner.Address, burnPerBlock, ELCAddress)
	}
}

// shuffleMiners draws a uniformly random permutation of miners, seeded by
// the just-revealed hash-onion skin so every replica reproduces the same
// permutation bit-for-bit (spec.md §4.J). It repeatedly picks a uniformly
// random remaining element and pops it, rather than an in-place swap
// shuffle, matching the original's "choose, remove from remaining" shape.
func shuffleMiners(miners []Miner, seed [32]byte) []Miner {
	if len(miners) < 2 {
		return miners
	}
	src := rand.NewSource(int64(foldSeed(seed)))
	rng := rand.New(src)

	remaining := append([]Miner(nil), miners...)
	shuffled := make([]Miner, 0, len(miners))
	for len(remaining) > 0 {
		i := rng.Intn(len(remaining))
		shuffled = append(shuffled, remaining[i])
		remaining = append(remaining[:i], remaining[i+1:]...)
	}
	return shuffled
}

// foldSeed combines all 32 bytes of a revealed hash-onion skin into a
// single rand.Source seed (rather than truncating to its first 8
// bytes), so the full commitment entropy feeds the leader shuffle.
func foldSeed(seed [32]byte) uint64 {
	var folded uint64
	for i := 0; i < len(seed); i += 8 {
		folded ^= binary.BigEndian.Uint64(seed[i : i+8])
	}
	return folded
}

// blockRewardAt returns the ELC issuance for block b: zero after
// BlocksPerEra*NumberOfEras blocks; otherwise the era-0 base reward halved
// once per era (spec.md §4.J).
func blockRewardAt(b uint64) uint64 {
	if b > BlocksPerEra*NumberOfEras {
		return 0
	}
	era := b / BlocksPerEra
	base := uint64(BaseFactor) * baseBlockRewardNumerator / baseBlockRewardDenominator
	return base >> era
}

// issueBlockRewards mints blockRewardAt(newBlockNumber) ELC, split evenly
// across IncentivisedPools, and distributes each pool's share to its
// liquidity providers proportional to their AMM balance (spec.md §4.J).
func issueBlockRewards(db *Db, newBlockNumber uint64) {
	reward := blockRewardAt(newBlockNumber)
	if reward == 0 || len(IncentivisedPools) == 0 {
		return
	}
	Mint(db, reward, ELCAddress, elcContractAddress)

	perPool := reward / uint64(len(IncentivisedPools))
	for _, pool := range IncentivisedPools {
		providers := LiquidityProviders(db, pool)
		if len(providers) == 0 {
			continue
		}
		balances := make([]uint64, len(providers))
		for i, p := range providers {
			balances[i] = LiquidityTokenBalance(db, p, pool)
		}
		shares := distribute(perPool, balances)
		for i, p := range providers {
			setIssuanceRewards(db, p, IssuanceRewards(db, p)+shares[i])
		}
	}
}

// distribute allocates amount across balances proportionally, guaranteeing
// the allocations sum to exactly amount regardless of rounding whenever
// at least one balance is nonzero; if every balance is zero, every
// allocation is 0 (spec.md §4.J, §8 property 4). It iterates in reverse,
// dividing the remaining amount by the remaining sum at each step and
// subtracting the allocation, so earlier (by index) entries absorb the
// rounding remainder. Each remaining*balance product is taken through
// mulDiv's big.Int intermediate, so it cannot overflow 64 bits.
func distribute(amount uint64, balances []uint64) []uint64 {
	allocations := make([]uint64, len(balances))
	var sum uint64
	for _, b := range balances {
		sum += b
	}
	remaining := amount
	remainingSum := sum
	for i := len(balances) - 1; i >= 0; i-- {
		if remainingSum == 0 {
			allocations[i] = 0
			continue
		}
		share := mulDiv(remaining, balances[i], remainingSum)
		allocations[i] = share
		remaining -= share
		remainingSum -= balances[i]
	}
	return allocations
}

// Harvest debits sender's issuance rewards to zero and pays out the ELC
// from the Ellipticoin contract's own address (spec.md §4.J).
func Harvest(db *Db, sender Address) error {
	amount := IssuanceRewards(db, sender)
	if amount == 0 {
		return nil
	}
	setIssuanceRewards(db, sender, 0)
	return Transfer(db, elcContractAddress, sender, amount, ELCAddress)
}
