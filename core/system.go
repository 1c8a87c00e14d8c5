package core

import "encoding/binary"

// System field ids (spec.md §3).
const (
	systemFieldBlockNumber      uint16 = 0
	systemFieldTransactionNumber uint16 = 1
)

// LegacyAddressLength is the width of a legacy Ed25519 verifying key used
// as a migration source (spec.md §4.I).
const LegacyAddressLength = 32

// BlockNumber returns the current block height (spec.md §3).
func BlockNumber(db *Db) uint64 {
	return GetValue[uint64](db, ContractIDSystem, systemFieldBlockNumber)
}

// IncrementBlockNumber advances the block height by one, called once per
// sealed block (spec.md §4.I).
func IncrementBlockNumber(db *Db) {
	SetValue(db, ContractIDSystem, systemFieldBlockNumber, BlockNumber(db)+1)
}

// TransactionNumber returns the last transaction number committed for
// address, 0 if none (spec.md §3).
func TransactionNumber(db *Db, address Address) uint64 {
	return GetValue[uint64](db, ContractIDSystem, systemFieldTransactionNumber, AddressKey(address))
}

// IncrementTransactionNumber advances address's transaction counter by one
// (spec.md §4.I).
func IncrementTransactionNumber(db *Db, address Address) {
	SetValue(db, ContractIDSystem, systemFieldTransactionNumber, TransactionNumber(db, address)+1, AddressKey(address))
}

// GetNextTransactionNumber returns the transaction number a new
// transaction from address must carry: max(current+1, 1), so it is never
// zero (spec.md §4.I).
func GetNextTransactionNumber(db *Db, address Address) uint64 {
	next := TransactionNumber(db, address) + 1
	if next < 1 {
		return 1
	}
	return next
}

// Migrate authenticates sender's control of a legacy 32-byte Ed25519
// address via legacySignature, then moves every token balance, harvested
// Ellipticoin reward, and AMM liquidity-token balance held under the
// 20-byte prefix of the legacy address over to sender (spec.md §4.I).
func Migrate(db *Db, sender Address, legacyAddress [LegacyAddressLength]byte, legacySignature []byte) error {
	if err := Ed25519Verify(sender.Bytes(), legacyAddress[:], legacySignature); err != nil {
		return err
	}
	legacy, err := AddressFromBytes(legacyAddress[:AddressLength])
	if err != nil {
		return err
	}

	for _, token := range knownTokens(db) {
		migrateKeyed2(db, ContractIDToken, tokenFieldBalance, legacy, sender, token)
		migrateKeyed2(db, ContractIDAMM, ammFieldBalance, legacy, sender, token)
	}
	migrateKeyed1(db, ContractIDEllipticoin, ellipticoinFieldIssuanceRewards, legacy, sender)
	return nil
}

// knownTokens lists every token address that has ever had a nonzero
// circulating supply, by scanning Token's total_supply entries. This is
// the migration scan's enumeration of "every token" since the Db has no
// separate token registry (spec.md §3).
func knownTokens(db *Db) []Address {
	prefix := make([]byte, 4)
	binary.LittleEndian.PutUint16(prefix[0:2], ContractIDToken)
	binary.LittleEndian.PutUint16(prefix[2:4], tokenFieldTotalSupply)

	var tokens []Address
	db.All(func(key, _ []byte) bool {
		if len(key) != 4+AddressLength {
			return true
		}
		for i := 0; i < 4; i++ {
			if key[i] != prefix[i] {
				return true
			}
		}
		addr, err := AddressFromBytes(key[4:])
		if err == nil {
			tokens = append(tokens, addr)
		}
		return true
	})
	return tokens
}

// migrateKeyed2 moves a (holder, token)-keyed u64 value from legacy to
// sender for a single token, zeroing the legacy entry.
func migrateKeyed2(db *Db, contractID, fieldID uint16, legacy, sender, token Address) {
	amount := GetValue[uint64](db, contractID, fieldID, AddressKey(legacy), AddressKey(token))
	if amount == 0 {
		return
	}
	existing := GetValue[uint64](db, contractID, fieldID, AddressKey(sender), AddressKey(token))
	SetValue(db, contractID, fieldID, existing+amount, AddressKey(sender), AddressKey(token))
	SetValue(db, contractID, fieldID, uint64(0), AddressKey(legacy), AddressKey(token))
}

// migrateKeyed1 moves a (address)-keyed u64 value from legacy to sender,
// zeroing the legacy entry.
func migrateKeyed1(db *Db, contractID, fieldID uint16, legacy, sender Address) {
	amount := GetValue[uint64](db, contractID, fieldID, AddressKey(legacy))
	if amount == 0 {
		return
	}
	existing := GetValue[uint64](db, contractID, fieldID, AddressKey(sender))
	SetValue(db, contractID, fieldID, existing+amount, AddressKey(sender))
	SetValue(db, contractID, fieldID, uint64(0), AddressKey(legacy))
}
