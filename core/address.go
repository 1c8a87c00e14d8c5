package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// AddressLength is the width in bytes of every Address on this chain,
// matching the Ethereum-style 20-byte address used by the peerchain.
const AddressLength = 20

// Address identifies either an externally-owned account (derived from a
// secp256k1 verifying key, §4.C) or a built-in contract (a synthetic
// address derived from its 16-bit contract id, §3).
type Address [AddressLength]byte

// ZeroAddress is the default/absent address value.
var ZeroAddress Address

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address's 20 bytes, suitable for use as a
// Db key part.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLength)
	copy(b, a[:])
	return b
}

// AddressFromBytes converts b to an Address. b is never truncated or
// padded: any length other than AddressLength bytes is an error.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("address: want %d bytes, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromPublicKey derives an Ethereum-style address from an
// uncompressed secp256k1 public key (65 bytes, 0x04 prefix): the last 20
// bytes of the Keccak-256 hash of the 64 coordinate bytes (spec.md §4.C).
func AddressFromPublicKey(uncompressedPubKey []byte) (Address, error) {
	if len(uncompressedPubKey) != 65 || uncompressedPubKey[0] != 0x04 {
		return Address{}, fmt.Errorf("address: expected 65-byte uncompressed public key")
	}
	h := crypto.Keccak256(uncompressedPubKey[1:])
	return AddressFromBytes(h[len(h)-AddressLength:])
}

// ContractAddress derives the fixed synthetic address for a built-in
// contract: its 16-bit id, big-endian, left-padded with zeros to
// AddressLength (spec.md §3).
func ContractAddress(contractID uint16) Address {
	var a Address
	binary.BigEndian.PutUint16(a[AddressLength-2:], contractID)
	return a
}
