package core

import (
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a CBOR-encodable arbitrary-precision unsigned integer, used for
// Token's base-token exchange rate (spec.md §3, §4.D). It is encoded as a
// CBOR byte string of its big-endian magnitude.
type BigInt big.Int

// NewBigInt wraps v.
func NewBigInt(v *big.Int) BigInt {
	if v == nil {
		return BigInt{}
	}
	return BigInt(*v)
}

// BigIntFromUint64 constructs a BigInt from a uint64.
func BigIntFromUint64(v uint64) BigInt {
	return BigInt(*new(big.Int).SetUint64(v))
}

// Int returns the *big.Int view of b.
func (b BigInt) Int() *big.Int {
	v := big.Int(b)
	return &v
}

func (b BigInt) MarshalCBOR() ([]byte, error) {
	v := big.Int(b)
	return cbor.Marshal(v.Bytes())
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	(*big.Int)(b).SetBytes(raw)
	return nil
}
