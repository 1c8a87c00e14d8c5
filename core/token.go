package core

import "math/big"

// Token field ids (spec.md §3).
const (
	tokenFieldBalance               uint16 = 0
	tokenFieldTotalSupply           uint16 = 1
	tokenFieldBaseTokenExchangeRate uint16 = 2
	tokenFieldBaseTokenInterestRate uint16 = 3
)

// GetBalance returns holder's balance of token, 0 if never set
// (spec.md §3, §4.D).
func GetBalance(db *Db, holder, token Address) uint64 {
	return GetValue[uint64](db, ContractIDToken, tokenFieldBalance, AddressKey(holder), AddressKey(token))
}

func setBalance(db *Db, holder, token Address, amount uint64) {
	SetValue(db, ContractIDToken, tokenFieldBalance, amount, AddressKey(holder), AddressKey(token))
}

// GetTotalSupply returns the total circulating supply of token.
func GetTotalSupply(db *Db, token Address) uint64 {
	return GetValue[uint64](db, ContractIDToken, tokenFieldTotalSupply, AddressKey(token))
}

func setTotalSupply(db *Db, token Address, amount uint64) {
	SetValue(db, ContractIDToken, tokenFieldTotalSupply, amount, AddressKey(token))
}

// GetBaseTokenExchangeRate returns the current exchange rate R for the
// leveraged base token (spec.md §4.D).
func GetBaseTokenExchangeRate(db *Db) BigInt {
	return GetValue[BigInt](db, ContractIDToken, tokenFieldBaseTokenExchangeRate)
}

// SetBaseTokenExchangeRate updates R, as observed from the peerchain
// (spec.md §4.M).
func SetBaseTokenExchangeRate(db *Db, rate BigInt) {
	SetValue(db, ContractIDToken, tokenFieldBaseTokenExchangeRate, rate)
}

// GetBaseTokenInterestRate returns the most recently observed per-block
// interest rate for the leveraged base token.
func GetBaseTokenInterestRate(db *Db) uint64 {
	return GetValue[uint64](db, ContractIDToken, tokenFieldBaseTokenInterestRate)
}

// SetBaseTokenInterestRate updates the observed interest rate
// (spec.md §4.M).
func SetBaseTokenInterestRate(db *Db, rate uint64) {
	SetValue(db, ContractIDToken, tokenFieldBaseTokenInterestRate, rate)
}

// Credit increases holder's balance; token's total supply is left
// unchanged (Mint adjusts it). It never fails (spec.md §4.D).
func Credit(db *Db, holder, token Address, amount uint64) {
	setBalance(db, holder, token, GetBalance(db, holder, token)+amount)
}

// Debit decreases holder's balance, failing if the balance underflows
// (spec.md §4.D).
func Debit(db *Db, holder, token Address, amount uint64) error {
	bal := GetBalance(db, holder, token)
	if bal < amount {
		return ErrInsufficientBalance
	}
	setBalance(db, holder, token, bal-amount)
	return nil
}

// Transfer moves amount of token from sender to recipient
// (spec.md §4.D, Action "Pay").
func Transfer(db *Db, sender, recipient Address, amount uint64, token Address) error {
	if err := Debit(db, sender, token, amount); err != nil {
		return err
	}
	Credit(db, recipient, token, amount)
	return nil
}

// Mint credits amount of token to `to` and grows total supply
// (spec.md §4.D). Called only from other built-in contracts (Bridge on
// deposit, Ellipticoin on issuance) — there is no standalone dispatcher
// action for it.
func Mint(db *Db, amount uint64, token, to Address) {
	Credit(db, to, token, amount)
	setTotalSupply(db, token, GetTotalSupply(db, token)+amount)
}

// Burn debits amount of token from `from` and shrinks total supply,
// failing on underflow (spec.md §4.D).
func Burn(db *Db, amount uint64, token, from Address) error {
	if err := Debit(db, from, token, amount); err != nil {
		return err
	}
	setTotalSupply(db, token, GetTotalSupply(db, token)-amount)
	return nil
}

// underlyingMantissaPow is 10^(BaseTokenMantissa+ExchangeRateMantissa).
var underlyingMantissaPow = new(big.Int).Exp(big.NewInt(10), big.NewInt(underlyingMantissaSum), nil)

// AmountToUnderlying converts an on-chain leveraged-base-token amount to
// its underlying amount via the exchange rate R: underlying = amount * R /
// 10^M (spec.md §4.D). Non-base tokens are 1:1.
func AmountToUnderlying(db *Db, token Address, amount uint64) uint64 {
	if token != LeveragedBaseToken {
		return amount
	}
	r := GetBaseTokenExchangeRate(db).Int()
	v := new(big.Int).Mul(new(big.Int).SetUint64(amount), r)
	v.Div(v, underlyingMantissaPow)
	return v.Uint64()
}

// UnderlyingToAmount is the inverse of AmountToUnderlying: amount =
// underlying * 10^M / R.
func UnderlyingToAmount(db *Db, token Address, underlying uint64) uint64 {
	if token != LeveragedBaseToken {
		return underlying
	}
	r := GetBaseTokenExchangeRate(db).Int()
	if r.Sign() == 0 {
		return 0
	}
	v := new(big.Int).Mul(new(big.Int).SetUint64(underlying), underlyingMantissaPow)
	v.Div(v, r)
	return v.Uint64()
}

// GetUnderlyingBalance returns holder's balance of token expressed in
// underlying units (spec.md §4.D).
func GetUnderlyingBalance(db *Db, holder, token Address) uint64 {
	return AmountToUnderlying(db, token, GetBalance(db, holder, token))
}

// GetUnderlyingTotalSupply returns token's total supply expressed in
// underlying units.
func GetUnderlyingTotalSupply(db *Db, token Address) uint64 {
	return AmountToUnderlying(db, token, GetTotalSupply(db, token))
}
