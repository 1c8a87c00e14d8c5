package core

import "math/big"

// AMM field ids (spec.md §3).
const (
	ammFieldBalance                uint16 = 0 // liquidity-token balance
	ammFieldTotalSupply            uint16 = 1 // liquidity-token total supply
	ammFieldPoolSupplyOfToken      uint16 = 2
	ammFieldPoolSupplyOfBaseToken  uint16 = 3
	ammFieldLiquidityProviders     uint16 = 4
)

// ammAddress is the AMM contract's own synthetic address; pool reserves
// are held there.
var ammAddress = ContractAddress(ContractIDAMM)

func ammLPBalance(db *Db, holder, token Address) uint64 {
	return GetValue[uint64](db, ContractIDAMM, ammFieldBalance, AddressKey(holder), AddressKey(token))
}

func setAMMLPBalance(db *Db, holder, token Address, amount uint64) {
	SetValue(db, ContractIDAMM, ammFieldBalance, amount, AddressKey(holder), AddressKey(token))
}

// LiquidityTokenBalance returns holder's liquidity-token balance for
// token's pool.
func LiquidityTokenBalance(db *Db, holder, token Address) uint64 {
	return ammLPBalance(db, holder, token)
}

func ammTotalSupply(db *Db, token Address) uint64 {
	return GetValue[uint64](db, ContractIDAMM, ammFieldTotalSupply, AddressKey(token))
}

func setAMMTotalSupply(db *Db, token Address, amount uint64) {
	SetValue(db, ContractIDAMM, ammFieldTotalSupply, amount, AddressKey(token))
}

// PoolSupplyOfToken returns the pool's reserve of token.
func PoolSupplyOfToken(db *Db, token Address) uint64 {
	return GetValue[uint64](db, ContractIDAMM, ammFieldPoolSupplyOfToken, AddressKey(token))
}

func setPoolSupplyOfToken(db *Db, token Address, amount uint64) {
	SetValue(db, ContractIDAMM, ammFieldPoolSupplyOfToken, amount, AddressKey(token))
}

// PoolSupplyOfBaseToken returns the pool's reserve of base token for
// token's pool.
func PoolSupplyOfBaseToken(db *Db, token Address) uint64 {
	return GetValue[uint64](db, ContractIDAMM, ammFieldPoolSupplyOfBaseToken, AddressKey(token))
}

func setPoolSupplyOfBaseToken(db *Db, token Address, amount uint64) {
	SetValue(db, ContractIDAMM, ammFieldPoolSupplyOfBaseToken, amount, AddressKey(token))
}

// LiquidityProviders returns the ordered set of addresses holding a
// nonzero liquidity-token balance for token's pool (spec.md §3).
func LiquidityProviders(db *Db, token Address) []Address {
	return GetValue[[]Address](db, ContractIDAMM, ammFieldLiquidityProviders, AddressKey(token))
}

func setLiquidityProviders(db *Db, token Address, providers []Address) {
	SetValue(db, ContractIDAMM, ammFieldLiquidityProviders, providers, AddressKey(token))
}

func addLiquidityProvider(db *Db, token, provider Address) {
	providers := LiquidityProviders(db, token)
	for _, p := range providers {
		if p == provider {
			return
		}
	}
	setLiquidityProviders(db, token, append(providers, provider))
}

func removeLiquidityProvider(db *Db, token, provider Address) {
	providers := LiquidityProviders(db, token)
	out := make([]Address, 0, len(providers))
	for _, p := range providers {
		if p != provider {
			out = append(out, p)
		}
	}
	setLiquidityProviders(db, token, out)
}

// poolExists reports whether token already has a pool (spec.md §4.E).
func poolExists(db *Db, token Address) bool {
	return ammTotalSupply(db, token) > 0
}

// Fee returns the trading fee for amount: max(amount*FEE/BASE_FACTOR, 1)
// (spec.md §4.E).
func Fee(amount uint64) uint64 {
	f := amount * AMMFee / BaseFactor
	if f < 1 {
		return 1
	}
	return f
}

// CreatePool opens a new constant-product pool for token, seeded with
// amount of token and amount*startingPrice/BASE_FACTOR of base token taken
// from sender; mints amount liquidity tokens to sender (spec.md §4.E).
func CreatePool(db *Db, sender Address, amount uint64, token Address, startingPrice uint64) error {
	if poolExists(db, token) {
		return ErrPoolAlreadyExists
	}
	baseAmount := mulDiv(amount, startingPrice, BaseFactor)
	if err := Transfer(db, sender, ammAddress, amount, token); err != nil {
		return err
	}
	if err := Transfer(db, sender, ammAddress, baseAmount, BaseToken); err != nil {
		return err
	}
	setPoolSupplyOfToken(db, token, amount)
	setPoolSupplyOfBaseToken(db, token, baseAmount)
	setAMMTotalSupply(db, token, amount)
	setAMMLPBalance(db, sender, token, amount)
	addLiquidityProvider(db, token, sender)
	return nil
}

// AddLiquidity deposits more of token (and its proportional share of base
// token) into an existing pool, minting liquidity tokens proportionally
// (spec.md §4.E).
func AddLiquidity(db *Db, sender Address, amount uint64, token Address) error {
	if !poolExists(db, token) {
		return ErrPoolNotFound
	}
	t := PoolSupplyOfToken(db, token)
	b := PoolSupplyOfBaseToken(db, token)
	supply := ammTotalSupply(db, token)
	baseAmount := mulDiv(amount, b, t)
	minted := mulDiv(amount, supply, t)

	if err := Transfer(db, sender, ammAddress, amount, token); err != nil {
		return err
	}
	if err := Transfer(db, sender, ammAddress, baseAmount, BaseToken); err != nil {
		return err
	}
	setPoolSupplyOfToken(db, token, t+amount)
	setPoolSupplyOfBaseToken(db, token, b+baseAmount)
	setAMMTotalSupply(db, token, supply+minted)
	setAMMLPBalance(db, sender, token, ammLPBalance(db, sender, token)+minted)
	addLiquidityProvider(db, token, sender)
	return nil
}

// RemoveLiquidity burns percentage (out of BASE_FACTOR) of sender's
// liquidity-token balance in token's pool, paying out the proportional
// share of both reserves (spec.md §4.E).
func RemoveLiquidity(db *Db, sender Address, percentage uint64, token Address) error {
	if !poolExists(db, token) {
		return ErrPoolNotFound
	}
	lpBalance := ammLPBalance(db, sender, token)
	burned := mulDiv(lpBalance, percentage, BaseFactor)
	if burned == 0 {
		return nil
	}
	supply := ammTotalSupply(db, token)
	t := PoolSupplyOfToken(db, token)
	b := PoolSupplyOfBaseToken(db, token)
	tokenOut := mulDiv(burned, t, supply)
	baseOut := mulDiv(burned, b, supply)

	setAMMLPBalance(db, sender, token, lpBalance-burned)
	setAMMTotalSupply(db, token, supply-burned)
	setPoolSupplyOfToken(db, token, t-tokenOut)
	setPoolSupplyOfBaseToken(db, token, b-baseOut)
	if err := Transfer(db, ammAddress, sender, tokenOut, token); err != nil {
		return err
	}
	if err := Transfer(db, ammAddress, sender, baseOut, BaseToken); err != nil {
		return err
	}

	if ammLPBalance(db, sender, token) == 0 {
		removeLiquidityProvider(db, token, sender)
	}
	return nil
}

// sell trades inputAmount of token (net of fee) for base token, updating
// the pool reserves via the constant-product formula, and returns the
// base-token amount received.
func sell(db *Db, token Address, inputAmount uint64) (uint64, error) {
	fee := Fee(inputAmount)
	if fee > inputAmount {
		return 0, ErrFeeExceedsAmount
	}
	netInput := inputAmount - fee
	t := PoolSupplyOfToken(db, token)
	b := PoolSupplyOfBaseToken(db, token)
	newT, newB := constantProduct(t, b, netInput)
	out := b - newB
	setPoolSupplyOfToken(db, token, newT+fee)
	setPoolSupplyOfBaseToken(db, token, newB)
	return out, nil
}

// buy trades baseAmount of base token for token, symmetric to sell.
func buy(db *Db, token Address, baseAmount uint64) (uint64, error) {
	fee := Fee(baseAmount)
	if fee > baseAmount {
		return 0, ErrFeeExceedsAmount
	}
	netInput := baseAmount - fee
	t := PoolSupplyOfToken(db, token)
	b := PoolSupplyOfBaseToken(db, token)
	newB, newT := constantProduct(b, t, netInput)
	out := t - newT
	setPoolSupplyOfBaseToken(db, token, newB+fee)
	setPoolSupplyOfToken(db, token, newT)
	return out, nil
}

// constantProduct computes the new (supplyIn, supplyOut) reserves after
// depositing netInput of the input side, using a big.Int intermediate so
// the s_i*s_o product never overflows 64 bits (spec.md §4.E, §9).
func constantProduct(supplyIn, supplyOut, netInput uint64) (newSupplyIn, newSupplyOut uint64) {
	newIn := supplyIn + netInput
	product := new(big.Int).Mul(new(big.Int).SetUint64(supplyIn), new(big.Int).SetUint64(supplyOut))
	newOut := new(big.Int).Div(product, new(big.Int).SetUint64(newIn))
	return newIn, newOut.Uint64()
}

// mulDiv computes a*b/c using a big.Int intermediate, avoiding 64-bit
// overflow in the numerator.
func mulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	v := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	v.Div(v, new(big.Int).SetUint64(c))
	return v.Uint64()
}

// Trade routes sender's inputAmount of inputToken through the base token
// to outputToken, failing if the output falls below minimumOutputAmount
// (spec.md §4.E). Trades into/out of the leveraged base token skip the
// corresponding sell/buy leg since it settles directly in base token.
func Trade(db *Db, sender Address, inputAmount uint64, inputToken Address, minimumOutputAmount uint64, outputToken Address) error {
	if err := Transfer(db, sender, ammAddress, inputAmount, inputToken); err != nil {
		return err
	}

	baseAmount := inputAmount
	if inputToken != LeveragedBaseToken {
		if !poolExists(db, inputToken) {
			return ErrPoolNotFound
		}
		out, err := sell(db, inputToken, inputAmount)
		if err != nil {
			return err
		}
		baseAmount = out
	}

	outputAmount := baseAmount
	if outputToken != LeveragedBaseToken {
		if !poolExists(db, outputToken) {
			return ErrPoolNotFound
		}
		out, err := buy(db, outputToken, baseAmount)
		if err != nil {
			return err
		}
		outputAmount = out
	}

	if outputAmount < minimumOutputAmount {
		return ErrMaxSlippageExceeded
	}
	return Transfer(db, ammAddress, sender, outputAmount, outputToken)
}
