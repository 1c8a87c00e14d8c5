package core

import "testing"

func newTestDb() *Db {
	return NewDb(NewMemoryBackend())
}

var (
	alice = Address{0x01}
	bob   = Address{0x02}
	apple = Address{0xAA}
)

func TestTransfer(t *testing.T) {
	tests := []struct {
		name        string
		balance     uint64
		amount      uint64
		wantErr     bool
		wantAlice   uint64
		wantBob     uint64
	}{
		{"sufficient balance", 100, 40, false, 60, 40},
		{"exact balance", 100, 100, false, 0, 100},
		{"insufficient balance", 100, 101, true, 100, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := newTestDb()
			Credit(db, alice, apple, tc.balance)
			err := Transfer(db, alice, bob, tc.amount, apple)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Transfer() err = %v, wantErr %v", err, tc.wantErr)
			}
			if got := GetBalance(db, alice, apple); got != tc.wantAlice {
				t.Errorf("alice balance = %d, want %d", got, tc.wantAlice)
			}
			if got := GetBalance(db, bob, apple); got != tc.wantBob {
				t.Errorf("bob balance = %d, want %d", got, tc.wantBob)
			}
		})
	}
}

func TestMintBurnTotalSupply(t *testing.T) {
	db := newTestDb()
	Mint(db, 1000, apple, alice)
	if got := GetTotalSupply(db, apple); got != 1000 {
		t.Fatalf("total supply after mint = %d, want 1000", got)
	}
	if err := Burn(db, 400, apple, alice); err != nil {
		t.Fatalf("Burn() err = %v", err)
	}
	if got := GetTotalSupply(db, apple); got != 600 {
		t.Fatalf("total supply after burn = %d, want 600", got)
	}
	if err := Burn(db, 1000, apple, alice); err == nil {
		t.Fatalf("expected Burn to fail on insufficient balance")
	}
}

func TestAmountToUnderlyingRoundTrip(t *testing.T) {
	db := newTestDb()
	// A rate of 10^12 is the identity point: amount * rate / 10^12 == amount.
	SetBaseTokenExchangeRate(db, BigIntFromUint64(1_000_000_000_000))
	amount := uint64(10 * BaseFactor)
	underlying := AmountToUnderlying(db, LeveragedBaseToken, amount)
	if underlying != amount {
		t.Fatalf("AmountToUnderlying() at identity rate = %d, want %d", underlying, amount)
	}
	back := UnderlyingToAmount(db, LeveragedBaseToken, underlying)
	if back != amount {
		t.Fatalf("UnderlyingToAmount() = %d, want %d", back, amount)
	}
	if got := AmountToUnderlying(db, apple, 123); got != 123 {
		t.Fatalf("non-base token should be 1:1, got %d", got)
	}
}
