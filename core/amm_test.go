package core

import "testing"

var (
	bananas = Address{0xBB}
)

func setupApplesBananasPools(t *testing.T, db *Db) {
	t.Helper()
	Credit(db, alice, apple, 100*BaseFactor)
	Credit(db, alice, bananas, 100*BaseFactor)
	Credit(db, alice, BaseToken, 200*BaseFactor)
	if err := CreatePool(db, alice, 100*BaseFactor, apple, BaseFactor); err != nil {
		t.Fatalf("CreatePool(apple) err = %v", err)
	}
	if err := CreatePool(db, alice, 100*BaseFactor, bananas, BaseFactor); err != nil {
		t.Fatalf("CreatePool(bananas) err = %v", err)
	}
}

func TestTradeConstantProduct(t *testing.T) {
	db := newTestDb()
	setupApplesBananasPools(t, db)
	Credit(db, bob, bananas, 100*BaseFactor)

	if err := Trade(db, bob, 100*BaseFactor, bananas, 0, apple); err != nil {
		t.Fatalf("Trade() err = %v", err)
	}
	if got, want := GetBalance(db, bob, apple), uint64(33_233_234); got != want {
		t.Fatalf("bob APPLES balance = %d, want %d", got, want)
	}
}

func TestTradeSlippageExceeded(t *testing.T) {
	db := newTestDb()
	setupApplesBananasPools(t, db)
	Credit(db, bob, bananas, 100*BaseFactor)
	db.Commit()

	bananasBefore := GetBalance(db, bob, bananas)
	applesBefore := GetBalance(db, bob, apple)

	// Through Dispatch, the transaction boundary that reverts a failed trade.
	err := Dispatch(db, bob, Action{
		Kind: ActionTrade, TradeInputAmount: 100 * BaseFactor, TradeInputToken: bananas,
		TradeMinimumOutputAmount: 33_233_235, TradeOutputToken: apple,
	})
	if err != ErrMaxSlippageExceeded {
		t.Fatalf("Trade() err = %v, want ErrMaxSlippageExceeded", err)
	}
	if got := GetBalance(db, bob, bananas); got != bananasBefore {
		t.Errorf("bob BANANAS balance changed: got %d, want %d", got, bananasBefore)
	}
	if got := GetBalance(db, bob, apple); got != applesBefore {
		t.Errorf("bob APPLES balance changed: got %d, want %d", got, applesBefore)
	}
}

func TestAddRemoveLiquidity(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 200*BaseFactor)
	Credit(db, alice, BaseToken, 200*BaseFactor)
	if err := CreatePool(db, alice, 100*BaseFactor, apple, BaseFactor); err != nil {
		t.Fatalf("CreatePool() err = %v", err)
	}
	if err := AddLiquidity(db, alice, 50*BaseFactor, apple); err != nil {
		t.Fatalf("AddLiquidity() err = %v", err)
	}
	if got, want := LiquidityTokenBalance(db, alice, apple), uint64(150*BaseFactor); got != want {
		t.Fatalf("liquidity token balance = %d, want %d", got, want)
	}
	if err := RemoveLiquidity(db, alice, BaseFactor, apple); err != nil {
		t.Fatalf("RemoveLiquidity() err = %v", err)
	}
	if got := LiquidityTokenBalance(db, alice, apple); got != 0 {
		t.Fatalf("liquidity token balance after full removal = %d, want 0", got)
	}
	providers := LiquidityProviders(db, apple)
	if len(providers) != 0 {
		t.Fatalf("liquidity providers after full removal = %v, want none", providers)
	}
}

func TestCreatePoolAlreadyExists(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 200*BaseFactor)
	Credit(db, alice, BaseToken, 200*BaseFactor)
	if err := CreatePool(db, alice, 100*BaseFactor, apple, BaseFactor); err != nil {
		t.Fatalf("CreatePool() err = %v", err)
	}
	if err := CreatePool(db, alice, 100*BaseFactor, apple, BaseFactor); err != ErrPoolAlreadyExists {
		t.Fatalf("second CreatePool() err = %v, want ErrPoolAlreadyExists", err)
	}
}
