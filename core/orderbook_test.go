package core

import "testing"

func TestCreateFillOrder(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 100*BaseFactor)

	orderID, err := CreateOrder(db, alice, OrderTypeSell, apple, 10*BaseFactor, 2*BaseFactor)
	if err != nil {
		t.Fatalf("CreateOrder() err = %v", err)
	}
	if got := GetBalance(db, alice, apple); got != 90*BaseFactor {
		t.Fatalf("alice APPLES after escrow = %d, want %d", got, 90*BaseFactor)
	}

	Credit(db, bob, BaseToken, 20*BaseFactor)
	if err := FillOrder(db, bob, orderID); err != nil {
		t.Fatalf("FillOrder() err = %v", err)
	}
	if got := GetBalance(db, bob, apple); got != 10*BaseFactor {
		t.Fatalf("bob APPLES after fill = %d, want %d", got, 10*BaseFactor)
	}
	if got := GetBalance(db, alice, BaseToken); got != 20*BaseFactor {
		t.Fatalf("alice base token after fill = %d, want %d", got, 20*BaseFactor)
	}
	if _, _, ok := findOrder(db, orderID); ok {
		t.Fatalf("order %d still present after fill", orderID)
	}
}

func TestCancelOrderRefundsEscrowAndRequiresSender(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 50*BaseFactor)

	orderID, err := CreateOrder(db, alice, OrderTypeSell, apple, 5*BaseFactor, BaseFactor)
	if err != nil {
		t.Fatalf("CreateOrder() err = %v", err)
	}
	if err := CancelOrder(db, bob, orderID); err != ErrNotAuthorized {
		t.Fatalf("CancelOrder(wrong sender) err = %v, want ErrNotAuthorized", err)
	}
	if err := CancelOrder(db, alice, orderID); err != nil {
		t.Fatalf("CancelOrder() err = %v", err)
	}
	if got := GetBalance(db, alice, apple); got != 50*BaseFactor {
		t.Fatalf("alice APPLES after cancel = %d, want %d", got, 50*BaseFactor)
	}
	if err := CancelOrder(db, alice, orderID); err != ErrOrderNotFound {
		t.Fatalf("double CancelOrder() err = %v, want ErrOrderNotFound", err)
	}
}

func TestFillOrderNotFound(t *testing.T) {
	db := newTestDb()
	if err := FillOrder(db, bob, 999); err != ErrOrderNotFound {
		t.Fatalf("FillOrder(missing) err = %v, want ErrOrderNotFound", err)
	}
}
