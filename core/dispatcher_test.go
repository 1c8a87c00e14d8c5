package core

import "testing"

func TestDispatchPayCommitsOnSuccess(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 100)
	db.Commit()

	err := Dispatch(db, alice, Action{Kind: ActionPay, PayAmount: 30, PayToken: apple, PayRecipient: bob})
	if err != nil {
		t.Fatalf("Dispatch() err = %v", err)
	}
	if got := GetBalance(db, alice, apple); got != 70 {
		t.Fatalf("alice balance = %d, want 70", got)
	}
	if got := GetBalance(db, bob, apple); got != 30 {
		t.Fatalf("bob balance = %d, want 30", got)
	}
	if got := TransactionNumber(db, alice); got != 1 {
		t.Fatalf("TransactionNumber(alice) = %d, want 1", got)
	}
}

func TestDispatchRevertsOnFailureButKeepsTransactionCounterReverted(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 10)
	db.Commit()

	err := Dispatch(db, alice, Action{Kind: ActionPay, PayAmount: 1000, PayToken: apple, PayRecipient: bob})
	if err != ErrInsufficientBalance {
		t.Fatalf("Dispatch() err = %v, want ErrInsufficientBalance", err)
	}
	if got := GetBalance(db, alice, apple); got != 10 {
		t.Fatalf("alice balance after failed dispatch = %d, want unchanged 10", got)
	}
	if got := TransactionNumber(db, alice); got != 0 {
		t.Fatalf("TransactionNumber(alice) after failed dispatch = %d, want 0 (reverted)", got)
	}
}

func TestDispatchUnknownActionKind(t *testing.T) {
	db := newTestDb()
	if err := Dispatch(db, alice, Action{Kind: ActionKind(200)}); err != ErrNotAuthorized {
		t.Fatalf("Dispatch(unknown kind) err = %v, want ErrNotAuthorized", err)
	}
}

func TestDispatchCreatePool(t *testing.T) {
	db := newTestDb()
	Credit(db, alice, apple, 200*BaseFactor)
	Credit(db, alice, BaseToken, 200*BaseFactor)
	db.Commit()

	if err := Dispatch(db, alice, Action{
		Kind: ActionCreatePool, CreatePoolAmount: 100 * BaseFactor, CreatePoolToken: apple, CreatePoolStartingPrice: BaseFactor,
	}); err != nil {
		t.Fatalf("Dispatch(CreatePool) err = %v", err)
	}
	if !poolExists(db, apple) {
		t.Fatalf("pool for apple not created")
	}
}
