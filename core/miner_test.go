package core

import (
	"context"
	"testing"
	"time"
)

func TestDrainQueueAppliesTransactionsUntilStop(t *testing.T) {
	db := newTestDb()
	sender := signedPayer(t, db, apple, 100)

	txQueue := make(chan SignedTransaction, 2)
	txQueue <- signedPay(t, sender, 1, bob, apple, 30)
	txQueue <- signedPay(t, sender, 2, bob, apple, 20)

	stop := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		drainQueue(context.Background(), db, txQueue, stop)
		close(done)
	}()

	// give both queued transactions a chance to be read before stopping.
	time.Sleep(10 * time.Millisecond)
	close(stop)
	<-done

	if got := GetBalance(db, bob, apple); got != 50 {
		t.Fatalf("bob balance after drainQueue = %d, want 50", got)
	}
	if got := GetBalance(db, sender.address, apple); got != 50 {
		t.Fatalf("sender balance after drainQueue = %d, want 50", got)
	}
}

func TestDrainQueueStopsOnContextCancel(t *testing.T) {
	db := newTestDb()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	txQueue := make(chan SignedTransaction)
	stop := make(chan time.Time)
	done := make(chan struct{})
	go func() {
		drainQueue(ctx, db, txQueue, stop)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainQueue did not return after context cancellation")
	}
}

// signer is a keypair used to sign transactions for the tx queue tests.
type signer struct {
	privateKey [32]byte
	address    Address
}

// signedPayer generates a fresh keypair, credits it with amount of token,
// and commits so the credit survives any later failed/reverted dispatch.
func signedPayer(t *testing.T, db *Db, token Address, amount uint64) signer {
	t.Helper()
	privateKey, _, address, err := GenerateSecp256k1Key()
	if err != nil {
		t.Fatalf("GenerateSecp256k1Key() err = %v", err)
	}
	Credit(db, address, token, amount)
	db.Commit()
	return signer{privateKey: privateKey, address: address}
}

// signedPay builds and signs a Pay transaction from s to recipient.
func signedPay(t *testing.T, s signer, txNumber uint64, recipient, token Address, amount uint64) SignedTransaction {
	t.Helper()
	txn := Transaction{
		TransactionNumber: txNumber,
		Action:            Action{Kind: ActionPay, PayAmount: amount, PayToken: token, PayRecipient: recipient},
	}
	msg, err := txn.VerificationString()
	if err != nil {
		t.Fatalf("VerificationString() err = %v", err)
	}
	hash := PersonalSignHash(msg)
	sig, err := SignSecp256k1(s.privateKey, hash)
	if err != nil {
		t.Fatalf("SignSecp256k1() err = %v", err)
	}
	signed := SignedTransaction{Transaction: txn}
	copy(signed.Signature[:], sig)
	return signed
}
