package core

import (
	"crypto/ed25519"
	"testing"
)

func TestMigrateMovesBalances(t *testing.T) {
	legacyPub, legacyPriv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey() err = %v", err)
	}
	var legacyAddress [LegacyAddressLength]byte
	copy(legacyAddress[:], legacyPub)
	legacy, err := AddressFromBytes(legacyAddress[:AddressLength])
	if err != nil {
		t.Fatalf("AddressFromBytes() err = %v", err)
	}

	db := newTestDb()
	Mint(db, 1000, apple, legacy)
	setIssuanceRewards(db, legacy, 250)

	sig := ed25519.Sign(legacyPriv, alice.Bytes())
	if err := Migrate(db, alice, legacyAddress, sig); err != nil {
		t.Fatalf("Migrate() err = %v", err)
	}

	if got := GetBalance(db, alice, apple); got != 1000 {
		t.Fatalf("alice apple balance after migrate = %d, want 1000", got)
	}
	if got := GetBalance(db, legacy, apple); got != 0 {
		t.Fatalf("legacy apple balance after migrate = %d, want 0", got)
	}
	if got := IssuanceRewards(db, alice); got != 250 {
		t.Fatalf("alice issuance rewards after migrate = %d, want 250", got)
	}
	if got := IssuanceRewards(db, legacy); got != 0 {
		t.Fatalf("legacy issuance rewards after migrate = %d, want 0", got)
	}
}

func TestMigrateRejectsBadSignature(t *testing.T) {
	legacyPub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("ed25519.GenerateKey() err = %v", err)
	}
	var legacyAddress [LegacyAddressLength]byte
	copy(legacyAddress[:], legacyPub)

	db := newTestDb()
	if err := Migrate(db, alice, legacyAddress, make([]byte, ed25519.SignatureSize)); err != ErrInvalidSignature {
		t.Fatalf("Migrate(bad sig) err = %v, want ErrInvalidSignature", err)
	}
}

func TestTransactionNumberSequence(t *testing.T) {
	db := newTestDb()
	if got := GetNextTransactionNumber(db, alice); got != 1 {
		t.Fatalf("GetNextTransactionNumber() initial = %d, want 1", got)
	}
	IncrementTransactionNumber(db, alice)
	if got := TransactionNumber(db, alice); got != 1 {
		t.Fatalf("TransactionNumber() = %d, want 1", got)
	}
	if got := GetNextTransactionNumber(db, alice); got != 2 {
		t.Fatalf("GetNextTransactionNumber() after one tx = %d, want 2", got)
	}
}
