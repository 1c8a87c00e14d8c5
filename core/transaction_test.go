package core

import "testing"

func TestAmountToString(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{"zero", 0, "0.000000"},
		{"one and a half", 1_500_000, "1.500000"},
		{"large grouped", 1_234_567_000_000, "1,234,567.000000"},
		{"fraction only", 500, "0.000500"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := amountToString(tc.n); got != tc.want {
				t.Errorf("amountToString(%d) = %q, want %q", tc.n, got, tc.want)
			}
		})
	}
}

func TestPercentageToString(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{"fifty percent", 500_000, "50.0000%"},
		{"hundred percent", BaseFactor, "100.0000%"},
		{"zero", 0, "0.0000%"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := percentageToString(tc.n); got != tc.want {
				t.Errorf("percentageToString(%d) = %q, want %q", tc.n, got, tc.want)
			}
		})
	}
}

func TestAddressToStringWellKnown(t *testing.T) {
	if got := addressToString(BaseToken); got != "MS" {
		t.Errorf("addressToString(BaseToken) = %q, want MS", got)
	}
	if got := addressToString(LeveragedBaseToken); got != "USD" {
		t.Errorf("addressToString(LeveragedBaseToken) = %q, want USD", got)
	}
	if got := addressToString(EthereumAddress); got != "ETH" {
		t.Errorf("addressToString(EthereumAddress) = %q, want ETH", got)
	}
}

func TestActionVerificationStringPay(t *testing.T) {
	a := Action{Kind: ActionPay, PayAmount: 20 * BaseFactor, PayToken: BaseToken, PayRecipient: bob}
	s, err := a.VerificationString()
	if err != nil {
		t.Fatalf("VerificationString() err = %v", err)
	}
	want := "Pay " + addressToString(bob) + " 20.000000 MS"
	if s != want {
		t.Fatalf("VerificationString() = %q, want %q", s, want)
	}
}

func TestSignedTransactionSenderRoundTrip(t *testing.T) {
	privateKey, _, address, err := GenerateSecp256k1Key()
	if err != nil {
		t.Fatalf("GenerateSecp256k1Key() err = %v", err)
	}

	txn := Transaction{
		TransactionNumber: 1,
		NetworkID:         1,
		Action:            Action{Kind: ActionHarvest},
	}
	msg, err := txn.VerificationString()
	if err != nil {
		t.Fatalf("VerificationString() err = %v", err)
	}
	hash := PersonalSignHash(msg)
	sig, err := SignSecp256k1(privateKey, hash)
	if err != nil {
		t.Fatalf("SignSecp256k1() err = %v", err)
	}

	signed := SignedTransaction{Transaction: txn}
	copy(signed.Signature[:], sig)

	recovered, err := signed.Sender()
	if err != nil {
		t.Fatalf("Sender() err = %v", err)
	}
	if recovered != address {
		t.Fatalf("Sender() = %s, want %s", recovered, address)
	}
}

func TestSignedTransactionRunDispatchesAction(t *testing.T) {
	privateKey, _, address, err := GenerateSecp256k1Key()
	if err != nil {
		t.Fatalf("GenerateSecp256k1Key() err = %v", err)
	}
	db := newTestDb()
	Credit(db, address, apple, 100)
	db.Commit()

	txn := Transaction{
		TransactionNumber: 1,
		NetworkID:         1,
		Action:            Action{Kind: ActionPay, PayAmount: 40, PayToken: apple, PayRecipient: bob},
	}
	msg, err := txn.VerificationString()
	if err != nil {
		t.Fatalf("VerificationString() err = %v", err)
	}
	hash := PersonalSignHash(msg)
	sig, err := SignSecp256k1(privateKey, hash)
	if err != nil {
		t.Fatalf("SignSecp256k1() err = %v", err)
	}
	signed := SignedTransaction{Transaction: txn}
	copy(signed.Signature[:], sig)

	if err := signed.Run(db); err != nil {
		t.Fatalf("Run() err = %v", err)
	}
	if got := GetBalance(db, bob, apple); got != 40 {
		t.Fatalf("bob balance = %d, want 40", got)
	}
	if got := GetBalance(db, address, apple); got != 60 {
		t.Fatalf("sender balance = %d, want 60", got)
	}
}
