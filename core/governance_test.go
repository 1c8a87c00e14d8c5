package core

import "testing"

func TestVoteRatifiesAndDispatchesOnce(t *testing.T) {
	db := newTestDb()
	Mint(db, 60, ELCAddress, alice)
	Mint(db, 40, ELCAddress, bob)
	Credit(db, governanceAddress, apple, 1000)

	proposalID := CreateProposal(db, alice, "raise", "pay bob", "details", []Action{
		{Kind: ActionPay, PayAmount: 500, PayToken: apple, PayRecipient: bob},
	})
	db.Commit()

	if got := GetBalance(db, bob, apple); got != 0 {
		t.Fatalf("bob apple balance before ratification = %d, want 0", got)
	}

	if err := Vote(db, bob, proposalID, VoteAgainst); err != nil {
		t.Fatalf("Vote() err = %v", err)
	}
	if got := GetBalance(db, bob, apple); got != 500 {
		t.Fatalf("bob apple balance after ratification = %d, want 500", got)
	}
	if !proposalExecuted(db, proposalID) {
		t.Fatalf("proposal %d not marked executed", proposalID)
	}

	// Swinging back to For re-crosses the threshold but must not re-run
	// the proposal's actions a second time.
	if err := Vote(db, bob, proposalID, VoteFor); err != nil {
		t.Fatalf("second Vote() err = %v", err)
	}
	if got := GetBalance(db, bob, apple); got != 500 {
		t.Fatalf("bob apple balance after re-vote = %d, want still 500", got)
	}
}

func TestVoteBelowThresholdDoesNotDispatch(t *testing.T) {
	db := newTestDb()
	Mint(db, 50, ELCAddress, alice)
	Mint(db, 50, ELCAddress, bob)
	Credit(db, governanceAddress, apple, 1000)

	proposalID := CreateProposal(db, alice, "raise", "pay bob", "details", []Action{
		{Kind: ActionPay, PayAmount: 500, PayToken: apple, PayRecipient: bob},
	})
	if err := Vote(db, bob, proposalID, VoteAgainst); err != nil {
		t.Fatalf("Vote() err = %v", err)
	}
	if got := GetBalance(db, bob, apple); got != 0 {
		t.Fatalf("bob apple balance = %d, want 0 (proposal never ratified at exactly 50%%)", got)
	}
}

func TestVoteUnknownProposal(t *testing.T) {
	db := newTestDb()
	if err := Vote(db, alice, 999, VoteFor); err != ErrProposalNotFound {
		t.Fatalf("Vote(unknown) err = %v, want ErrProposalNotFound", err)
	}
}

// TestVoteThroughDispatchRollsBackPartiallyAppliedActions drives Vote
// through the committing outer Dispatch (as a signed transaction would),
// with a proposal whose first action succeeds and second fails. The
// whole transaction — including the first action's transfer — must
// roll back, since Vote must not commit mid-transaction.
func TestVoteThroughDispatchRollsBackPartiallyAppliedActions(t *testing.T) {
	db := newTestDb()
	Mint(db, 60, ELCAddress, alice)
	Mint(db, 40, ELCAddress, bob)
	Credit(db, governanceAddress, apple, 500)
	// governanceAddress holds no bananas, so the second Pay fails.

	proposalID := CreateProposal(db, alice, "raise", "pay bob twice", "details", []Action{
		{Kind: ActionPay, PayAmount: 500, PayToken: apple, PayRecipient: bob},
		{Kind: ActionPay, PayAmount: 1, PayToken: bananas, PayRecipient: bob},
	})
	db.Commit()

	err := Dispatch(db, bob, Action{Kind: ActionVote, VoteProposalID: proposalID, VoteChoice: VoteAgainst})
	if err == nil {
		t.Fatalf("expected Dispatch() to propagate the second Pay action's failure")
	}

	if got := GetBalance(db, bob, apple); got != 0 {
		t.Fatalf("bob apple balance = %d, want 0 (first action must roll back with the rest of the transaction)", got)
	}
	if got := GetBalance(db, governanceAddress, apple); got != 500 {
		t.Fatalf("governance apple balance = %d, want 500 (unchanged)", got)
	}
	if proposalExecuted(db, proposalID) {
		t.Fatalf("proposal %d marked executed despite the rolled-back transaction", proposalID)
	}
}

func TestVoteFailingActionAbortsEntirely(t *testing.T) {
	db := newTestDb()
	Mint(db, 60, ELCAddress, alice)
	Mint(db, 40, ELCAddress, bob)
	// governanceAddress holds no apple, so the Pay action will fail.

	proposalID := CreateProposal(db, alice, "raise", "pay bob", "details", []Action{
		{Kind: ActionPay, PayAmount: 500, PayToken: apple, PayRecipient: bob},
	})
	db.Commit()
	if err := Vote(db, bob, proposalID, VoteAgainst); err == nil {
		t.Fatalf("expected Vote() to propagate the Pay action's failure")
	}

	p, _, ok := findProposal(db, proposalID)
	if !ok {
		t.Fatalf("proposal %d vanished after failed Vote()", proposalID)
	}
	if _, voted := p.Votes[bob]; voted {
		t.Fatalf("bob's vote was persisted despite the aborted dispatch")
	}
}
