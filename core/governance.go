package core

// Governance field ids (spec.md §3).
const (
	governanceFieldProposals         uint16 = 0
	governanceFieldProposalIDCounter uint16 = 1
)

// governanceAddress is the Governance contract's own synthetic address,
// used as the sender when a ratified proposal's actions are dispatched
// (spec.md §9 design note on contract-to-contract calls).
var governanceAddress = ContractAddress(ContractIDGovernance)

// VoteChoice is a governance vote (spec.md §3).
type VoteChoice uint8

const (
	VoteFor VoteChoice = iota
	VoteAgainst
)

// Proposal is a governance proposal and its accumulated votes
// (spec.md §3).
type Proposal struct {
	ID       uint64
	Proposer Address
	Title    string
	Subtitle string
	Content  string
	Actions  []Action
	Votes    map[Address]VoteChoice
}

func getProposals(db *Db) []Proposal {
	return GetValue[[]Proposal](db, ContractIDGovernance, governanceFieldProposals)
}

func setProposals(db *Db, proposals []Proposal) {
	SetValue(db, ContractIDGovernance, governanceFieldProposals, proposals)
}

// Proposals returns every proposal ever created (spec.md §3).
func Proposals(db *Db) []Proposal {
	return getProposals(db)
}

func nextProposalID(db *Db) uint64 {
	id := GetValue[uint64](db, ContractIDGovernance, governanceFieldProposalIDCounter)
	SetValue(db, ContractIDGovernance, governanceFieldProposalIDCounter, id+1)
	return id
}

func findProposal(db *Db, proposalID uint64) (Proposal, int, bool) {
	proposals := getProposals(db)
	for i, p := range proposals {
		if p.ID == proposalID {
			return p, i, true
		}
	}
	return Proposal{}, -1, false
}

// CreateProposal appends a new proposal with sender's vote recorded as For
// (spec.md §4.H).
func CreateProposal(db *Db, sender Address, title, subtitle, content string, actions []Action) uint64 {
	p := Proposal{
		ID:       nextProposalID(db),
		Proposer: sender,
		Title:    title,
		Subtitle: subtitle,
		Content:  content,
		Actions:  actions,
		Votes:    map[Address]VoteChoice{sender: VoteFor},
	}
	setProposals(db, append(getProposals(db), p))
	return p.ID
}

// Vote records (or overwrites) sender's vote on proposalID. If the
// For-weighted share of ELC's total supply then exceeds 50%, the
// proposal's actions run in order from the Governance contract's own
// address via the non-committing dispatch (Vote may itself be running
// inside an enclosing Dispatch, and committing mid-transaction here
// would flush a partially-applied transaction to the backend), and
// proposals is only persisted once they've all run — a failing action
// aborts Vote entirely, leaving the new vote unrecorded too (spec.md
// §4.H, §4.K, §7).
//
// spec.md §9 flags that the original data model has no "closed" proposal
// flag, so re-crossing the 50% threshold (e.g. after a swing vote) would
// re-run all actions on every qualifying Vote call. This implementation
// treats that as a bug: a proposal's actions run on the first Vote call
// that ratifies it and never again, via the Executed flag below.
func Vote(db *Db, sender Address, proposalID uint64, choice VoteChoice) error {
	p, idx, ok := findProposal(db, proposalID)
	if !ok {
		return ErrProposalNotFound
	}
	if p.Votes == nil {
		p.Votes = map[Address]VoteChoice{}
	}
	p.Votes[sender] = choice

	if proposalRatified(db, p) && !proposalExecuted(db, proposalID) {
		markProposalExecuted(db, proposalID)
		for _, action := range p.Actions {
			if err := dispatch(db, governanceAddress, action); err != nil {
				return err
			}
		}
	}

	proposals := getProposals(db)
	proposals[idx] = p
	setProposals(db, proposals)
	return nil
}

func proposalRatified(db *Db, p Proposal) bool {
	total := GetTotalSupply(db, ELCAddress)
	if total == 0 {
		return false
	}
	var forWeight uint64
	for voter, choice := range p.Votes {
		if choice == VoteFor {
			forWeight += GetBalance(db, voter, ELCAddress)
		}
	}
	return forWeight*100/total > 50
}

// governanceFieldExecuted tracks, per proposal id, whether its actions
// have already fired — the fix for the Open Question in spec.md §9.
const governanceFieldExecuted uint16 = 2

func proposalExecuted(db *Db, proposalID uint64) bool {
	return GetValue[bool](db, ContractIDGovernance, governanceFieldExecuted, Uint64Key(proposalID))
}

func markProposalExecuted(db *Db, proposalID uint64) {
	SetValue(db, ContractIDGovernance, governanceFieldExecuted, true, Uint64Key(proposalID))
}
