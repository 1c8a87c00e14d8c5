package core

// Action is the tagged union every signed transaction carries exactly
// one of (spec.md §4.K). Only one field is meaningful per value; the
// Kind selects which. This mirrors a Rust enum's single active variant
// without generics over per-variant payload types.
type Action struct {
	Kind ActionKind

	AddLiquidityAmount uint64
	AddLiquidityToken  Address

	CreateOrderType   OrderType
	CreateOrderAmount uint64
	CreateOrderToken  Address
	CreateOrderPrice  uint64

	CreatePoolAmount        uint64
	CreatePoolToken         Address
	CreatePoolStartingPrice uint64

	CreateProposalTitle    string
	CreateProposalSubtitle string
	CreateProposalContent  string
	CreateProposalActions  []Action

	CreateRedeemRequestAmount uint64
	CreateRedeemRequestToken  Address

	FillOrderID uint64

	MigrateLegacyAddress   [LegacyAddressLength]byte
	MigrateLegacySignature []byte

	PayAmount    uint64
	PayToken     Address
	PayRecipient Address

	RemoveLiquidityPercentage uint64
	RemoveLiquidityToken      Address

	SealOnionSkin [32]byte

	SignRedeemRequestID                    uint64
	SignRedeemRequestExpirationBlockNumber uint64
	SignRedeemRequestSignature             []byte

	StartBridgeEthereumBlockNumber uint64

	StartMiningHost          string
	StartMiningOnionSkin     [32]byte
	StartMiningLayerCount    uint64

	TradeInputAmount         uint64
	TradeInputToken          Address
	TradeMinimumOutputAmount uint64
	TradeOutputToken         Address

	UpdateBridge Update

	VoteProposalID uint64
	VoteChoice     VoteChoice
}

// ActionKind identifies the populated fields of an Action (spec.md
// §4.K).
type ActionKind uint8

const (
	ActionAddLiquidity ActionKind = iota
	ActionCreateOrder
	ActionCreatePool
	ActionCreateProposal
	ActionCreateRedeemRequest
	ActionFillOrder
	ActionHarvest
	ActionMigrate
	ActionPay
	ActionRemoveLiquidity
	ActionSeal
	ActionSignRedeemRequest
	ActionStartBridge
	ActionStartMining
	ActionTrade
	ActionUpdate
	ActionVote
)

// Dispatch routes action to the built-in contract method it names,
// running sender's transaction-number bump first (spec.md §4.I, §4.K).
// The Db overlay commits on success and reverts on failure; the bump is
// part of the overlay, so a failing action leaves no trace at all, not
// even a consumed transaction number (spec.md §7).
func Dispatch(db *Db, sender Address, action Action) error {
	err := dispatch(db, sender, action)
	if err == nil {
		db.Commit()
	} else {
		db.Revert()
	}
	return err
}

func dispatch(db *Db, sender Address, action Action) error {
	IncrementTransactionNumber(db, sender)

	switch action.Kind {
	case ActionAddLiquidity:
		return AddLiquidity(db, sender, action.AddLiquidityAmount, action.AddLiquidityToken)
	case ActionCreateOrder:
		_, err := CreateOrder(db, sender, action.CreateOrderType, action.CreateOrderToken, action.CreateOrderAmount, action.CreateOrderPrice)
		return err
	case ActionCreatePool:
		return CreatePool(db, sender, action.CreatePoolAmount, action.CreatePoolToken, action.CreatePoolStartingPrice)
	case ActionCreateProposal:
		CreateProposal(db, sender, action.CreateProposalTitle, action.CreateProposalSubtitle, action.CreateProposalContent, action.CreateProposalActions)
		return nil
	case ActionCreateRedeemRequest:
		_, err := CreateRedeemRequest(db, sender, action.CreateRedeemRequestAmount, action.CreateRedeemRequestToken)
		return err
	case ActionFillOrder:
		return FillOrder(db, sender, action.FillOrderID)
	case ActionHarvest:
		return Harvest(db, sender)
	case ActionMigrate:
		return Migrate(db, sender, action.MigrateLegacyAddress, action.MigrateLegacySignature)
	case ActionPay:
		return Transfer(db, sender, action.PayRecipient, action.PayAmount, action.PayToken)
	case ActionRemoveLiquidity:
		return RemoveLiquidity(db, sender, action.RemoveLiquidityPercentage, action.RemoveLiquidityToken)
	case ActionSeal:
		return Seal(db, sender, action.SealOnionSkin)
	case ActionSignRedeemRequest:
		return SignRedeemRequest(db, action.SignRedeemRequestID, action.SignRedeemRequestExpirationBlockNumber, action.SignRedeemRequestSignature)
	case ActionStartBridge:
		Start(db, action.StartBridgeEthereumBlockNumber)
		return nil
	case ActionStartMining:
		return StartMining(db, sender, action.StartMiningHost, action.StartMiningOnionSkin, action.StartMiningLayerCount)
	case ActionTrade:
		return Trade(db, sender, action.TradeInputAmount, action.TradeInputToken, action.TradeMinimumOutputAmount, action.TradeOutputToken)
	case ActionUpdate:
		return ApplyUpdate(db, action.UpdateBridge)
	case ActionVote:
		return Vote(db, sender, action.VoteProposalID, action.VoteChoice)
	default:
		return ErrNotAuthorized
	}
}
