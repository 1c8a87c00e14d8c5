package core

import "errors"

// Error kinds from spec.md §7, each a sentinel so callers can use errors.Is.
var (
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientAllowance  = errors.New("insufficient allowance")
	ErrPoolNotFound           = errors.New("pool not found")
	ErrPoolAlreadyExists      = errors.New("pool already exists")
	ErrMaxSlippageExceeded    = errors.New("maximum slippage exceeded")
	ErrFeeExceedsAmount       = errors.New("fee exceeds amount")
	ErrNotWinner              = errors.New("sender is not the current block winner")
	ErrInvalidOnionSkin       = errors.New("invalid hash onion skin")
	ErrNotAllowListed         = errors.New("sender is not on the miner allow list")
	ErrRedeemRequestNotFound  = errors.New("redeem request not found")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrBalanceAlreadyUnlocked = errors.New("balance already unlocked")
	ErrPhaseCapExceeded       = errors.New("phase cap exceeded")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNotAuthorized          = errors.New("not authorized")
	ErrProposalNotFound       = errors.New("proposal not found")
)
