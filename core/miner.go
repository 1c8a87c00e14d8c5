package core

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// BlockBroadcaster is notified of a newly sealed block's head and the
// host of the next leader, so peers and light clients can react without
// polling (spec.md §4.L).
type BlockBroadcaster interface {
	BroadcastBlock(blockNumber uint64, nextLeaderHost string)
}

// MinerConfig is everything the miner loop needs beyond the shared Db
// (spec.md §4.L, §6).
type MinerConfig struct {
	Address        Address
	PrivateKey     [32]byte
	BridgeContract common.Address
	BlockDuration  time.Duration
}

// Run drives one block at a time until ctx is cancelled: it drains
// txQueue for the block duration, polls the peerchain and commits the
// ingested update, and — only if this node is the current leader — peels
// one hash-onion layer, seals the block, and commits the seal (spec.md
// §4.L). If it is not the leader, it waits out the block duration and
// loops; a failed Seal (e.g. a stale onion skin) is logged and does not
// stop the loop.
func Run(ctx context.Context, db *Db, onion *HashOnion, client PeerchainClient, cfg MinerConfig, broadcaster BlockBroadcaster, txQueue <-chan SignedTransaction) {
	duration := cfg.BlockDuration
	if duration == 0 {
		duration = BlockDurationSeconds * time.Second
	}

	for {
		deadline := time.NewTimer(duration)
		drainQueue(ctx, db, txQueue, deadline.C)

		if update, err := Poll(ctx, client, db, cfg.BridgeContract); err != nil {
			logrus.WithError(err).Warn("miner: peerchain poll failed, retrying next block")
		} else if update.Ready {
			if err := ApplyUpdate(db, Update{
				EthereumBlockNumber: update.BlockNumber,
				Mints:               update.Mints,
				Redeems:             update.RedeemConfirmationIDs,
			}); err != nil {
				logrus.WithError(err).Warn("miner: applying peerchain update failed")
				db.Revert()
			}
			if update.BaseTokenExchangeRate != nil {
				SetBaseTokenExchangeRate(db, NewBigInt(update.BaseTokenExchangeRate))
			}
			SetBaseTokenInterestRate(db, update.BaseTokenInterestRate)
			CancelExpiredRedeemRequests(db, update.BlockNumber)
			db.Commit()
		}

		miners := Miners(db)
		if len(miners) > 0 && miners[0].Address == cfg.Address {
			skin, err := onion.Peel()
			if err != nil {
				logrus.WithError(err).Error("miner: hash onion exhausted, cannot seal")
			} else if err := Seal(db, cfg.Address, skin); err != nil {
				logrus.WithError(err).Warn("miner: seal failed")
			} else {
				db.Commit()
				if broadcaster != nil {
					nextHost := ""
					if next := Miners(db); len(next) > 0 {
						nextHost = next[0].Host
					}
					broadcaster.BroadcastBlock(BlockNumber(db), nextHost)
				}
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// drainQueue applies every queued signed transaction until stop fires or
// ctx is cancelled, dispatching each one under its own commit/revert
// boundary (spec.md §5 "API request handlers... writes are forwarded to
// the writer task via an in-memory queue").
func drainQueue(ctx context.Context, db *Db, txQueue <-chan SignedTransaction, stop <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case tx, ok := <-txQueue:
			if !ok {
				return
			}
			if err := tx.Run(db); err != nil {
				logrus.WithError(err).Debug("miner: transaction failed")
			}
		}
	}
}
