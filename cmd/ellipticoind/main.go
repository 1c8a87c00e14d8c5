package main

import (
	"context"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ellipticoin-labs/ellipticoind/core"
	"github.com/ellipticoin-labs/ellipticoind/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ellipticoind",
		Short: "run an Ellipticoin node",
		RunE:  runNode,
	}
	if err := rootCmd.Execute(); err != nil {
		logrus.WithError(err).Fatal("ellipticoind: exiting")
	}
}

// runNode starts the node: opens the database, connects to the
// peerchain, and runs the miner loop until interrupted (spec.md §6
// "Default execution starts the node, connects to peerchain, and runs
// the miner loop").
func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	backend, err := core.OpenLevelDBBackend(cfg.DBPath)
	if err != nil {
		return err
	}
	defer backend.Close()
	db := core.NewDb(backend)

	applyMinerAllowList(cfg.MinerAllowListHexes())

	privateKey, err := decodePrivateKey(cfg.PrivateKey)
	if err != nil {
		return err
	}
	_, address, err := core.PublicKeyFromPrivateKey(privateKey)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("ellipticoind: shutting down")
		cancel()
	}()

	rpcClient, err := core.DialPeerchain(ctx, cfg.Web3URL)
	if err != nil {
		return err
	}

	onion := core.NewHashOnion(privateKey, cfg.HashOnionSize)

	if !cfg.EnableMiner {
		logrus.Info("ellipticoind: mining disabled, running as a read-only node")
		<-ctx.Done()
		return nil
	}

	minerCfg := core.MinerConfig{
		Address:        address,
		PrivateKey:     privateKey,
		BlockDuration:  core.BlockDurationSeconds * time.Second,
		BridgeContract: common.HexToAddress(cfg.BridgeContract),
	}
	txQueue := make(chan core.SignedTransaction)
	core.Run(ctx, db, onion, rpcClient, minerCfg, nil, txQueue)
	return nil
}

func applyMinerAllowList(hexes []string) {
	addrs := make([]core.Address, 0, len(hexes))
	for _, h := range hexes {
		b := common.FromHex(h)
		addr, err := core.AddressFromBytes(b)
		if err != nil {
			logrus.WithField("address", h).Warn("ellipticoind: skipping malformed MINER_ALLOW_LIST entry")
			continue
		}
		addrs = append(addrs, addr)
	}
	core.SetMinerAllowList(addrs)
}

func decodePrivateKey(hexKey string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return out, err
	}
	copy(out[:], raw)
	return out, nil
}
