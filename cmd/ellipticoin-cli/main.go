package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ellipticoin-labs/ellipticoind/core"
	"github.com/ellipticoin-labs/ellipticoind/pkg/config"
)

func main() {
	rootCmd := &cobra.Command{Use: "ellipticoin-cli"}
	rootCmd.AddCommand(generateKeypairCmd())
	rootCmd.AddCommand(dumpStateCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// generateKeypairCmd prints a new signing key and its Ethereum-style
// address (spec.md §6 "CLI surface").
func generateKeypairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-keypair",
		Short: "generate a new secp256k1 signing key and its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			privateKey, _, address, err := core.GenerateSecp256k1Key()
			if err != nil {
				return err
			}
			fmt.Printf("Private Key: %s\n", hex.EncodeToString(privateKey[:]))
			fmt.Printf("Address:     %s\n", address)
			return nil
		},
	}
}

// dumpStateCmd writes every key/value pair in the node's database as
// hex, one pair per line — a debugging aid the original exposes as a
// REPL-style state dump and this CLI surfaces directly (spec.md §4.B
// Db.All).
func dumpStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump-state",
		Short: "print every key/value pair in the node's database",
		RunE: func(cmd *cobra.Command, args []string) error {
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
			db.All(func(key, value []byte) bool {
				fmt.Printf("%s -> %s\n", hex.EncodeToString(key), hex.EncodeToString(value))
				return true
			})
			return nil
		},
	}
}
