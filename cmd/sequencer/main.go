// Command sequencer runs the Astria shared-sequencer ABCI application
// behind a CometBFT socket server (spec §1, §4.1).
package main

import (
	"fmt"
	"os"

	abciserver "github.com/cometbft/cometbft/abci/server"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	dbm "github.com/cometbft/cometbft-db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astriaorg/astria-sub012/internal/address"
	"github.com/astriaorg/astria-sub012/internal/sequencer/app"
	"github.com/astriaorg/astria-sub012/internal/storage"
)

var (
	dbDir         string
	listenAddr    string
	chainID       string
	basePrefix    string
	ibcPrefix     string
	txSizeLimit   int
	actionBudget  int
	cometByteCap  int64
	removalCache  int
	iavlCache     int
)

var rootCmd = &cobra.Command{
	Use:   "sequencer",
	Short: "Astria sequencer ABCI application",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&dbDir, "db-dir", "./data", "directory for the verifiable/non-verifiable KV stores (or SEQUENCER_DB_DIR)")
	rootCmd.Flags().StringVar(&listenAddr, "abci-listen", "tcp://127.0.0.1:26658", "ABCI socket server listen address (or SEQUENCER_ABCI_LISTEN)")
	rootCmd.Flags().StringVar(&chainID, "chain-id", "astria-dev", "sequencer chain id (or SEQUENCER_CHAIN_ID)")
	rootCmd.Flags().StringVar(&basePrefix, "bech32-prefix", "astria", "bech32 address prefix (or SEQUENCER_BECH32_PREFIX)")
	rootCmd.Flags().StringVar(&ibcPrefix, "bech32-ibc-prefix", "astriacompat", "bech32m IBC-compat address prefix")
	rootCmd.Flags().IntVar(&txSizeLimit, "tx-size-limit", 256*1024, "maximum encoded transaction size in bytes")
	rootCmd.Flags().IntVar(&actionBudget, "action-count-budget", 128, "maximum actions per transaction")
	rootCmd.Flags().Int64Var(&cometByteCap, "comet-byte-budget", 1<<21, "maximum total tx bytes per proposed block")
	rootCmd.Flags().IntVar(&removalCache, "mempool-removal-cache-size", 4096, "mempool FIFO removal-cache size")
	rootCmd.Flags().IntVar(&iavlCache, "iavl-cache-size", 10_000, "IAVL node cache size")

	bindEnv(rootCmd, "db-dir", "SEQUENCER_DB_DIR")
	bindEnv(rootCmd, "abci-listen", "SEQUENCER_ABCI_LISTEN")
	bindEnv(rootCmd, "chain-id", "SEQUENCER_CHAIN_ID")
	bindEnv(rootCmd, "bech32-prefix", "SEQUENCER_BECH32_PREFIX")
}

// bindEnv lets an environment variable override a flag's default when
// the flag was not explicitly set, matching the CLI/env layering the
// teacher's popctl root command performs with viper (SPEC_FULL.md §2
// "Configuration").
func bindEnv(cmd *cobra.Command, flag, env string) {
	if v := os.Getenv(env); v != "" {
		_ = cmd.Flags().Set(flag, v)
	}
}

func run(_ *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "sequencer").Logger()

	verifiableDB, err := dbm.NewGoLevelDB("verifiable", dbDir)
	if err != nil {
		return fmt.Errorf("opening verifiable store: %w", err)
	}
	nonVerifiableDB, err := dbm.NewGoLevelDB("nonverifiable", dbDir)
	if err != nil {
		return fmt.Errorf("opening non-verifiable store: %w", err)
	}

	store, err := storage.New(verifiableDB, nonVerifiableDB, iavlCache)
	if err != nil {
		return fmt.Errorf("constructing store: %w", err)
	}

	cfg := app.Config{
		ChainID:           chainID,
		Prefixes:          address.Prefixes{Base: basePrefix, IBCCompat: ibcPrefix},
		TxSizeLimit:       txSizeLimit,
		ActionCountBudget: actionBudget,
		CometByteBudget:   cometByteCap,
		RemovalCacheSize:  removalCache,
		IAVLCacheSize:     iavlCache,
		Logger:            log,
	}

	application := app.New(cfg, store)

	server := abciserver.NewSocketServer(listenAddr, application)
	server.SetLogger(cmtlog.NewTMLogger(cmtlog.NewSyncWriter(os.Stdout)))

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting abci server: %w", err)
	}
	defer server.Stop()

	log.Info().Str("listen", listenAddr).Str("chain_id", chainID).Msg("sequencer abci server started")

	select {}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
