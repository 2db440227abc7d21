// Command relayer runs the sequencer-to-Celestia relayer (spec §1,
// §4.4): it polls a local sequencer, converts committed blocks to
// Celestia blobs, and submits them exactly once per height.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astriaorg/astria-sub012/internal/relayer"
)

var (
	sequencerRPC  string
	celestiaRPC   string
	celestiaToken string
	journalDir    string
	blockTimeMS   int
	queueSize     int
)

var rootCmd = &cobra.Command{
	Use:   "relayer",
	Short: "Astria sequencer-to-Celestia relayer",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&sequencerRPC, "sequencer-rpc", "http://127.0.0.1:26657", "sequencer CometBFT RPC endpoint (or RELAYER_SEQUENCER_RPC)")
	rootCmd.Flags().StringVar(&celestiaRPC, "celestia-rpc", "http://127.0.0.1:26658", "celestia-node RPC endpoint (or RELAYER_CELESTIA_RPC)")
	rootCmd.Flags().StringVar(&celestiaToken, "celestia-token", "", "celestia-node bearer auth token (or RELAYER_CELESTIA_TOKEN)")
	rootCmd.Flags().StringVar(&journalDir, "journal-dir", "./relayer-journal", "directory holding the pre-submit/post-submit journal files")
	rootCmd.Flags().IntVar(&blockTimeMS, "block-time-ms", 2000, "sequencer block time, drives the poll interval")
	rootCmd.Flags().IntVar(&queueSize, "queue-size", 128, "bounded queued blob count between stream and submitter")

	for flag, env := range map[string]string{
		"sequencer-rpc":  "RELAYER_SEQUENCER_RPC",
		"celestia-rpc":   "RELAYER_CELESTIA_RPC",
		"celestia-token": "RELAYER_CELESTIA_TOKEN",
		"journal-dir":    "RELAYER_JOURNAL_DIR",
	} {
		if v := os.Getenv(env); v != "" {
			_ = rootCmd.Flags().Set(flag, v)
		}
	}
}

func run(_ *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "relayer").Logger()

	sequencerClient, err := relayer.DialCometBFT(sequencerRPC)
	if err != nil {
		return err
	}
	celestiaClient := relayer.NewCelestiaRPCClient(celestiaRPC, celestiaToken)

	cfg := relayer.DefaultConfig()
	cfg.JournalDir = journalDir
	cfg.BlockTime = time.Duration(blockTimeMS) * time.Millisecond
	cfg.QueueSize = queueSize

	r, err := relayer.New(cfg, sequencerClient, celestiaClient, log)
	if err != nil {
		return fmt.Errorf("constructing relayer: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info().Str("sequencer_rpc", sequencerRPC).Str("celestia_rpc", celestiaRPC).Msg("relayer starting")
	return r.Run(ctx)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
