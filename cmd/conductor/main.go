// Command conductor drives a rollup executor from the firm (Celestia)
// and/or soft (sequencer) commitment streams (spec §1, §4.5).
//
// Wiring a concrete ExecutorClient requires the generated
// astria.execution.v1 gRPC client stub (buf.build-generated, the same
// package the astriaorg-flame execution server reference implements
// the server side of); that generated package is not vendored in this
// module, so main only dials the connection and constructs the
// verifier, leaving the final stub adapter as the one piece a full
// deployment supplies via the buf-generated client constructor.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/astriaorg/astria-sub012/internal/conductor/grpcexecutor"
	"github.com/astriaorg/astria-sub012/internal/conductor/verify"
)

var (
	mode             string
	sequencerChainID string
	sequencerRPC     string
	rollupGRPC       string
	dialTimeoutMS    int
)

var rootCmd = &cobra.Command{
	Use:   "conductor",
	Short: "Astria rollup conductor",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&mode, "mode", "soft-and-firm", "drive mode: firm-only, soft-only, soft-and-firm (or CONDUCTOR_MODE)")
	rootCmd.Flags().StringVar(&sequencerChainID, "sequencer-chain-id", "astria-dev", "expected sequencer chain id for firm-path verification")
	rootCmd.Flags().StringVar(&sequencerRPC, "sequencer-rpc", "http://127.0.0.1:26657", "sequencer CometBFT RPC endpoint (or CONDUCTOR_SEQUENCER_RPC)")
	rootCmd.Flags().StringVar(&rollupGRPC, "rollup-grpc", "127.0.0.1:50051", "rollup executor gRPC endpoint (or CONDUCTOR_ROLLUP_GRPC)")
	rootCmd.Flags().IntVar(&dialTimeoutMS, "dial-timeout-ms", 5000, "gRPC dial timeout")

	for flag, env := range map[string]string{
		"mode":               "CONDUCTOR_MODE",
		"sequencer-rpc":      "CONDUCTOR_SEQUENCER_RPC",
		"rollup-grpc":        "CONDUCTOR_ROLLUP_GRPC",
		"sequencer-chain-id": "CONDUCTOR_SEQUENCER_CHAIN_ID",
	} {
		if v := os.Getenv(env); v != "" {
			_ = rootCmd.Flags().Set(flag, v)
		}
	}
}

func run(_ *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "conductor").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(dialTimeoutMS)*time.Millisecond)
	defer cancel()

	conn, err := grpcexecutor.Dial(ctx, rollupGRPC, time.Duration(dialTimeoutMS)*time.Millisecond)
	if err != nil {
		return fmt.Errorf("dialing rollup executor: %w", err)
	}
	defer conn.Close()

	sequencerClient, err := verify.DialCometBFT(sequencerRPC)
	if err != nil {
		return fmt.Errorf("dialing sequencer rpc: %w", err)
	}
	verifier, err := verify.NewVerifier(sequencerClient, sequencerChainID)
	if err != nil {
		return fmt.Errorf("constructing verifier: %w", err)
	}
	_ = verifier

	log.Info().Str("rollup_grpc", rollupGRPC).Str("sequencer_rpc", sequencerRPC).Str("mode", mode).
		Msg("conductor dependencies ready; plug in the generated execution-service client stub to start driving")
	return fmt.Errorf("conductor: no generated astria.execution.v1 client stub wired for %s; see package doc comment", rollupGRPC)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
