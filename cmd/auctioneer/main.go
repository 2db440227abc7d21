// Command auctioneer runs the per-rollup bid auction described in
// spec §1/§4.6.
//
// Like cmd/conductor, wiring the four input streams
// (OptimisticBlockStream, BlockCommitmentStream, ExecutedBlockStream,
// BundleStream) requires generated gRPC client stubs for the
// sequencer's and rollup's optimistic-execution services that are not
// vendored in this module; main parses configuration and documents the
// one remaining wiring step rather than fabricate stand-in protobuf
// bindings.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	rollupID        string
	sequencerGRPC   string
	rollupGRPC      string
	latencyMarginMS int
)

var rootCmd = &cobra.Command{
	Use:   "auctioneer",
	Short: "Astria rollup block-space auctioneer",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&rollupID, "rollup-id", "", "rollup id this auctioneer serves (or AUCTIONEER_ROLLUP_ID)")
	rootCmd.Flags().StringVar(&sequencerGRPC, "sequencer-grpc", "127.0.0.1:50052", "sequencer optimistic-execution gRPC endpoint (or AUCTIONEER_SEQUENCER_GRPC)")
	rootCmd.Flags().StringVar(&rollupGRPC, "rollup-grpc", "127.0.0.1:50053", "rollup bundle/execution gRPC endpoint (or AUCTIONEER_ROLLUP_GRPC)")
	rootCmd.Flags().IntVar(&latencyMarginMS, "latency-margin-ms", 1000, "winner-cutoff margin after block commitment")

	for flag, env := range map[string]string{
		"rollup-id":      "AUCTIONEER_ROLLUP_ID",
		"sequencer-grpc": "AUCTIONEER_SEQUENCER_GRPC",
		"rollup-grpc":    "AUCTIONEER_ROLLUP_GRPC",
	} {
		if v := os.Getenv(env); v != "" {
			_ = rootCmd.Flags().Set(flag, v)
		}
	}
}

func run(_ *cobra.Command, _ []string) error {
	log := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Str("component", "auctioneer").Logger()

	log.Info().Str("rollup_id", rollupID).Str("sequencer_grpc", sequencerGRPC).Str("rollup_grpc", rollupGRPC).
		Dur("latency_margin", time.Duration(latencyMarginMS)*time.Millisecond).
		Msg("auctioneer configuration ready; plug in generated optimistic-execution client stubs to start the event loop")
	return fmt.Errorf("auctioneer: no generated gRPC stream stubs wired for sequencer %s / rollup %s; see package doc comment", sequencerGRPC, rollupGRPC)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
