// Package app implements the ABCI state machine described in spec
// §4.1: InitChain, CheckTx, PrepareProposal, ProcessProposal,
// FinalizeBlock, Commit.
package app

import (
	"github.com/rs/zerolog"

	"github.com/astriaorg/astria-sub012/internal/address"
)

// Config carries the chain parameters the ABCI host supplies at
// construction time. Populating it from CLI/env/config files is out
// of core scope (spec §1); this package only consumes the result.
type Config struct {
	ChainID           string
	Prefixes          address.Prefixes
	TxSizeLimit       int
	ActionCountBudget int
	CometByteBudget   int64
	RemovalCacheSize  int
	IAVLCacheSize     int
	Logger            zerolog.Logger
}
