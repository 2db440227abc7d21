package app

// CheckTx result codes (spec §6 "Exit codes for CheckTx"). Numeric
// values are part of the public surface and must not change across
// versions to preserve client compatibility.
const (
	CodeOK                 uint32 = 0
	CodeDecodeError        uint32 = 1
	CodeTooLarge            uint32 = 2
	CodeInvalidSignature   uint32 = 3
	CodeInvalidChainID     uint32 = 4
	CodeStatelessInvalid   uint32 = 5
	CodeNonceStale         uint32 = 6
	CodeNonceGap           uint32 = 7
	CodeInsufficientBalance uint32 = 8
	CodeAuthorizationFailed uint32 = 9
	CodeInternal            uint32 = 99
)
