package storage

import "fmt"

// Typed key helpers, one per stored value, following the
// slash-delimited human-readable convention of spec §4.3
// ("accounts/{addr}/balance/{asset}", "bridge/{addr}/rollup_id", ...).
// Keeping these centralized avoids ad-hoc string-building call sites
// and the cyclic-reference modeling design note (§9): relations like
// bridge<->withdrawer are key-indexed, not graph pointers.

func AccountNonceKey(addr string) string {
	return fmt.Sprintf("accounts/%s/nonce", addr)
}

func AccountBalanceKey(addr, ibcAsset string) string {
	return fmt.Sprintf("accounts/%s/balance/%s", addr, ibcAsset)
}

func BridgeRollupIDKey(addr string) string {
	return fmt.Sprintf("bridge/%s/rollup_id", addr)
}

func BridgeAssetKey(addr string) string {
	return fmt.Sprintf("bridge/%s/asset", addr)
}

func BridgeSudoAddressKey(addr string) string {
	return fmt.Sprintf("bridge/%s/sudo_address", addr)
}

func BridgeWithdrawerAddressKey(addr string) string {
	return fmt.Sprintf("bridge/%s/withdrawer_address", addr)
}

func BridgeWithdrawalEventKey(bridgeAddr, eventID string) string {
	return fmt.Sprintf("bridge/%s/withdrawal_event/%s", bridgeAddr, eventID)
}

func FeeComponentKey(actionName string) string {
	return fmt.Sprintf("fees/component/%s", actionName)
}

func FeeAssetKey(ibcAsset string) string {
	return fmt.Sprintf("fees/asset/%s", ibcAsset)
}

func IBCSudoAddressKey() string { return "ibc/sudo_address" }

func IBCRelayerKey(addr string) string {
	return fmt.Sprintf("ibc/relayer/%s", addr)
}

func ChainSudoAddressKey() string { return "sudo/address" }

func ChainIDKey() string { return "chain/id" }

func AddressBasePrefixKey() string  { return "chain/address_base_prefix" }
func AddressIBCPrefixKey() string   { return "chain/address_ibc_compat_prefix" }
func TxSizeLimitKey() string        { return "chain/tx_size_limit" }
func ActionCountBudgetKey() string  { return "chain/action_count_budget" }

func AssetTraceKey(ibcAsset string) string {
	return fmt.Sprintf("asset/trace/%s", ibcAsset)
}

// Non-verifiable stripe keys (caches, per-block fee totals, indices).

func BlockFeesKey(height int64, ibcAsset string) string {
	return fmt.Sprintf("nv/block_fees/%d/%s", height, ibcAsset)
}

func MempoolRemovalCacheKey(txHash string) string {
	return fmt.Sprintf("nv/removal_cache/%s", txHash)
}

func ValidatorUpdateKey(cometAddr string) string {
	return fmt.Sprintf("nv/validator_update/%s", cometAddr)
}
