package actions

import (
	"encoding/binary"
	"fmt"
)

// Canonicalize produces a deterministic byte encoding for action,
// used by wire.Body.CanonicalBytes to build the bytes an Ed25519
// signature covers. Each variant encodes its own fields in a fixed
// order; this is the Go-native stand-in for generated protobuf
// marshaling described in the wire package's doc comment.
func Canonicalize(action Action) ([]byte, error) {
	switch a := action.(type) {
	case *Transfer:
		return cat(str(a.To.String()), str(a.Amount.String()), str(a.Asset.String()), str(a.Memo)), nil
	case *RollupDataSubmission:
		return cat(bytesField(a.RollupID.Bytes()), bytesField(a.Data), str(a.FeeAsset.String())), nil
	case *InitBridgeAccount:
		sudo, withdrawer := "", ""
		if a.SudoAddress != nil {
			sudo = a.SudoAddress.String()
		}
		if a.WithdrawerAddress != nil {
			withdrawer = a.WithdrawerAddress.String()
		}
		return cat(bytesField(a.RollupID.Bytes()), str(a.Asset.String()), str(sudo), str(withdrawer), str(a.FeeAsset.String())), nil
	case *BridgeLock:
		return cat(str(a.To.String()), str(a.Amount.String()), str(a.Asset.String()), str(a.DestinationChainAddress), str(a.FeeAsset.String())), nil
	case *BridgeUnlock:
		return cat(str(a.BridgeAddress.String()), str(a.To.String()), str(a.Amount.String()), str(a.Asset.String()), str(a.RollupWithdrawalEventID), u64(a.RollupBlockNumber), str(a.Memo), str(a.FeeAsset.String())), nil
	case *BridgeSudoChange:
		newSudo, newWithdrawer := "", ""
		if a.NewSudoAddress != nil {
			newSudo = a.NewSudoAddress.String()
		}
		if a.NewWithdrawer != nil {
			newWithdrawer = a.NewWithdrawer.String()
		}
		return cat(str(a.BridgeAddress.String()), str(newSudo), str(newWithdrawer), str(a.FeeAsset.String())), nil
	case *Ics20Withdrawal:
		return cat(str(a.Amount.String()), str(a.Denom.String()), str(a.DestinationAddress), str(a.SourceChannel), u64(a.TimeoutHeight), u64(a.TimeoutTimestamp), str(a.Memo), str(a.FeeAsset.String())), nil
	case *IbcRelay:
		return cat(bytesField(a.Envelope), str(a.FeeAsset.String())), nil
	case *IbcRelayerChange:
		return cat(str(a.Address.String()), boolField(a.Add)), nil
	case *IbcSudoChange:
		return cat(str(a.NewAddress.String())), nil
	case *SudoAddressChange:
		return cat(str(a.NewAddress.String())), nil
	case *ValidatorUpdate:
		raw, err := a.Update.Marshal()
		if err != nil {
			return nil, err
		}
		return cat(bytesField(raw)), nil
	case *FeeChange:
		return cat(str(a.ActionName), str(a.Component.Base.String()), str(a.Component.Multiplier.String())), nil
	case *FeeAssetChange:
		return cat(str(a.Asset.String()), boolField(a.Add)), nil
	default:
		return nil, fmt.Errorf("actions: unknown action variant %T", action)
	}
}

func str(s string) []byte { return bytesField([]byte(s)) }

func bytesField(b []byte) []byte {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(b)))
	return append(length[:], b...)
}

func u64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func boolField(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
