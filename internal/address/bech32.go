// Package address implements Astria's 20-byte account address encoding.
//
// An address is the first 20 bytes of SHA-256 over an Ed25519
// verification key, rendered as Bech32m with a chain-configured
// human-readable prefix. The 8-bit/5-bit regrouping step is the same
// bit-width conversion cosmos-sdk's own types/bech32 wrapper performs,
// so it is delegated to cosmos/btcutil/bech32.ConvertBits rather than
// hand-rolled. The checksum/charset math below implements the BIP-350
// bech32m variant (XOR constant 0x2bc830a3) in the style of
// Bidon15-popsigner/sdk-go/celestia.go's bech32Encode, since
// cosmos/btcutil/bech32's exported Encode/Decode only cover original
// bech32 (BIP-173) and this module has no confirmed pack usage site
// for a bech32m-aware variant of that package to ground a
// substitution against.
package address

import (
	"fmt"
	"strings"

	"github.com/cosmos/btcutil/bech32"
)

const (
	// bech32Const is the checksum XOR constant for original Bech32 (BIP-173).
	bech32Const = 1
	// bech32mConst is the checksum XOR constant for Bech32m (BIP-350).
	bech32mConst = 0x2bc830a3

	charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

	maxEncodedLength = 90
)

// Encoding identifies which checksum variant a Bech32 string used.
type Encoding int

const (
	EncodingInvalid Encoding = iota
	EncodingBech32
	EncodingBech32m
)

func expandHRP(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&0x1f)
	}
	return out
}

func polymod(values []byte) int {
	gen := []int{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}
	chk := 1
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ int(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= gen[i]
			}
		}
	}
	return chk
}

// convertBits regroups a bit string between fromBits and toBits sized
// groups, as used to map 8-bit address bytes into 5-bit bech32 words.
// This delegates to cosmos/btcutil/bech32, the same bit-regrouping
// primitive cosmos-sdk's types/bech32.ConvertAndEncode/DecodeAndConvert
// build on.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	out, err := bech32.ConvertBits(data, uint8(fromBits), uint8(toBits), pad)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	return out, nil
}

func checksumConst(enc Encoding) (int, error) {
	switch enc {
	case EncodingBech32:
		return bech32Const, nil
	case EncodingBech32m:
		return bech32mConst, nil
	default:
		return 0, fmt.Errorf("address: unknown encoding variant")
	}
}

func createChecksum(hrp string, data []byte, enc Encoding) ([]byte, error) {
	k, err := checksumConst(enc)
	if err != nil {
		return nil, err
	}
	values := append(expandHRP(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := polymod(values) ^ k
	checksum := make([]byte, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 0x1f)
	}
	return checksum, nil
}

// encodeRaw bech32/bech32m-encodes the already-5-bit-converted data
// words under hrp using the requested checksum variant.
func encodeRaw(hrp string, data []byte, enc Encoding) (string, error) {
	if len(hrp) < 1 || len(hrp) > 83 {
		return "", fmt.Errorf("address: invalid hrp length %d", len(hrp))
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return "", fmt.Errorf("address: invalid hrp character")
		}
	}

	checksum, err := createChecksum(hrp, data, enc)
	if err != nil {
		return "", err
	}
	combined := append(append([]byte{}, data...), checksum...)

	var sb strings.Builder
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range combined {
		sb.WriteByte(charset[v])
	}

	out := sb.String()
	if len(out) > maxEncodedLength {
		return "", fmt.Errorf("address: encoded string exceeds maximum length")
	}
	return out, nil
}

// Encode renders b (any byte slice) as Bech32m under hrp.
func Encode(hrp string, b []byte) (string, error) {
	words, err := convertBits(b, 8, 5, true)
	if err != nil {
		return "", err
	}
	return encodeRaw(hrp, words, EncodingBech32m)
}

// Decode parses a Bech32 or Bech32m string, returning the decoded bytes,
// the human-readable prefix, and which checksum variant was used.
// Callers that need strictly one variant should check the returned
// Encoding themselves; DecodeBech32m rejects the other variant outright.
func Decode(bech string) (data []byte, hrp string, enc Encoding, err error) {
	if len(bech) < 8 || len(bech) > maxEncodedLength {
		return nil, "", EncodingInvalid, fmt.Errorf("address: invalid bech32 length %d", len(bech))
	}
	lower := strings.ToLower(bech)
	upper := strings.ToUpper(bech)
	if bech != lower && bech != upper {
		return nil, "", EncodingInvalid, fmt.Errorf("address: mixed-case bech32 string")
	}
	bech = lower

	sep := strings.LastIndexByte(bech, '1')
	if sep < 1 || sep+7 > len(bech) {
		return nil, "", EncodingInvalid, fmt.Errorf("address: invalid separator position")
	}

	hrp = bech[:sep]
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return nil, "", EncodingInvalid, fmt.Errorf("address: invalid hrp character")
		}
	}

	dataPart := bech[sep+1:]
	decoded := make([]byte, 0, len(dataPart))
	for _, c := range dataPart {
		idx := strings.IndexByte(charset, byte(c))
		if idx < 0 {
			return nil, "", EncodingInvalid, fmt.Errorf("address: invalid bech32 character %q", c)
		}
		decoded = append(decoded, byte(idx))
	}

	values := append(expandHRP(hrp), decoded...)
	mod := polymod(values)
	switch mod {
	case bech32Const:
		enc = EncodingBech32
	case bech32mConst:
		enc = EncodingBech32m
	default:
		return nil, "", EncodingInvalid, fmt.Errorf("address: invalid checksum")
	}

	payload := decoded[:len(decoded)-6]
	data, err = convertBits(payload, 5, 8, false)
	if err != nil {
		return nil, "", EncodingInvalid, fmt.Errorf("address: %w", err)
	}
	return data, hrp, enc, nil
}

// DecodeBech32m decodes bech and requires that it used the Bech32m
// checksum constant; a Bech32 (original) string is rejected.
func DecodeBech32m(bech string) ([]byte, string, error) {
	data, hrp, enc, err := Decode(bech)
	if err != nil {
		return nil, "", err
	}
	if enc != EncodingBech32m {
		return nil, "", fmt.Errorf("address: expected bech32m encoding, got bech32")
	}
	return data, hrp, nil
}
