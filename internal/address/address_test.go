package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	var b [Length]byte
	for i := range b {
		b[i] = 42
	}

	encoded, err := Encode("astria", b[:])
	require.NoError(t, err)
	require.Regexp(t, `^astria1`, encoded)

	// The generic decoder accepts the string and reports the Bech32m variant.
	_, _, enc, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, EncodingBech32m, enc)

	data, hrp, err := DecodeBech32m(encoded)
	require.NoError(t, err)
	require.Equal(t, "astria", hrp)
	require.Equal(t, b[:], data)
}

func TestDecodeBech32mRejectsBech32(t *testing.T) {
	var b [Length]byte
	encoded, err := Encode("astria", b[:])
	require.NoError(t, err)

	// Manually build a plain-bech32 encoding of the same payload by
	// forging the checksum constant path through encodeRaw.
	words, err := convertBits(b[:], 8, 5, true)
	require.NoError(t, err)
	bech32Str, err := encodeRaw("astria", words, EncodingBech32)
	require.NoError(t, err)
	require.NotEqual(t, encoded, bech32Str)

	_, _, enc, err := Decode(bech32Str)
	require.NoError(t, err)
	require.Equal(t, EncodingBech32, enc)

	_, _, err = DecodeBech32m(bech32Str)
	require.Error(t, err)
}

func TestAddressRoundTripViaType(t *testing.T) {
	var b [Length]byte
	for i := range b {
		b[i] = byte(i)
	}
	addr, err := New(b, "astria")
	require.NoError(t, err)

	parsed, err := ParseBech32m(addr.String())
	require.NoError(t, err)
	require.Equal(t, addr.Bytes(), parsed.Bytes())
	require.Equal(t, addr.Prefix(), parsed.Prefix())
}

func TestMatchesBase(t *testing.T) {
	var b [Length]byte
	addr, err := New(b, "astria")
	require.NoError(t, err)

	prefixes := Prefixes{Base: "astria", IBCCompat: "astriacompat"}
	require.True(t, addr.MatchesBase(prefixes))

	other, err := addr.WithPrefix("astriacompat")
	require.NoError(t, err)
	require.False(t, other.MatchesBase(prefixes))
	require.True(t, other.MatchesAny(prefixes))
}

func TestInvalidHrpLengths(t *testing.T) {
	_, err := Encode("", []byte{1, 2, 3})
	require.Error(t, err)

	longPrefix := make([]byte, 84)
	for i := range longPrefix {
		longPrefix[i] = 'a'
	}
	_, err = Encode(string(longPrefix), []byte{1, 2, 3})
	require.Error(t, err)
}
