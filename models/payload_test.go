package models

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	genesisHex = strings.Repeat("01", 32)
	blockHex   = strings.Repeat("02", 32)
)

func TestCreatePayloadDefaults(t *testing.T) {
	var s ExtrinsicSignature
	p, err := s.CreatePayload(testCall(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, []byte{0x04, 0x00, 0xaa, 0xbb}, []byte(p.Method))
	assert.False(t, p.Doughnut.HasValue)
	assert.True(t, p.Era.IsImmortalEra)
	assert.Equal(t, uint64(0), UCompactToUint64(p.Tip))
	assert.Equal(t, uint64(5), UCompactToUint64(p.Nonce))
	assert.Equal(t, types.U32(10), p.SpecVersion)
}

func TestSigningPreimage(t *testing.T) {
	p := NewExtrinsicPayload([]byte{0x04, 0x00, 0xaa, 0xbb}, testOptions())

	preimage, err := p.SigningPreimage()
	require.NoError(t, err)
	want := "0400aabb" + // method, no length prefix
		"00" + // no doughnut
		"00" + // immortal
		"14" + // nonce 5
		"00" + // tip 0
		"0a000000" + // spec version
		genesisHex +
		blockHex
	assert.Equal(t, want, hex.EncodeToString(preimage))

	// the round-trip form carries the method length
	assert.Equal(t, "10"+want, encodeHex(t, p))
}

func TestSigningPreimageWithDoughnut(t *testing.T) {
	o := testOptions()
	o.Doughnut = NewOptionDoughnut(Doughnut{0xde, 0xad})
	o.Tip = types.NewUCompactFromUInt(100)
	p := NewExtrinsicPayload([]byte{0x04, 0x00}, o)

	preimage, err := p.SigningPreimage()
	require.NoError(t, err)
	want := "0400" +
		"0108dead" + // some doughnut, length prefixed
		"00" +
		"14" +
		"9101" + // compact 100
		"0a000000" +
		genesisHex +
		blockHex
	assert.Equal(t, want, hex.EncodeToString(preimage))
}

func TestPayloadIsDeterministic(t *testing.T) {
	a, err := NewExtrinsicPayload([]byte{0x01, 0x02}, testOptions()).SigningPreimage()
	require.NoError(t, err)
	b, err := NewExtrinsicPayload([]byte{0x01, 0x02}, testOptions()).SigningPreimage()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPayloadRoundTrip(t *testing.T) {
	o := testOptions()
	o.Doughnut = NewOptionDoughnut(Doughnut{0x01, 0x02, 0x03})
	o.Era = types.ExtrinsicEra{IsMortalEra: true, AsMortalEra: types.MortalEra{First: 0x45, Second: 0x00}}
	o.Tip = types.NewUCompactFromUInt(1 << 40)
	p := NewExtrinsicPayload([]byte{0x04, 0x00, 0xaa, 0xbb}, o)

	bz, err := types.EncodeToBytes(p)
	require.NoError(t, err)

	back, err := DecodeExtrinsicPayload(bz)
	require.NoError(t, err)
	assert.Equal(t, []byte(p.Method), []byte(back.Method))
	assert.Equal(t, p.Doughnut, back.Doughnut)
	assert.Equal(t, p.Era, back.Era)
	assert.True(t, UCompactEqual(p.Nonce, back.Nonce))
	assert.True(t, UCompactEqual(p.Tip, back.Tip))
	assert.Equal(t, p.SpecVersion, back.SpecVersion)
	assert.Equal(t, p.GenesisHash, back.GenesisHash)
	assert.Equal(t, p.BlockHash, back.BlockHash)

	fromHex, err := DecodeExtrinsicPayloadHex("0x" + hex.EncodeToString(bz))
	require.NoError(t, err)
	assert.Equal(t, encodeHex(t, back), encodeHex(t, fromHex))
}

func TestDecodeExtrinsicPayloadTruncated(t *testing.T) {
	bz, err := types.EncodeToBytes(NewExtrinsicPayload([]byte{0x04, 0x00}, testOptions()))
	require.NoError(t, err)

	_, err = DecodeExtrinsicPayload(bz[:len(bz)-1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestLongPayloadIsHashedBeforeSigning(t *testing.T) {
	p := NewExtrinsicPayload(bytes.Repeat([]byte{0x07}, 300), testOptions())
	preimage, err := p.SigningPreimage()
	require.NoError(t, err)
	require.Greater(t, len(preimage), MaxUnhashedPayload)

	sig, err := p.Sign(aliceSigner())
	require.NoError(t, err)

	ok, err := signature.Verify(preimage, sig, signature.TestKeyringPairAlice.URI)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddSignature(t *testing.T) {
	p := NewExtrinsicPayload([]byte{0x04, 0x00, 0xaa, 0xbb}, testOptions())
	raw, err := p.Sign(aliceSigner())
	require.NoError(t, err)

	sig, err := NewMultiSignature(Sr25519, raw)
	require.NoError(t, err)

	e := NewVersionedExtrinsic(testCall())
	require.NoError(t, e.AddSignature(NewMultiAddressFromAccountID(signature.TestKeyringPairAlice.PublicKey), sig, p))
	assert.True(t, e.IsSigned())
	assert.True(t, e.Extrinsic.IsSigned())
	assert.Equal(t, uint64(5), UCompactToUint64(e.Signature.Nonce))
	assert.True(t, e.Signature.Era.IsImmortalEra)

	ok, err := signature.Verify(mustPreimage(t, p), e.Signature.Signature.Raw(), signature.TestKeyringPairAlice.URI)
	require.NoError(t, err)
	assert.True(t, ok)
}

func mustPreimage(t *testing.T, p ExtrinsicPayload) []byte {
	t.Helper()
	b, err := p.SigningPreimage()
	require.NoError(t, err)
	return b
}
