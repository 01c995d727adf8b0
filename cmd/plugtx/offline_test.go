package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/plugnet/plug-api-types-go/models"
)

const (
	alicePub    = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"
	testCallHex = "0x0400aabb"
)

var testGenesis = "0x" + strings.Repeat("01", 32)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOutput(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFakeSignCommand(t *testing.T) {
	out, err := execute(t, "fake-sign", testCallHex,
		"--from", signature.TestKeyringPairAlice.Address,
		"--genesis", testGenesis,
		"--nonce", "5",
		"--spec-version", "10",
	)
	require.NoError(t, err)

	var res signedOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	want := "0xad01" + "84" +
		"00" + alicePub +
		"01" + strings.Repeat("42", 64) +
		"00" + "00" + "14" + "00" +
		"0400aabb"
	assert.Equal(t, want, res.Extrinsic)

	bz, err := hex.DecodeString(want[2:])
	require.NoError(t, err)
	h := blake2b.Sum256(bz)
	assert.Equal(t, "0x"+hex.EncodeToString(h[:]), res.Hash)

	out, err = execute(t, "hash", res.Extrinsic)
	require.NoError(t, err)
	assert.Equal(t, res.Hash, strings.TrimSpace(out))
}

func TestSignAndDecodeCommands(t *testing.T) {
	t.Setenv("PLUGTX_SEED", "//Alice")
	out, err := execute(t, "sign", testCallHex,
		"--genesis", testGenesis,
		"--nonce", "7",
		"--tip", "100",
		"--spec-version", "10",
		"--doughnut", "0xdeadbeef",
	)
	require.NoError(t, err)

	var res signedOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))

	xt := models.VersionedExtrinsic{}
	require.NoError(t, xt.UnmarshalHex(res.Extrinsic))
	assert.True(t, xt.IsSigned())

	out, err = execute(t, "decode", res.Extrinsic)
	require.NoError(t, err)
	var view extrinsicView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, uint8(4), view.Version)
	assert.True(t, view.Signed)
	assert.Equal(t, signature.TestKeyringPairAlice.Address, view.Signer)
	assert.Equal(t, "sr25519", view.SignatureType)
	assert.Equal(t, "0xdeadbeef", view.Doughnut)
	assert.Equal(t, "immortal", view.Era)
	assert.Equal(t, uint64(7), view.Nonce)
	assert.Equal(t, "100", view.Tip)
	assert.Equal(t, uint8(4), view.Section)
	assert.Equal(t, uint8(0), view.Method)
	assert.Equal(t, "0xaabb", view.Args)
	assert.Equal(t, res.Hash, view.Hash)

	// the signature verifies against the payload rebuilt from the flags
	genesis, err := types.NewHashFromHexString(testGenesis)
	require.NoError(t, err)
	p := models.NewExtrinsicPayload([]byte{0x04, 0x00, 0xaa, 0xbb}, models.SignatureOptions{
		BlockHash:      genesis,
		Doughnut:       xt.Signature.Doughnut,
		GenesisHash:    genesis,
		Nonce:          types.NewUCompactFromUInt(7),
		RuntimeVersion: types.RuntimeVersion{SpecVersion: 10},
		Tip:            types.NewUCompactFromUInt(100),
	})
	preimage, err := p.SigningPreimage()
	require.NoError(t, err)
	ok, err := models.Verify(models.Sr25519, signature.TestKeyringPairAlice.PublicKey, preimage, xt.Signature.Signature.Raw())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignRequiresSeed(t *testing.T) {
	_, err := execute(t, "sign", testCallHex, "--genesis", testGenesis)
	assert.Equal(t, errNoSeed, err)
}

func TestDecodeRuntimeTypes(t *testing.T) {
	out, err := execute(t, "decode", "--type", "Doughnut", "0x0cdeadbe")
	require.NoError(t, err)
	assert.Equal(t, `"0xdeadbe"`, strings.TrimSpace(out))

	out, err = execute(t, "decode", "--type", "RewardBalance", "0x"+"e8030000"+strings.Repeat("00", 12))
	require.NoError(t, err)
	assert.Equal(t, "1000", strings.TrimSpace(out))

	_, err = execute(t, "decode", "--type", "Nope", "0x00")
	assert.Error(t, err)
}

func TestSignFlagErrors(t *testing.T) {
	t.Setenv("PLUGTX_SEED", "//Alice")
	_, err := execute(t, "sign", testCallHex, "--genesis", testGenesis, "--scheme", "ecdsa")
	assert.Error(t, err)

	_, err = execute(t, "sign", testCallHex, "--genesis", testGenesis, "--doughnut", "0x01", "--doughnut-form", "zip")
	assert.Error(t, err)

	_, err = execute(t, "sign", "0x04", "--genesis", testGenesis)
	assert.ErrorIs(t, err, models.ErrConstruction)
}
