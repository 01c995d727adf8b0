package models

import (
	"math/big"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeTypeNames(t *testing.T) {
	assert.Equal(t, []string{"Balance", "Doughnut", "Extrinsic", "RewardBalance"}, RuntimeTypeNames())
}

func TestLookupRuntimeType(t *testing.T) {
	rt, ok := LookupRuntimeType("RewardBalance")
	require.True(t, ok)
	assert.Equal(t, "Balance", rt.Name)

	_, ok = LookupRuntimeType("Unknown")
	assert.False(t, ok)
}

func TestDecodeRuntimeType(t *testing.T) {
	v, err := DecodeRuntimeType("Doughnut", []byte{0x08, 0xca, 0xfe})
	require.NoError(t, err)
	d, ok := v.(*Doughnut)
	require.True(t, ok)
	assert.Equal(t, Doughnut{0xca, 0xfe}, *d)

	v, err = DecodeRuntimeType("Extrinsic", []byte{0x14, 0x04, 0x04, 0x00, 0xaa, 0xbb})
	require.NoError(t, err)
	e, ok := v.(*VersionedExtrinsic)
	require.True(t, ok)
	assert.False(t, e.IsSigned())
	assert.Equal(t, testCall().CallIndex, e.Method.CallIndex)

	reward := types.NewU128(*big.NewInt(1000))
	bz, err := types.EncodeToBytes(reward)
	require.NoError(t, err)
	v, err = DecodeRuntimeType("RewardBalance", bz)
	require.NoError(t, err)
	b, ok := v.(*types.U128)
	require.True(t, ok)
	assert.Equal(t, int64(1000), b.Int64())

	_, err = DecodeRuntimeType("Moment", nil)
	assert.True(t, errors.Is(err, ErrConstruction))

	_, err = DecodeRuntimeType("Doughnut", []byte{0x08})
	assert.True(t, errors.Is(err, ErrDecode))
}
