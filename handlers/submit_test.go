package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

func hashOf(b byte) types.Hash {
	return types.NewHash(bytes.Repeat([]byte{b}, 32))
}

func TestWaitForBlock(t *testing.T) {
	inBlock := hashOf(0x0a)
	finalized := hashOf(0x0b)

	tests := []struct {
		name     string
		statuses []types.ExtrinsicStatus
		want     types.Hash
		wantErr  error
	}{
		{
			name: "ready and broadcast keep waiting",
			statuses: []types.ExtrinsicStatus{
				{IsReady: true},
				{IsBroadcast: true, AsBroadcast: []types.Text{"peer"}},
				{IsInBlock: true, AsInBlock: inBlock},
			},
			want: inBlock,
		},
		{
			name: "finalized",
			statuses: []types.ExtrinsicStatus{
				{IsFuture: true},
				{IsFinalized: true, AsFinalized: finalized},
			},
			want: finalized,
		},
		{name: "dropped", statuses: []types.ExtrinsicStatus{{IsReady: true}, {IsDropped: true}}, wantErr: ErrExtrinsicRejected},
		{name: "invalid", statuses: []types.ExtrinsicStatus{{IsInvalid: true}}, wantErr: ErrExtrinsicRejected},
		{name: "usurped", statuses: []types.ExtrinsicStatus{{IsUsurped: true, AsUsurped: inBlock}}, wantErr: ErrExtrinsicRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan types.ExtrinsicStatus, len(tt.statuses))
			for _, s := range tt.statuses {
				ch <- s
			}

			h, err := waitForBlock(context.Background(), ch, nil, zap.NewNop())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, h)
		})
	}
}

func TestWaitForBlockEndsWithSubscription(t *testing.T) {
	closed := make(chan types.ExtrinsicStatus)
	close(closed)
	_, err := waitForBlock(context.Background(), closed, nil, zap.NewNop())
	assert.Error(t, err)

	errs := make(chan error, 1)
	errs <- nil
	_, err = waitForBlock(context.Background(), nil, errs, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription closed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = waitForBlock(ctx, nil, nil, zap.NewNop())
	assert.Equal(t, context.Canceled, err)
}

func testExtrinsic(method byte) models.VersionedExtrinsic {
	return models.NewVersionedExtrinsic(types.Call{
		CallIndex: types.CallIndex{SectionIndex: 4, MethodIndex: method},
		Args:      types.Args{0xaa, 0xbb},
	})
}

func TestExtrinsicIndex(t *testing.T) {
	block := &models.SignedBlock{Block: models.Block{
		Extrinsics: []models.VersionedExtrinsic{testExtrinsic(0), testExtrinsic(1), testExtrinsic(2)},
	}}

	h, err := testExtrinsic(1).Hash()
	require.NoError(t, err)
	idx, err := extrinsicIndex(block, h)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	missing, err := testExtrinsic(9).Hash()
	require.NoError(t, err)
	_, err = extrinsicIndex(block, missing)
	assert.Error(t, err)
}

func TestFailedAt(t *testing.T) {
	events := &types.EventRecords{
		System_ExtrinsicFailed: []types.EventSystemExtrinsicFailed{
			{
				Phase:         types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: 0},
				DispatchError: types.DispatchError{HasModule: true, Module: 6, Error: 0},
			},
			{
				Phase:         types.Phase{IsApplyExtrinsic: true, AsApplyExtrinsic: 2},
				DispatchError: types.DispatchError{HasModule: true, Module: 6, Error: 1},
			},
			{
				Phase:         types.Phase{IsFinalization: true},
				DispatchError: types.DispatchError{HasModule: true, Module: 6, Error: 0},
			},
		},
	}

	de, failed := failedAt(events, 2)
	require.True(t, failed)
	assert.Equal(t, "Balances.InsufficientBalance", DispatchErrorName(testMetadata(), de))

	_, failed = failedAt(events, 1)
	assert.False(t, failed)

	_, failed = failedAt(&types.EventRecords{}, 0)
	assert.False(t, failed)
}

func TestNewSubmitterDefaults(t *testing.T) {
	s := NewSubmitter(nil, nil)
	assert.Nil(t, s.API)
	assert.NotNil(t, s.Logger)
	assert.Equal(t, DefaultInclusionTimeout, s.Timeout)
}
