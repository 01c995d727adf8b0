package handlers

import (
	"context"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

// DefaultInclusionTimeout bounds how long SubmitAndWait waits for a block
const DefaultInclusionTimeout = 2 * time.Minute

var (
	// ErrExtrinsicFailed is returned when the extrinsic was included but its dispatch failed
	ErrExtrinsicFailed = errors.New("extrinsic failed")
	// ErrExtrinsicRejected is returned when the pool drops, rejects or replaces the extrinsic
	ErrExtrinsicRejected = errors.New("extrinsic rejected")
)

// Inclusion describes where a submitted extrinsic ended up
type Inclusion struct {
	BlockHash types.Hash
	Index     int
	Hash      types.Hash
}

// Submitter sends signed extrinsics and follows them into a block
type Submitter struct {
	API     *gsrpc.SubstrateAPI
	Logger  *zap.Logger
	Timeout time.Duration
}

func NewSubmitter(api *gsrpc.SubstrateAPI, logger *zap.Logger) *Submitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Submitter{API: api, Logger: logger, Timeout: DefaultInclusionTimeout}
}

// SubmitAndWait submits xt and returns once it is in a block, checking the
// System.ExtrinsicFailed event for its index
func (s *Submitter) SubmitAndWait(ctx context.Context, xt models.VersionedExtrinsic) (*Inclusion, error) {
	if !xt.IsSigned() {
		return nil, errors.Wrap(models.ErrConstruction, "refusing to submit an unsigned extrinsic")
	}
	xtHash, err := xt.Hash()
	if err != nil {
		return nil, err
	}
	log := s.Logger.With(zap.String("extrinsic", xtHash.Hex()))

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	sub, err := AuthorSubmitAndWatchExtrinsic(s.API.Client, xt)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	blockHash, err := waitForBlock(ctx, sub.Chan(), sub.Err(), log)
	if err != nil {
		return nil, err
	}
	return s.inclusion(blockHash, xtHash)
}

// waitForBlock follows status updates until the extrinsic is in a block and
// returns the hash of that block
func waitForBlock(ctx context.Context, statuses <-chan types.ExtrinsicStatus, errs <-chan error,
	log *zap.Logger) (types.Hash, error) {
	for {
		select {
		case <-ctx.Done():
			return types.Hash{}, ctx.Err()
		case err := <-errs:
			if err == nil {
				err = errors.New("subscription closed")
			}
			return types.Hash{}, errors.Wrap(err, "watching extrinsic")
		case status, ok := <-statuses:
			if !ok {
				return types.Hash{}, errors.New("watching extrinsic: status channel closed")
			}
			switch {
			case status.IsFuture:
				log.Debug("extrinsic in future queue")
			case status.IsReady:
				log.Debug("extrinsic ready")
			case status.IsBroadcast:
				log.Debug("extrinsic broadcast", zap.Int("peers", len(status.AsBroadcast)))
			case status.IsInBlock:
				log.Info("extrinsic in block", zap.String("block", status.AsInBlock.Hex()))
				return status.AsInBlock, nil
			case status.IsFinalized:
				log.Info("extrinsic finalized", zap.String("block", status.AsFinalized.Hex()))
				return status.AsFinalized, nil
			case status.IsDropped, status.IsInvalid, status.IsUsurped:
				log.Warn("extrinsic rejected", zap.Any("status", status))
				return types.Hash{}, errors.Wrapf(ErrExtrinsicRejected, "%+v", status)
			}
		}
	}
}

// extrinsicIndex finds the position of the extrinsic with hash xtHash in block
func extrinsicIndex(block *models.SignedBlock, xtHash types.Hash) (int, error) {
	for i, ext := range block.Block.Extrinsics {
		h, err := ext.Hash()
		if err != nil {
			return -1, err
		}
		if h == xtHash {
			return i, nil
		}
	}
	return -1, errors.Errorf("extrinsic %s not found in block", xtHash.Hex())
}

// failedAt returns the dispatch error of the extrinsic applied at idx, if it failed
func failedAt(events *types.EventRecords, idx int) (types.DispatchError, bool) {
	for _, e := range events.System_ExtrinsicFailed {
		if e.Phase.IsApplyExtrinsic && int(e.Phase.AsApplyExtrinsic) == idx {
			return e.DispatchError, true
		}
	}
	return types.DispatchError{}, false
}

func (s *Submitter) inclusion(blockHash types.Hash, xtHash types.Hash) (*Inclusion, error) {
	block, err := ChainGetBlock(s.API.Client, &blockHash)
	if err != nil {
		return nil, err
	}
	idx, err := extrinsicIndex(block, xtHash)
	if err != nil {
		return nil, errors.Wrapf(err, "block %s", blockHash.Hex())
	}

	meta, err := s.API.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, err
	}
	events, err := BlockEvents(s.API, meta, blockHash)
	if err != nil {
		// runtimes with events this client cannot decode still included the extrinsic
		s.Logger.Warn("cannot decode block events", zap.Error(err))
		return &Inclusion{BlockHash: blockHash, Index: idx, Hash: xtHash}, nil
	}

	if de, failed := failedAt(events, idx); failed {
		return nil, errors.Wrap(ErrExtrinsicFailed, DispatchErrorName(meta, de))
	}
	return &Inclusion{BlockHash: blockHash, Index: idx, Hash: xtHash}, nil
}
