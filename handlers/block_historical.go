package handlers

import (
	"context"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

// PollInterval is how long the historical watcher sleeps once it caught up
var PollInterval = 10 * time.Second

// FuncAndEventOfBlock receives the extrinsics and raw events of each block
type FuncAndEventOfBlock interface {
	HandleFunc(moduleName string, funcName string, xt models.VersionedExtrinsic) error
	HandleEvent(meta *types.Metadata, rawEvents types.EventRecordsRaw) error
}

// WatchHistoricalBlocks walks the chain from block `from`, handing every block with
// extrinsics to handler, and keeps following new blocks until ctx is done.
// Event decoding follows the caller's types.SetSerDeOptions.
func WatchHistoricalBlocks(ctx context.Context, cfg models.Client, from uint64, handler FuncAndEventOfBlock, logger *zap.Logger) (err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api, err := gsrpc.NewSubstrateAPI(cfg.Addr)
	if err != nil {
		return
	}

	curr := from
	for {
		meta, err := api.RPC.State.GetMetadataLatest()
		if err != nil {
			return err
		}
		latestBlockHash, err := api.RPC.Chain.GetBlockHashLatest()
		if err != nil {
			return err
		}
		lastBlock, err := ChainGetBlock(api.Client, &latestBlockHash)
		if err != nil {
			return err
		}
		last := uint64(lastBlock.Block.Header.Number)
		if curr > last {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(PollInterval):
			}
			continue
		}

		for i := curr; i <= last; i++ {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			err = handleBlock(api, meta, i, handler, logger)
			if err != nil {
				return err
			}
		}
		curr = last + 1
	}
}

func handleBlock(api *gsrpc.SubstrateAPI, meta *types.Metadata, number uint64, handler FuncAndEventOfBlock, logger *zap.Logger) error {
	blockHash, err := api.RPC.Chain.GetBlockHash(number)
	if err != nil {
		return err
	}
	block, err := ChainGetBlock(api.Client, &blockHash)
	if err != nil {
		return err
	}
	if len(block.Block.Extrinsics) == 0 {
		return nil
	}
	// ignore blocks holding only timestamp.set
	if len(block.Block.Extrinsics) == 1 {
		moduleName, funcName := CallName(meta, block.Block.Extrinsics[0].Method)
		if moduleName == "Timestamp" && funcName == "set" {
			return nil
		}
	}

	eventKey, err := types.CreateStorageKey(meta, "System", "Events", nil, nil)
	if err != nil {
		return err
	}
	rawEvents := types.EventRecordsRaw{}
	_, err = api.RPC.State.GetStorage(eventKey, &rawEvents, blockHash)
	if err != nil {
		return err
	}

	logger.Info("block", zap.Uint64("height", number), zap.Int("extrinsics", len(block.Block.Extrinsics)))
	for _, xt := range block.Block.Extrinsics {
		moduleName, funcName := CallName(meta, xt.Method)
		logger.Debug("extrinsic",
			zap.String("call", moduleName+"."+funcName),
			zap.Bool("signed", xt.IsSigned()),
			zap.Bool("doughnut", xt.Signature.Doughnut.HasValue),
		)
		err = handler.HandleFunc(moduleName, funcName, xt)
		if err != nil {
			return err
		}
	}
	return handler.HandleEvent(meta, rawEvents)
}
