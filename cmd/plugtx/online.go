package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/handlers"
	"github.com/plugnet/plug-api-types-go/models"
)

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()
	return ctx, cancel
}

type inclusionOutput struct {
	Hash      string `json:"hash"`
	BlockHash string `json:"blockHash"`
	Index     int    `json:"index"`
}

func writeInclusion(cmd *cobra.Command, in *handlers.Inclusion) error {
	return writeJSON(cmd.OutOrStdout(), inclusionOutput{
		Hash:      types.HexEncodeToString(in.Hash[:]),
		BlockHash: types.HexEncodeToString(in.BlockHash[:]),
		Index:     in.Index,
	})
}

func (a *app) submitCommand() *cobra.Command {
	var f signFlags
	cmd := &cobra.Command{
		Use:   "submit <call-hex>",
		Short: "sign a call with chain state and wait until it is in a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSigningClient(a.vp)
			if err != nil {
				return err
			}
			c, err := parseCall(args[0])
			if err != nil {
				return err
			}
			signer, err := f.signer(cfg.Seed)
			if err != nil {
				return err
			}
			d, err := f.optionDoughnut()
			if err != nil {
				return err
			}

			api, err := gsrpc.NewSubstrateAPI(cfg.Addr)
			if err != nil {
				return err
			}
			meta, err := api.RPC.State.GetMetadataLatest()
			if err != nil {
				return err
			}
			o, err := handlers.FetchSignatureOptions(api, meta, signer.PublicKey(), d)
			if err != nil {
				return err
			}
			o.Tip = types.NewUCompactFromUInt(f.tip)

			xt := models.NewVersionedExtrinsic(c)
			err = xt.Sign(signer, o)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			in, err := handlers.NewSubmitter(api, a.logger).SubmitAndWait(ctx, xt)
			if err != nil {
				return err
			}
			return writeInclusion(cmd, in)
		},
	}
	addSignFlags(cmd, &f, false)
	return cmd
}

func (a *app) transferCommand() *cobra.Command {
	var doughnut string
	cmd := &cobra.Command{
		Use:   "transfer <to> <amount>",
		Short: "transfer balance to an SS58 address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSigningClient(a.vp)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			t := handlers.NewBlsTransfer(cfg, a.logger)
			if doughnut != "" {
				d, err := models.NewDoughnutFromHex(doughnut, models.DoughnutRaw)
				if err != nil {
					return err
				}
				t.WithDoughnut(d)
			}

			ctx, cancel := signalContext()
			defer cancel()
			in, err := t.TransferTo(ctx, args[0], amount)
			if err != nil {
				return err
			}
			return writeInclusion(cmd, in)
		},
	}
	cmd.Flags().StringVar(&doughnut, "doughnut", "", "hex encoded doughnut certificate")
	return cmd
}

func (a *app) feeCommand() *cobra.Command {
	var (
		f    signFlags
		from string
	)
	cmd := &cobra.Command{
		Use:   "fee <call-hex>",
		Short: "estimate the fee of a call sent by an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClient(a.vp)
			if err != nil {
				return err
			}
			c, err := parseCall(args[0])
			if err != nil {
				return err
			}
			signer, err := models.NewMultiAddressFromSS58(from)
			if err != nil {
				return err
			}
			d, err := f.optionDoughnut()
			if err != nil {
				return err
			}

			api, err := gsrpc.NewSubstrateAPI(cfg.Addr)
			if err != nil {
				return err
			}
			info, err := handlers.NewFeeEstimator(api, a.logger).EstimateFee(c, signer, d)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), info)
		},
	}
	addSignFlags(cmd, &f, false)
	cmd.Flags().StringVar(&from, "from", "", "SS58 address of the sending account")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// logBlocks logs every extrinsic and event batch seen by the historical watcher
type logBlocks struct {
	logger *zap.Logger
}

func (l logBlocks) HandleFunc(moduleName string, funcName string, xt models.VersionedExtrinsic) error {
	fields := []zap.Field{
		zap.String("call", moduleName+"."+funcName),
		zap.Bool("signed", xt.IsSigned()),
	}
	if xt.IsSigned() {
		fields = append(fields,
			zap.Stringer("signer", xt.Signature.Signer),
			zap.Uint64("nonce", models.UCompactToUint64(xt.Signature.Nonce)),
		)
		if ok, d := xt.Signature.Doughnut.Unwrap(); ok {
			fields = append(fields, zap.String("doughnut", types.HexEncodeToString(d)))
		}
	}
	l.logger.Info("extrinsic", fields...)
	return nil
}

func (l logBlocks) HandleEvent(meta *types.Metadata, rawEvents types.EventRecordsRaw) error {
	events := types.EventRecords{}
	err := rawEvents.DecodeEventRecords(meta, &events)
	if err != nil {
		l.logger.Warn("cannot decode events", zap.Error(err))
		return nil
	}
	for _, e := range events.System_ExtrinsicFailed {
		l.logger.Info("extrinsic failed",
			zap.Uint32("index", uint32(e.Phase.AsApplyExtrinsic)),
			zap.String("error", handlers.DispatchErrorName(meta, e.DispatchError)),
		)
	}
	return nil
}

func (a *app) watchCommand() *cobra.Command {
	var (
		from            uint64
		noPalletIndices bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "follow the chain from a block, logging Plug extrinsics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadClient(a.vp)
			if err != nil {
				return err
			}
			types.SetSerDeOptions(types.SerDeOptions{NoPalletIndices: noPalletIndices})

			ctx, cancel := signalContext()
			defer cancel()
			err = handlers.WatchHistoricalBlocks(ctx, cfg, from, logBlocks{logger: a.logger}, a.logger)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 1, "first block to read")
	cmd.Flags().BoolVar(&noPalletIndices, "no-pallet-indices", false, "decode events by module position, for runtimes without pallet indices")
	return cmd
}
