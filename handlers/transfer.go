package handlers

import (
	"context"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

// BlsTransfer sends balance transfers, optionally under a doughnut delegation
type BlsTransfer struct {
	Client   models.Client
	Doughnut models.OptionDoughnut
	Logger   *zap.Logger
}

func NewBlsTransfer(cli models.Client, logger *zap.Logger) *BlsTransfer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlsTransfer{
		Client: cli,
		Logger: logger,
	}
}

// WithDoughnut attaches a delegation certificate to the transfers
func (b *BlsTransfer) WithDoughnut(d models.Doughnut) *BlsTransfer {
	b.Doughnut = models.NewOptionDoughnut(d)
	return b
}

// TransferTo moves amount to the SS58 address who and waits for the block
func (b *BlsTransfer) TransferTo(ctx context.Context, who string, amount uint64) (*Inclusion, error) {
	api, err := gsrpc.NewSubstrateAPI(b.Client.Addr)
	if err != nil {
		return nil, err
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, err
	}

	signer, err := models.NewKeyringSigner(b.Client.Seed)
	if err != nil {
		return nil, err
	}

	dest, err := models.NewMultiAddressFromSS58(who)
	if err != nil {
		return nil, err
	}
	c, err := types.NewCall(meta, "Balances.transfer", dest, types.NewUCompactFromUInt(amount))
	if err != nil {
		return nil, err
	}

	ext := models.NewVersionedExtrinsic(c)
	o, err := FetchSignatureOptions(api, meta, signer.PublicKey(), b.Doughnut)
	if err != nil {
		return nil, err
	}
	err = ext.Sign(signer, o)
	if err != nil {
		return nil, err
	}

	b.Logger.Info("transfer signed",
		zap.String("from", models.SS58Addr(signer.PublicKey())),
		zap.String("to", who),
		zap.Uint64("amount", amount),
		zap.Uint64("nonce", models.UCompactToUint64(o.Nonce)),
		zap.Bool("doughnut", b.Doughnut.HasValue),
	)
	return NewSubmitter(api, b.Logger).SubmitAndWait(ctx, ext)
}
