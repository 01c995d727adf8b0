package handlers

import (
	"encoding/json"
	"math/big"
	"strings"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/client"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

// FeeBalance is a balance as returned by RPC, which nodes render either as a JSON
// number or as a (decimal or hex) string
type FeeBalance struct {
	big.Int
}

func (b *FeeBalance) UnmarshalJSON(bz []byte) error {
	s := strings.Trim(strings.TrimSpace(string(bz)), `"`)
	base := 10
	if strings.HasPrefix(s, "0x") {
		s, base = s[2:], 16
	}
	if _, ok := b.SetString(s, base); !ok {
		return errors.Errorf("invalid balance %s", string(bz))
	}
	return nil
}

func (b FeeBalance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// RuntimeDispatchInfo is the payment_queryInfo result
type RuntimeDispatchInfo struct {
	Weight     uint64     `json:"weight"`
	Class      string     `json:"class"`
	PartialFee FeeBalance `json:"partialFee"`
}

// PaymentQueryInfo asks the node for the weight and fee of an extrinsic, at blockHash
// or at the best block when nil
func PaymentQueryInfo(cli client.Client, xt models.VersionedExtrinsic, blockHash *types.Hash) (*RuntimeDispatchInfo, error) {
	enc, err := xt.Hex()
	if err != nil {
		return nil, err
	}

	var info RuntimeDispatchInfo
	if blockHash == nil {
		err = cli.Call(&info, "payment_queryInfo", enc)
	} else {
		err = cli.Call(&info, "payment_queryInfo", enc, types.HexEncodeToString(blockHash[:]))
	}
	if err != nil {
		return nil, errors.Wrap(err, "payment_queryInfo")
	}
	return &info, nil
}

// FeeEstimator builds fake-signed extrinsics for a signer and asks the node what
// they would cost, without needing the signer's key
type FeeEstimator struct {
	API    *gsrpc.SubstrateAPI
	Logger *zap.Logger
}

func NewFeeEstimator(api *gsrpc.SubstrateAPI, logger *zap.Logger) *FeeEstimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeEstimator{API: api, Logger: logger}
}

// EstimateFee returns the dispatch info of call sent by signer with the given doughnut
func (f *FeeEstimator) EstimateFee(c types.Call, signer models.MultiAddress, doughnut models.OptionDoughnut) (*RuntimeDispatchInfo, error) {
	id, ok := signer.AccountID()
	if !ok {
		return nil, errors.Wrap(models.ErrConstruction, "fee estimation needs an account id signer")
	}

	meta, err := f.API.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, err
	}
	o, err := FetchSignatureOptions(f.API, meta, id[:], doughnut)
	if err != nil {
		return nil, err
	}
	return f.quote(f.API.Client, c, signer, o)
}

// quote fake-signs c with o and queries its dispatch info
func (f *FeeEstimator) quote(cli client.Client, c types.Call, signer models.MultiAddress,
	o models.SignatureOptions) (*RuntimeDispatchInfo, error) {
	ext := models.NewVersionedExtrinsic(c)
	err := ext.SignFake(signer, o)
	if err != nil {
		return nil, err
	}

	info, err := PaymentQueryInfo(cli, ext, nil)
	if err != nil {
		return nil, err
	}
	f.Logger.Debug("estimated fee",
		zap.Stringer("signer", signer),
		zap.Uint64("weight", info.Weight),
		zap.String("class", info.Class),
		zap.String("partial_fee", info.PartialFee.String()),
	)
	return info, nil
}
