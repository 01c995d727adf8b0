package handlers

import (
	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"

	"github.com/plugnet/plug-api-types-go/models"
)

// ErrAccountNotExist is returned when the signing account has no storage entry yet
var ErrAccountNotExist = errors.New("account not exist")

// AccountNonce reads the next nonce of an account from System.Account
func AccountNonce(api *gsrpc.SubstrateAPI, meta *types.Metadata, accountID []byte) (uint32, error) {
	key, err := types.CreateStorageKey(meta, "System", "Account", accountID, nil)
	if err != nil {
		return 0, err
	}

	var accountInfo types.AccountInfo
	ok, err := api.RPC.State.GetStorageLatest(key, &accountInfo)
	if err != nil {
		return 0, err
	} else if !ok {
		return 0, ErrAccountNotExist
	}
	return uint32(accountInfo.Nonce), nil
}

// blockHashes is the part of the chain RPC signing options need
type blockHashes interface {
	GetBlockHash(blockNumber uint64) (types.Hash, error)
}

// runtimeVersions is the part of the state RPC signing options need
type runtimeVersions interface {
	GetRuntimeVersionLatest() (*types.RuntimeVersion, error)
}

// FetchSignatureOptions collects what signing needs from chain state: genesis hash,
// runtime version and the signer's nonce. The extrinsic is immortal, so the block
// hash is the genesis hash.
func FetchSignatureOptions(api *gsrpc.SubstrateAPI, meta *types.Metadata, accountID []byte,
	doughnut models.OptionDoughnut) (models.SignatureOptions, error) {
	nonce, err := AccountNonce(api, meta, accountID)
	if err != nil {
		return models.SignatureOptions{}, err
	}
	return signatureOptions(api.RPC.Chain, api.RPC.State, nonce, doughnut)
}

func signatureOptions(chain blockHashes, state runtimeVersions, nonce uint32,
	doughnut models.OptionDoughnut) (o models.SignatureOptions, err error) {
	genesisHash, err := chain.GetBlockHash(0)
	if err != nil {
		return
	}

	rv, err := state.GetRuntimeVersionLatest()
	if err != nil {
		return
	}

	o = models.SignatureOptions{
		BlockHash:      genesisHash,
		Era:            types.ExtrinsicEra{IsImmortalEra: true},
		Doughnut:       doughnut,
		GenesisHash:    genesisHash,
		Nonce:          types.NewUCompactFromUInt(uint64(nonce)),
		RuntimeVersion: *rv,
		Tip:            types.NewUCompactFromUInt(0),
	}
	return
}
