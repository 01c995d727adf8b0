package handlers

import (
	"github.com/centrifuge/go-substrate-rpc-client/v2/client"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"

	"github.com/plugnet/plug-api-types-go/models"
)

// ChainGetBlock fetches a block, decoding its extrinsics as Plug extrinsics
func ChainGetBlock(cli client.Client, blockHash *types.Hash) (*models.SignedBlock, error) {
	var SignedBlock models.SignedBlock
	err := client.CallWithBlockHash(cli, &SignedBlock, "chain_getBlock", blockHash)
	if err != nil {
		return nil, err
	}
	return &SignedBlock, err
}
