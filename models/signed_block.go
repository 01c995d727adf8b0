package models

import (
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
)

// SignedBlock is a chain_getBlock result whose extrinsics are Plug extrinsics
type SignedBlock struct {
	Block         Block               `json:"block"`
	Justification types.Justification `json:"justification"`
}

// Block encoded with header and extrinsics
type Block struct {
	Header     types.Header
	Extrinsics []VersionedExtrinsic
}
