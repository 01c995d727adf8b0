package handlers

import (
	"fmt"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v2"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
)

// BlockEvents reads and decodes System.Events at blockHash
func BlockEvents(api *gsrpc.SubstrateAPI, meta *types.Metadata, blockHash types.Hash) (*types.EventRecords, error) {
	eventKey, err := types.CreateStorageKey(meta, "System", "Events", nil, nil)
	if err != nil {
		return nil, err
	}
	raw := types.EventRecordsRaw{}
	_, err = api.RPC.State.GetStorage(eventKey, &raw, blockHash)
	if err != nil {
		return nil, err
	}

	events := types.EventRecords{}
	err = raw.DecodeEventRecords(meta, &events)
	if err != nil {
		return nil, err
	}
	return &events, nil
}

// pallet is the part of a metadata module that name lookups need
type pallet struct {
	name string
	// index is the pallet index carried by dispatch errors
	index uint8
	// callIndex is the section index carried by calls, -1 without calls
	callIndex int
	calls     []string
	errors    []string
}

// pallets lists the modules of V11 and V12 metadata. V12 carries explicit pallet
// indices; before it a module's position is its index and calls count only the
// modules that have calls. Other metadata versions give no pallets.
func pallets(meta *types.Metadata) []pallet {
	var out []pallet
	switch {
	case meta.IsMetadataV12:
		for _, mod := range meta.AsMetadataV12.Modules {
			p := pallet{name: string(mod.Name), index: mod.Index, callIndex: -1}
			if mod.HasCalls {
				p.callIndex = int(mod.Index)
				for _, c := range mod.Calls {
					p.calls = append(p.calls, string(c.Name))
				}
			}
			for _, e := range mod.Errors {
				p.errors = append(p.errors, string(e.Name))
			}
			out = append(out, p)
		}
	case meta.IsMetadataV11:
		withCalls := 0
		for i, mod := range meta.AsMetadataV11.Modules {
			p := pallet{name: string(mod.Name), index: uint8(i), callIndex: -1}
			if mod.HasCalls {
				p.callIndex = withCalls
				withCalls++
				for _, c := range mod.Calls {
					p.calls = append(p.calls, string(c.Name))
				}
			}
			for _, e := range mod.Errors {
				p.errors = append(p.errors, string(e.Name))
			}
			out = append(out, p)
		}
	}
	return out
}

// CallName resolves the module and function of a call through V11 or V12 metadata.
// Unknown indices give empty names.
func CallName(meta *types.Metadata, c types.Call) (moduleName string, funcName string) {
	for _, p := range pallets(meta) {
		if p.callIndex != int(c.CallIndex.SectionIndex) {
			continue
		}
		if int(c.CallIndex.MethodIndex) >= len(p.calls) {
			return p.name, ""
		}
		return p.name, p.calls[c.CallIndex.MethodIndex]
	}
	return "", ""
}

// DispatchErrorName renders a dispatch error as Module.Error. The module is looked
// up by pallet index in V11 or V12 metadata; anything it cannot resolve is
// rendered numerically.
func DispatchErrorName(meta *types.Metadata, de types.DispatchError) string {
	if !de.HasModule {
		return fmt.Sprintf("%+v", de)
	}
	for _, p := range pallets(meta) {
		if p.index != uint8(de.Module) {
			continue
		}
		if int(de.Error) >= len(p.errors) {
			return fmt.Sprintf("%s error %d", p.name, de.Error)
		}
		return p.name + "." + p.errors[de.Error]
	}
	return fmt.Sprintf("module %d error %d", de.Module, de.Error)
}
