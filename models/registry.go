package models

import (
	"sort"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
)

// Codec is a value the generic codec layer can encode and decode
type Codec interface {
	Encode(encoder scale.Encoder) error
	Decode(decoder scale.Decoder) error
}

// RewardBalance is the staking reward currency type
type RewardBalance = types.U128

// RuntimeType binds a runtime type name to a constructor, or to another name it aliases
type RuntimeType struct {
	Name    string
	AliasOf string
	New     func() Codec
}

// PlugRuntimeTypes are the types the Plug runtime adds on top of substrate's
var PlugRuntimeTypes = map[string]RuntimeType{
	// the doughnut certificate type
	"Doughnut": {Name: "Doughnut", New: func() Codec { return new(Doughnut) }},
	// the Plug extrinsic type
	"Extrinsic": {Name: "Extrinsic", New: func() Codec { return new(VersionedExtrinsic) }},
	// the staking reward currency type
	"RewardBalance": {Name: "RewardBalance", AliasOf: "Balance"},
	"Balance":       {Name: "Balance", New: func() Codec { return new(types.U128) }},
}

// RuntimeTypeNames lists the registered names in order
func RuntimeTypeNames() []string {
	names := make([]string, 0, len(PlugRuntimeTypes))
	for name := range PlugRuntimeTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupRuntimeType resolves name, following aliases, to the type that builds values
func LookupRuntimeType(name string) (RuntimeType, bool) {
	seen := map[string]bool{}
	for {
		rt, ok := PlugRuntimeTypes[name]
		if !ok || seen[name] {
			return RuntimeType{}, false
		}
		if rt.AliasOf == "" {
			return rt, true
		}
		seen[name] = true
		name = rt.AliasOf
	}
}

// DecodeRuntimeType decodes bz as the named runtime type
func DecodeRuntimeType(name string, bz []byte) (Codec, error) {
	rt, ok := LookupRuntimeType(name)
	if !ok {
		return nil, errors.Wrapf(ErrConstruction, "unknown runtime type %q", name)
	}
	v := rt.New()
	err := types.DecodeFromBytes(bz, v)
	if err != nil {
		return nil, decodeErr(err, name)
	}
	return v, nil
}
