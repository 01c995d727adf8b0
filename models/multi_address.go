package models

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
)

// MultiAddress is the runtime's address type for the extrinsic signer
type MultiAddress struct {
	IsID        bool
	AsID        types.AccountID
	IsIndex     bool
	AsIndex     types.UCompact
	IsRaw       bool
	AsRaw       []byte
	IsAddress32 bool
	AsAddress32 [32]byte
	IsAddress20 bool
	AsAddress20 [20]byte
}

// NewMultiAddressFromAccountID creates an address from the given account id (public key)
func NewMultiAddressFromAccountID(b []byte) MultiAddress {
	return MultiAddress{
		IsID: true,
		AsID: types.NewAccountID(b),
	}
}

// NewMultiAddressFromSS58 creates an address from an SS58 encoded account
func NewMultiAddressFromSS58(addr string) (MultiAddress, error) {
	id, err := DecodeSS58Address(addr)
	if err != nil {
		return MultiAddress{}, err
	}
	return NewMultiAddressFromAccountID(id), nil
}

// AccountID returns the account id if the address holds one
func (m MultiAddress) AccountID() (types.AccountID, bool) {
	return m.AsID, m.IsID
}

// String renders account ids as SS58, every other variant as hex
func (m MultiAddress) String() string {
	switch {
	case m.IsID:
		return SS58Addr(m.AsID[:])
	case m.IsIndex:
		return fmt.Sprintf("index(%v)", UCompactToUint64(m.AsIndex))
	case m.IsRaw:
		return types.HexEncodeToString(m.AsRaw)
	case m.IsAddress32:
		return types.HexEncodeToString(m.AsAddress32[:])
	case m.IsAddress20:
		return types.HexEncodeToString(m.AsAddress20[:])
	}
	return ""
}

func (m MultiAddress) Encode(encoder scale.Encoder) (err error) {
	switch {
	case m.IsID:
		err = encoder.PushByte(0)
		if err != nil {
			return
		}
		return encoder.Encode(m.AsID)
	case m.IsIndex:
		err = encoder.PushByte(1)
		if err != nil {
			return
		}
		return encoder.Encode(m.AsIndex)
	case m.IsRaw:
		err = encoder.PushByte(2)
		if err != nil {
			return
		}
		return encoder.Encode(m.AsRaw)
	case m.IsAddress32:
		err = encoder.PushByte(3)
		if err != nil {
			return
		}
		return encoder.Write(m.AsAddress32[:])
	case m.IsAddress20:
		err = encoder.PushByte(4)
		if err != nil {
			return
		}
		return encoder.Write(m.AsAddress20[:])
	}
	return errors.Wrap(ErrConstruction, "MultiAddress has no variant set")
}

func (m *MultiAddress) Decode(decoder scale.Decoder) (err error) {
	b, err := decoder.ReadOneByte()
	if err != nil {
		return decodeErr(err, "address prefix")
	}

	var out MultiAddress
	switch b {
	case 0:
		out.IsID = true
		err = decoder.Decode(&out.AsID)
	case 1:
		out.IsIndex = true
		err = decoder.Decode(&out.AsIndex)
	case 2:
		out.IsRaw = true
		err = decoder.Decode(&out.AsRaw)
	case 3:
		out.IsAddress32 = true
		err = decoder.Read(out.AsAddress32[:])
	case 4:
		out.IsAddress20 = true
		err = decoder.Read(out.AsAddress20[:])
	default:
		return errors.Wrapf(ErrDecode, "unknown byte prefix for encoded MultiAddress: %d", b)
	}
	if err != nil {
		return decodeErr(err, "address")
	}
	*m = out
	return nil
}
