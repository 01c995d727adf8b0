package models

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
)

// Extrinsic is the body of a Plug extrinsic: the signature section followed by
// the call it authorizes. The version byte and outer length prefix are added by
// VersionedExtrinsic.
type Extrinsic struct {
	// Signature is empty (and encodes to nothing) for unsigned extrinsics
	Signature ExtrinsicSignature
	// Method is the call this extrinsic wraps
	Method types.Call
}

// NewExtrinsicFromCall creates an unsigned extrinsic for the provided call
func NewExtrinsicFromCall(c types.Call) Extrinsic {
	return Extrinsic{Method: c}
}

// NewExtrinsic builds an extrinsic from nil (empty), an Extrinsic (copied), a
// types.Call (unsigned) or encoded bytes (decoded with the isSigned hint)
func NewExtrinsic(value interface{}, isSigned bool) (Extrinsic, error) {
	switch v := value.(type) {
	case nil:
		return Extrinsic{}, nil
	case Extrinsic:
		return v, nil
	case *Extrinsic:
		if v == nil {
			return Extrinsic{}, nil
		}
		return *v, nil
	case types.Call:
		return NewExtrinsicFromCall(v), nil
	case []byte:
		return DecodeExtrinsic(v, isSigned)
	}
	return Extrinsic{}, errors.Wrapf(ErrConstruction, "cannot build an extrinsic from %T", value)
}

// DecodeExtrinsic decodes the signature section first (present only if isSigned),
// then treats every remaining byte as the call
func DecodeExtrinsic(bz []byte, isSigned bool) (Extrinsic, error) {
	var e Extrinsic
	err := e.decode(*scale.NewDecoder(bytes.NewReader(bz)), isSigned)
	if err != nil {
		return Extrinsic{}, decodeErr(err, "extrinsic")
	}
	return e, nil
}

func (e *Extrinsic) decode(decoder scale.Decoder, isSigned bool) error {
	var out Extrinsic
	if isSigned {
		err := decoder.Decode(&out.Signature)
		if err != nil {
			return err
		}
	}
	err := decoder.Decode(&out.Method)
	if err != nil {
		return decodeErr(err, "call")
	}
	*e = out
	return nil
}

// IsSigned returns true if the extrinsic carries a signature
func (e Extrinsic) IsSigned() bool {
	return e.Signature.IsSigned()
}

// EncodedLength is the length of the signature section plus the call
func (e Extrinsic) EncodedLength() (int, error) {
	bz, err := types.EncodeToBytes(e)
	if err != nil {
		return 0, err
	}
	return len(bz), nil
}

// Sign signs the call and stores the signature
func (e *Extrinsic) Sign(signer Signer, o SignatureOptions) (*Extrinsic, error) {
	err := e.Signature.Sign(e.Method, signer, o)
	if err != nil {
		return e, err
	}
	return e, nil
}

// SignFake stores a fake signature for signer, for fee estimation
func (e *Extrinsic) SignFake(signer MultiAddress, o SignatureOptions) (*Extrinsic, error) {
	err := e.Signature.SignFake(e.Method, signer, o)
	if err != nil {
		return e, err
	}
	return e, nil
}

// AddSignature stores a signature produced elsewhere over payload
func (e *Extrinsic) AddSignature(signer MultiAddress, sig MultiSignature, payload ExtrinsicPayload) *Extrinsic {
	e.Signature.AddSignature(signer, sig, payload)
	return e
}

func (e Extrinsic) Encode(encoder scale.Encoder) error {
	err := encoder.Encode(e.Signature)
	if err != nil {
		return err
	}
	return encoder.Encode(e.Method)
}

// Decode reads a signed extrinsic. An unsigned body carries no marker of its own,
// so those are read with DecodeExtrinsic or through VersionedExtrinsic.
func (e *Extrinsic) Decode(decoder scale.Decoder) error {
	return e.decode(decoder, true)
}
