package models

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
)

// fakeSignatureFill is the byte repeated in fake signatures
const fakeSignatureFill = 0x42

// SignatureOptions carries what is needed to build a payload besides the call
type SignatureOptions struct {
	BlockHash      types.Hash
	Era            types.ExtrinsicEra // zero value means immortal
	Doughnut       OptionDoughnut     // zero value means no doughnut
	GenesisHash    types.Hash
	Nonce          types.UCompact
	RuntimeVersion types.RuntimeVersion
	Tip            types.UCompact // zero value means no tip
}

// ExtrinsicSignature couples the signer, its signature and the mutable payload
// fields that travel with the extrinsic. Until it is signed it encodes to nothing.
type ExtrinsicSignature struct {
	Signer    MultiAddress
	Signature MultiSignature
	Doughnut  OptionDoughnut     // extra via prml_doughnut
	Era       types.ExtrinsicEra // extra via system::CheckEra
	Nonce     types.UCompact     // extra via system::CheckNonce (Compact<Index> where Index is u32)
	Tip       types.UCompact     // extra via transaction_payment (Compact<Balance> where Balance is u128)
}

// DecodeExtrinsicSignature decodes a signature section. Whether one is present is
// known only to the caller (the signed bit of the extrinsic version), so without
// isSigned the canonical empty signature is returned and no bytes are consumed.
func DecodeExtrinsicSignature(bz []byte, isSigned bool) (ExtrinsicSignature, error) {
	if len(bz) == 0 || !isSigned {
		return ExtrinsicSignature{}, nil
	}
	var s ExtrinsicSignature
	err := types.DecodeFromBytes(bz, &s)
	if err != nil {
		return ExtrinsicSignature{}, decodeErr(err, "extrinsic signature")
	}
	return s, nil
}

// IsSigned returns true if a non-empty signature is present
func (s ExtrinsicSignature) IsSigned() bool {
	return !s.Signature.IsEmpty()
}

// EncodedLength is the size of the section on the wire, zero when unsigned
func (s ExtrinsicSignature) EncodedLength() (int, error) {
	if !s.IsSigned() {
		return 0, nil
	}
	bz, err := s.Bytes()
	if err != nil {
		return 0, err
	}
	return len(bz), nil
}

// Bytes returns the encoded section, empty when unsigned
func (s ExtrinsicSignature) Bytes() ([]byte, error) {
	var bb = bytes.Buffer{}
	err := s.Encode(*scale.NewEncoder(&bb))
	if err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// injectSignature replaces every signed field at once
func (s *ExtrinsicSignature) injectSignature(signer MultiAddress, sig MultiSignature, p ExtrinsicPayload) {
	*s = ExtrinsicSignature{
		Signer:    signer,
		Signature: sig,
		Doughnut:  p.Doughnut,
		Era:       normalizeEra(p.Era),
		Nonce:     p.Nonce,
		Tip:       p.Tip,
	}
}

// AddSignature applies a signature produced elsewhere (a hardware wallet, another
// process) together with the payload it was computed over
func (s *ExtrinsicSignature) AddSignature(signer MultiAddress, sig MultiSignature, p ExtrinsicPayload) {
	s.injectSignature(signer, sig, p)
}

// CreatePayload builds the signing payload for method from the options
func (s ExtrinsicSignature) CreatePayload(method types.Call, o SignatureOptions) (ExtrinsicPayload, error) {
	mb, err := types.EncodeToBytes(method)
	if err != nil {
		return ExtrinsicPayload{}, err
	}
	return NewExtrinsicPayload(mb, o), nil
}

// NewExtrinsicPayload assembles a payload for encoded method bytes, applying the
// option defaults
func NewExtrinsicPayload(method []byte, o SignatureOptions) ExtrinsicPayload {
	doughnut := o.Doughnut
	if !doughnut.HasValue {
		doughnut = NewOptionDoughnutEmpty()
	}
	return ExtrinsicPayload{
		Method:      types.NewBytes(method),
		Doughnut:    doughnut,
		Era:         normalizeEra(o.Era),
		Nonce:       o.Nonce,
		Tip:         o.Tip,
		SpecVersion: o.RuntimeVersion.SpecVersion,
		GenesisHash: o.GenesisHash,
		BlockHash:   o.BlockHash,
	}
}

// Sign builds the payload, signs it and applies the signature
func (s *ExtrinsicSignature) Sign(method types.Call, signer Signer, o SignatureOptions) error {
	p, err := s.CreatePayload(method, o)
	if err != nil {
		return err
	}
	raw, err := p.Sign(signer)
	if err != nil {
		return err
	}
	sig, err := NewMultiSignature(signer.SignatureType(), raw)
	if err != nil {
		return err
	}
	s.injectSignature(NewMultiAddressFromAccountID(signer.PublicKey()), sig, p)
	return nil
}

// SignFake applies a well-formed but invalid sr25519 signature. The result has the
// size of a real one, which is what fee and weight estimation needs.
func (s *ExtrinsicSignature) SignFake(method types.Call, signer MultiAddress, o SignatureOptions) error {
	p, err := s.CreatePayload(method, o)
	if err != nil {
		return err
	}
	s.injectSignature(signer, fakeSignature(), p)
	return nil
}

func fakeSignature() MultiSignature {
	sig := MultiSignature{IsSr25519: true}
	for i := range sig.AsSr25519 {
		sig.AsSr25519[i] = fakeSignatureFill
	}
	return sig
}

func (s ExtrinsicSignature) Encode(encoder scale.Encoder) error {
	if !s.IsSigned() {
		return nil
	}
	err := encoder.Encode(s.Signer)
	if err != nil {
		return err
	}
	err = encoder.Encode(s.Signature)
	if err != nil {
		return err
	}
	err = encoder.Encode(s.Doughnut)
	if err != nil {
		return err
	}
	err = encoder.Encode(normalizeEra(s.Era))
	if err != nil {
		return err
	}
	err = encoder.Encode(s.Nonce)
	if err != nil {
		return err
	}
	return encoder.Encode(s.Tip)
}

// Decode reads a full signature section; callers that may hold an unsigned
// extrinsic go through DecodeExtrinsicSignature or Extrinsic instead
func (s *ExtrinsicSignature) Decode(decoder scale.Decoder) error {
	var out ExtrinsicSignature
	err := decoder.Decode(&out.Signer)
	if err != nil {
		return err
	}
	err = decoder.Decode(&out.Signature)
	if err != nil {
		return err
	}
	if out.Signature.IsEmpty() {
		return errors.Wrap(ErrDecode, "signed flag set but signature empty")
	}
	err = decoder.Decode(&out.Doughnut)
	if err != nil {
		return err
	}
	err = decoder.Decode(&out.Era)
	if err != nil {
		return decodeErr(err, "signature era")
	}
	err = decoder.Decode(&out.Nonce)
	if err != nil {
		return decodeErr(err, "signature nonce")
	}
	err = decoder.Decode(&out.Tip)
	if err != nil {
		return decodeErr(err, "signature tip")
	}
	*s = out
	return nil
}
