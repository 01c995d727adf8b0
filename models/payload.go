package models

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
)

// ExtrinsicPayload is what gets signed for a Plug extrinsic.
//
// Method, Doughnut, Era, Nonce and Tip also travel in the extrinsic. SpecVersion,
// GenesisHash and BlockHash are only signed over: the node fills them in from
// chain state when it checks the signature.
type ExtrinsicPayload struct {
	Method   types.Bytes
	Doughnut OptionDoughnut
	Era      types.ExtrinsicEra // extra via system::CheckEra
	Nonce    types.UCompact     // extra via system::CheckNonce (Compact<Index>)
	Tip      types.UCompact     // extra via transaction_payment::ChargeTransactionPayment (Compact<Balance>)

	SpecVersion types.U32  // system::CheckVersion
	GenesisHash types.Hash // system::CheckGenesis
	BlockHash   types.Hash // system::CheckEra
}

// DecodeExtrinsicPayload decodes a payload previously produced by Encode
func DecodeExtrinsicPayload(bz []byte) (ExtrinsicPayload, error) {
	var p ExtrinsicPayload
	err := types.DecodeFromBytes(bz, &p)
	if err != nil {
		return ExtrinsicPayload{}, decodeErr(err, "extrinsic payload")
	}
	return p, nil
}

// DecodeExtrinsicPayloadHex decodes a hex encoded payload
func DecodeExtrinsicPayloadHex(s string) (ExtrinsicPayload, error) {
	bz, err := types.HexDecodeString(s)
	if err != nil {
		return ExtrinsicPayload{}, decodeErr(err, "extrinsic payload hex")
	}
	return DecodeExtrinsicPayload(bz)
}

// SigningPreimage returns the bytes handed to the signer. The method is written
// without its length prefix, so the preimage cannot be decoded back.
func (p ExtrinsicPayload) SigningPreimage() ([]byte, error) {
	var bb = bytes.Buffer{}
	enc := scale.NewEncoder(&bb)

	err := enc.Write(p.Method)
	if err != nil {
		return nil, err
	}
	err = p.encodeFrom(*enc)
	if err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

// Sign signs the preimage with the given signer and returns the raw signature
func (p ExtrinsicPayload) Sign(signer Signer) ([]byte, error) {
	b, err := p.SigningPreimage()
	if err != nil {
		return nil, err
	}
	return signer.Sign(b)
}

func (p ExtrinsicPayload) Encode(encoder scale.Encoder) error {
	err := encoder.Encode(p.Method)
	if err != nil {
		return err
	}
	return p.encodeFrom(encoder)
}

// encodeFrom writes every field after the method
func (p ExtrinsicPayload) encodeFrom(encoder scale.Encoder) error {
	err := encoder.Encode(p.Doughnut)
	if err != nil {
		return err
	}
	err = encoder.Encode(normalizeEra(p.Era))
	if err != nil {
		return err
	}
	err = encoder.Encode(p.Nonce)
	if err != nil {
		return err
	}
	err = encoder.Encode(p.Tip)
	if err != nil {
		return err
	}
	err = encoder.Encode(p.SpecVersion)
	if err != nil {
		return err
	}
	err = encoder.Encode(p.GenesisHash)
	if err != nil {
		return err
	}
	return encoder.Encode(p.BlockHash)
}

func (p *ExtrinsicPayload) Decode(decoder scale.Decoder) error {
	var out ExtrinsicPayload
	err := decoder.Decode(&out.Method)
	if err != nil {
		return decodeErr(err, "payload method")
	}
	err = decoder.Decode(&out.Doughnut)
	if err != nil {
		return err
	}
	err = decoder.Decode(&out.Era)
	if err != nil {
		return decodeErr(err, "payload era")
	}
	err = decoder.Decode(&out.Nonce)
	if err != nil {
		return decodeErr(err, "payload nonce")
	}
	err = decoder.Decode(&out.Tip)
	if err != nil {
		return decodeErr(err, "payload tip")
	}
	err = decoder.Decode(&out.SpecVersion)
	if err != nil {
		return decodeErr(err, "payload spec version")
	}
	err = decoder.Decode(&out.GenesisHash)
	if err != nil {
		return decodeErr(err, "payload genesis hash")
	}
	err = decoder.Decode(&out.BlockHash)
	if err != nil {
		return decodeErr(err, "payload block hash")
	}
	*p = out
	return nil
}

// normalizeEra turns the zero era into the immortal era
func normalizeEra(era types.ExtrinsicEra) types.ExtrinsicEra {
	if !era.IsMortalEra {
		return types.ExtrinsicEra{IsImmortalEra: true}
	}
	return era
}
