package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	// TransactionVersion is the extrinsic format version the Plug runtime accepts
	TransactionVersion byte = 4
	// ExtrinsicBitSigned is set in the version byte when a signature section follows
	ExtrinsicBitSigned byte = 0x80
	// ExtrinsicUnmaskVersion masks the signed bit off the version byte
	ExtrinsicUnmaskVersion byte = 0x7f
)

// VersionedExtrinsic is an Extrinsic as it is transmitted and stored in blocks:
// <compact length><version byte><signature section><call>
type VersionedExtrinsic struct {
	// Version is the encoded version flag (which encodes the raw transaction version and signing information in one byte)
	Version byte
	Extrinsic
}

// NewVersionedExtrinsic creates an unsigned extrinsic from the provided call
func NewVersionedExtrinsic(c types.Call) VersionedExtrinsic {
	return VersionedExtrinsic{
		Version:   TransactionVersion,
		Extrinsic: NewExtrinsicFromCall(c),
	}
}

// DecodeVersionedExtrinsic decodes a length-prefixed extrinsic
func DecodeVersionedExtrinsic(bz []byte) (VersionedExtrinsic, error) {
	var e VersionedExtrinsic
	err := types.DecodeFromBytes(bz, &e)
	if err != nil {
		return VersionedExtrinsic{}, decodeErr(err, "versioned extrinsic")
	}
	return e, nil
}

// UnmarshalJSON fills the extrinsic from a hex string, with or without the outer
// length prefix
func (e *VersionedExtrinsic) UnmarshalJSON(bz []byte) error {
	var tmp string
	if err := json.Unmarshal(bz, &tmp); err != nil {
		return err
	}
	return e.UnmarshalHex(tmp)
}

// UnmarshalHex fills the extrinsic from a hex string, with or without the outer
// length prefix
func (e *VersionedExtrinsic) UnmarshalHex(s string) error {
	dec, err := types.HexDecodeString(s)
	if err != nil {
		return decodeErr(err, "extrinsic hex")
	}

	// some sources hand out the body without its length, detect the prefix by
	// checking that it accounts for exactly the rest of the buffer
	r := bytes.NewReader(dec)
	l, err := scale.NewDecoder(r).DecodeUintCompact()
	if err == nil && l.IsUint64() && l.Uint64() == uint64(r.Len()) {
		return types.DecodeFromBytes(dec, e)
	}

	prefixed, err := types.EncodeToBytes(types.NewBytes(dec))
	if err != nil {
		return err
	}
	return types.DecodeFromBytes(prefixed, e)
}

// MarshalJSON returns the hex encoded extrinsic as a JSON string
func (e VersionedExtrinsic) MarshalJSON() ([]byte, error) {
	s, err := e.Hex()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// Hex returns the 0x prefixed hex encoding
func (e VersionedExtrinsic) Hex() (string, error) {
	return types.EncodeToHexString(e)
}

// Hash returns the blake2b-256 hash of the encoded extrinsic, as reported by the node
func (e VersionedExtrinsic) Hash() (types.Hash, error) {
	bz, err := types.EncodeToBytes(e)
	if err != nil {
		return types.Hash{}, err
	}
	h := blake2b.Sum256(bz)
	return types.NewHash(h[:]), nil
}

// IsSigned returns true if the signed bit is set
func (e VersionedExtrinsic) IsSigned() bool {
	return e.Version&ExtrinsicBitSigned == ExtrinsicBitSigned
}

// Type returns the raw transaction version (not flagged with signing information)
func (e VersionedExtrinsic) Type() uint8 {
	return e.Version & ExtrinsicUnmaskVersion
}

func (e VersionedExtrinsic) checkVersion() error {
	if e.Type() != TransactionVersion {
		return errors.Wrap(ErrConstruction, e.versionError())
	}
	return nil
}

func (e VersionedExtrinsic) versionError() string {
	return fmt.Sprintf("unsupported extrinsic version: %v (isSigned: %v, type: %v)", e.Version, e.IsSigned(), e.Type())
}

// Sign signs the call and marks the extrinsic as signed
func (e *VersionedExtrinsic) Sign(signer Signer, o SignatureOptions) error {
	err := e.checkVersion()
	if err != nil {
		return err
	}
	_, err = e.Extrinsic.Sign(signer, o)
	if err != nil {
		return err
	}
	e.Version |= ExtrinsicBitSigned
	return nil
}

// SignFake applies a fake signature for fee estimation and marks the extrinsic as signed
func (e *VersionedExtrinsic) SignFake(signer MultiAddress, o SignatureOptions) error {
	err := e.checkVersion()
	if err != nil {
		return err
	}
	_, err = e.Extrinsic.SignFake(signer, o)
	if err != nil {
		return err
	}
	e.Version |= ExtrinsicBitSigned
	return nil
}

// AddSignature applies an externally computed signature and marks the extrinsic as signed
func (e *VersionedExtrinsic) AddSignature(signer MultiAddress, sig MultiSignature, payload ExtrinsicPayload) error {
	err := e.checkVersion()
	if err != nil {
		return err
	}
	e.Extrinsic.AddSignature(signer, sig, payload)
	e.Version |= ExtrinsicBitSigned
	return nil
}

func (e *VersionedExtrinsic) Decode(decoder scale.Decoder) error {
	l, err := decoder.DecodeUintCompact()
	if err != nil {
		return decodeErr(err, "extrinsic length")
	}
	if !l.IsUint64() || l.Uint64() == 0 || l.Uint64() > math.MaxInt32 {
		return errors.Wrapf(ErrDecode, "extrinsic length %s out of range", l.String())
	}

	// the body is read in full first so that the call cannot run into the next
	// extrinsic of a block
	body, err := readPrefixed(decoder, int(l.Uint64()))
	if err != nil {
		return decodeErr(err, "extrinsic body")
	}

	var out VersionedExtrinsic
	out.Version = body[0]
	err = out.checkVersion()
	if err != nil {
		return errors.Wrap(ErrDecode, out.versionError())
	}

	out.Extrinsic, err = DecodeExtrinsic(body[1:], out.IsSigned())
	if err != nil {
		return err
	}
	*e = out
	return nil
}

func (e VersionedExtrinsic) Encode(encoder scale.Encoder) error {
	err := e.checkVersion()
	if err != nil {
		return err
	}
	if e.IsSigned() != e.Extrinsic.IsSigned() {
		return errors.Wrapf(ErrConstruction, "version flag says signed=%v but signature section says signed=%v",
			e.IsSigned(), e.Extrinsic.IsSigned())
	}

	// create a temporary buffer that will receive the plain encoded transaction (version, signature (optional),
	// method/call)
	var bb = bytes.Buffer{}
	tempEnc := scale.NewEncoder(&bb)

	err = tempEnc.Encode(e.Version)
	if err != nil {
		return err
	}
	err = tempEnc.Encode(e.Extrinsic)
	if err != nil {
		return err
	}

	// take the temporary buffer to determine length, write that as prefix
	eb := bb.Bytes()
	err = encoder.EncodeUintCompact(*big.NewInt(0).SetUint64(uint64(len(eb))))
	if err != nil {
		return err
	}

	return encoder.Write(eb)
}
