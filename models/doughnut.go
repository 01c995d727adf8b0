package models

import (
	"bytes"
	"math"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
)

// DoughnutForm tells NewDoughnut how the input bytes are laid out
type DoughnutForm uint8

const (
	// DoughnutRaw means the input is the certificate itself, already extracted
	DoughnutRaw DoughnutForm = iota
	// DoughnutLengthPrefixed means the input is <compact length><certificate>
	DoughnutLengthPrefixed
)

// Doughnut is an encoded, signed v0 Doughnut certificate. It is opaque to this
// package beyond its length.
//
// Standalone and inside structures it is carried as <compact length><bytes>,
// since the certificate does not delimit itself within a SCALE stream.
type Doughnut []byte

// NewDoughnut builds a certificate from bz. The caller states which form bz is in:
// a length-prefixed buffer holding zero bytes gives a present, empty certificate.
func NewDoughnut(bz []byte, form DoughnutForm) (Doughnut, error) {
	switch form {
	case DoughnutRaw:
		d := make(Doughnut, len(bz))
		copy(d, bz)
		return d, nil
	case DoughnutLengthPrefixed:
		r := bytes.NewReader(bz)
		var d Doughnut
		err := d.Decode(*scale.NewDecoder(r))
		if err != nil {
			return nil, err
		}
		if r.Len() != 0 {
			return nil, errors.Wrapf(ErrDecode, "doughnut: %d trailing bytes after length-prefixed certificate", r.Len())
		}
		return d, nil
	default:
		return nil, errors.Wrapf(ErrConstruction, "doughnut: unknown input form %d", form)
	}
}

// NewDoughnutFromHex decodes a hex string in the given form
func NewDoughnutFromHex(s string, form DoughnutForm) (Doughnut, error) {
	bz, err := types.HexDecodeString(s)
	if err != nil {
		return nil, decodeErr(err, "doughnut hex")
	}
	return NewDoughnut(bz, form)
}

// EncodedLength returns the length of the bare certificate
func (d Doughnut) EncodedLength() int {
	return len(d)
}

// EncodeBare returns the certificate without a length prefix
func (d Doughnut) EncodeBare() []byte {
	return []byte(d)
}

// Bytes returns the certificate, length prefixed unless bare is set
func (d Doughnut) Bytes(bare bool) ([]byte, error) {
	if bare {
		return d.EncodeBare(), nil
	}
	return types.EncodeToBytes(d)
}

func (d Doughnut) Encode(encoder scale.Encoder) error {
	err := encoder.EncodeUintCompact(*big.NewInt(0).SetUint64(uint64(len(d))))
	if err != nil {
		return err
	}
	if len(d) == 0 {
		return nil
	}
	return encoder.Write(d)
}

func (d *Doughnut) Decode(decoder scale.Decoder) error {
	l, err := decoder.DecodeUintCompact()
	if err != nil {
		return decodeErr(err, "doughnut length")
	}
	if !l.IsUint64() || l.Uint64() > math.MaxInt32 {
		return errors.Wrapf(ErrDecode, "doughnut length %s out of range", l.String())
	}

	buf, err := readPrefixed(decoder, int(l.Uint64()))
	if err != nil {
		return decodeErr(err, "doughnut body")
	}
	*d = buf
	return nil
}
