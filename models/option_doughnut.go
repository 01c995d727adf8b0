package models

import (
	"bytes"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/pkg/errors"
)

// OptionDoughnut is an optional Doughnut with the single byte presence flag the
// Plug runtime expects: 0x00 for None, 0x01 followed by the length-prefixed
// certificate for Some. Only the doughnut field uses this rule; every other
// optional value keeps the codec's own option encoding.
type OptionDoughnut struct {
	HasValue bool
	Value    Doughnut
}

// NewOptionDoughnut creates an OptionDoughnut with a value
func NewOptionDoughnut(d Doughnut) OptionDoughnut {
	return OptionDoughnut{HasValue: true, Value: d}
}

// NewOptionDoughnutEmpty creates an OptionDoughnut without a value
func NewOptionDoughnutEmpty() OptionDoughnut {
	return OptionDoughnut{HasValue: false}
}

// Unwrap returns the flag and the value
func (o OptionDoughnut) Unwrap() (ok bool, value Doughnut) {
	return o.HasValue, o.Value
}

// SetSome sets a value
func (o *OptionDoughnut) SetSome(value Doughnut) {
	o.HasValue = true
	o.Value = value
}

// SetNone removes a value and marks it as missing
func (o *OptionDoughnut) SetNone() {
	o.HasValue = false
	o.Value = nil
}

func (o OptionDoughnut) Encode(encoder scale.Encoder) (err error) {
	if !o.HasValue {
		return encoder.PushByte(0)
	}
	err = encoder.PushByte(1)
	if err != nil {
		return
	}
	return encoder.Encode(o.Value)
}

// EncodeBare writes the certificate alone when present, without flag or length
// prefix. None still encodes as 0x00.
func (o OptionDoughnut) EncodeBare(encoder scale.Encoder) error {
	if !o.HasValue {
		return encoder.PushByte(0)
	}
	if len(o.Value) == 0 {
		return nil
	}
	return encoder.Write(o.Value.EncodeBare())
}

// Bytes returns the encoding of the option, bare or flagged
func (o OptionDoughnut) Bytes(bare bool) ([]byte, error) {
	var bb = bytes.Buffer{}
	enc := scale.NewEncoder(&bb)
	var err error
	if bare {
		err = o.EncodeBare(*enc)
	} else {
		err = o.Encode(*enc)
	}
	if err != nil {
		return nil, err
	}
	return bb.Bytes(), nil
}

func (o *OptionDoughnut) Decode(decoder scale.Decoder) (err error) {
	b, err := decoder.ReadOneByte()
	if err != nil {
		return decodeErr(err, "doughnut option flag")
	}
	switch b {
	case 0:
		o.SetNone()
	case 1:
		var d Doughnut
		err = decoder.Decode(&d)
		if err != nil {
			return
		}
		o.SetSome(d)
	default:
		return errors.Wrapf(ErrDecode, "unknown byte prefix for encoded OptionDoughnut: %d", b)
	}
	return
}
