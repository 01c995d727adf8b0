package models

import (
	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/pkg/errors"
)

// SignatureType is the algorithm tag of a MultiSignature
type SignatureType byte

const (
	Ed25519 SignatureType = 0
	Sr25519 SignatureType = 1
	Ecdsa   SignatureType = 2
)

func (t SignatureType) String() string {
	switch t {
	case Ed25519:
		return "ed25519"
	case Sr25519:
		return "sr25519"
	case Ecdsa:
		return "ecdsa"
	}
	return "unknown"
}

// signatureLen returns the raw signature size for a tag
func (t SignatureType) signatureLen() (int, bool) {
	switch t {
	case Ed25519, Sr25519:
		return 64, true
	case Ecdsa:
		return 65, true
	}
	return 0, false
}

// MultiSignature is a signature tagged with the algorithm that produced it
type MultiSignature struct {
	IsEd25519 bool
	AsEd25519 [64]byte
	IsSr25519 bool
	AsSr25519 [64]byte
	IsEcdsa   bool
	AsEcdsa   [65]byte
}

// NewMultiSignature wraps raw signature bytes produced by the given algorithm
func NewMultiSignature(t SignatureType, sig []byte) (MultiSignature, error) {
	n, ok := t.signatureLen()
	if !ok {
		return MultiSignature{}, errors.Wrapf(ErrConstruction, "unknown signature type %d", t)
	}
	if len(sig) != n {
		return MultiSignature{}, errors.Wrapf(ErrConstruction, "%s signature must be %d bytes, got %d", t, n, len(sig))
	}

	var m MultiSignature
	switch t {
	case Ed25519:
		m.IsEd25519 = true
		copy(m.AsEd25519[:], sig)
	case Sr25519:
		m.IsSr25519 = true
		copy(m.AsSr25519[:], sig)
	case Ecdsa:
		m.IsEcdsa = true
		copy(m.AsEcdsa[:], sig)
	}
	return m, nil
}

// NewMultiSignatureFromBytes reads a tag byte followed by the raw signature
func NewMultiSignatureFromBytes(bz []byte) (MultiSignature, error) {
	if len(bz) == 0 {
		return MultiSignature{}, errors.Wrap(ErrConstruction, "empty multi signature")
	}
	return NewMultiSignature(SignatureType(bz[0]), bz[1:])
}

// Type returns the algorithm tag, false when no variant is set
func (m MultiSignature) Type() (SignatureType, bool) {
	switch {
	case m.IsEd25519:
		return Ed25519, true
	case m.IsSr25519:
		return Sr25519, true
	case m.IsEcdsa:
		return Ecdsa, true
	}
	return 0, false
}

// Raw returns the signature bytes without the tag
func (m MultiSignature) Raw() []byte {
	switch {
	case m.IsEd25519:
		return m.AsEd25519[:]
	case m.IsSr25519:
		return m.AsSr25519[:]
	case m.IsEcdsa:
		return m.AsEcdsa[:]
	}
	return nil
}

// IsEmpty is true when no variant is set or the signature is all zeroes
func (m MultiSignature) IsEmpty() bool {
	for _, b := range m.Raw() {
		if b != 0 {
			return false
		}
	}
	return true
}

func (m MultiSignature) Encode(encoder scale.Encoder) error {
	t, ok := m.Type()
	if !ok {
		return errors.Wrap(ErrConstruction, "MultiSignature has no variant set")
	}
	err := encoder.PushByte(byte(t))
	if err != nil {
		return err
	}
	return encoder.Write(m.Raw())
}

func (m *MultiSignature) Decode(decoder scale.Decoder) error {
	b, err := decoder.ReadOneByte()
	if err != nil {
		return decodeErr(err, "signature type")
	}
	t := SignatureType(b)
	n, ok := t.signatureLen()
	if !ok {
		return errors.Wrapf(ErrDecode, "unknown byte prefix for encoded MultiSignature: %d", b)
	}
	raw := make([]byte, n)
	err = decoder.Read(raw)
	if err != nil {
		return decodeErr(err, "signature")
	}
	out, err := NewMultiSignature(t, raw)
	if err != nil {
		return err
	}
	*m = out
	return nil
}
