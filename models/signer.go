package models

import (
	"github.com/centrifuge/go-substrate-rpc-client/v2/signature"
	"github.com/pkg/errors"
	subkey "github.com/vedhavyas/go-subkey"
	"github.com/vedhavyas/go-subkey/ed25519"
	"github.com/vedhavyas/go-subkey/sr25519"
	"golang.org/x/crypto/blake2b"
)

// MaxUnhashedPayload is the longest message signed as is; longer messages are
// replaced by their blake2b-256 hash before signing
const MaxUnhashedPayload = 256

// Signer produces signatures over payload preimages
type Signer interface {
	// PublicKey is the account id written into the signature section
	PublicKey() []byte
	// SignatureType is the MultiSignature tag of the produced signatures
	SignatureType() SignatureType
	// Sign signs msg, hashing it first when longer than MaxUnhashedPayload
	Sign(msg []byte) ([]byte, error)
}

// KeyringSigner signs with an sr25519 keyring pair
type KeyringSigner struct {
	Pair signature.KeyringPair
}

// NewKeyringSigner derives a keyring pair from a seed, mnemonic or dev URI such as //Alice
func NewKeyringSigner(seedOrPhrase string) (*KeyringSigner, error) {
	kp, err := signature.KeyringPairFromSecret(seedOrPhrase, SS58Prefix)
	if err != nil {
		return nil, errors.Wrapf(ErrSigning, "keyring from secret: %v", err)
	}
	return &KeyringSigner{Pair: kp}, nil
}

func (s *KeyringSigner) PublicKey() []byte {
	return s.Pair.PublicKey
}

func (s *KeyringSigner) SignatureType() SignatureType {
	return Sr25519
}

func (s *KeyringSigner) Sign(msg []byte) ([]byte, error) {
	// signature.Sign applies the same 256 byte hashing rule
	sig, err := signature.Sign(msg, s.Pair.URI)
	if err != nil {
		return nil, errors.Wrapf(ErrSigning, "sr25519: %v", err)
	}
	return sig, nil
}

// SubkeySigner signs with an sr25519 or ed25519 key pair
type SubkeySigner struct {
	Pair subkey.KeyPair
	Type SignatureType
}

// NewSubkeySigner derives a key pair of the given type from a secret URI
func NewSubkeySigner(t SignatureType, uri string) (*SubkeySigner, error) {
	scheme, err := schemeFor(t)
	if err != nil {
		return nil, err
	}
	kp, err := subkey.DeriveKeyPair(scheme, uri)
	if err != nil {
		return nil, errors.Wrapf(ErrSigning, "%s key from uri: %v", t, err)
	}
	return &SubkeySigner{Pair: kp, Type: t}, nil
}

func (s *SubkeySigner) PublicKey() []byte {
	return s.Pair.Public()
}

func (s *SubkeySigner) SignatureType() SignatureType {
	return s.Type
}

func (s *SubkeySigner) Sign(msg []byte) ([]byte, error) {
	sig, err := s.Pair.Sign(signingMessage(msg))
	if err != nil {
		return nil, errors.Wrapf(ErrSigning, "%s: %v", s.Type, err)
	}
	return sig, nil
}

// Verify checks sig over msg against a public key, applying the signer's hashing rule
func Verify(t SignatureType, pub, msg, sig []byte) (bool, error) {
	scheme, err := schemeFor(t)
	if err != nil {
		return false, err
	}
	pk, err := scheme.FromPublicKey(pub)
	if err != nil {
		return false, errors.Wrapf(ErrSigning, "%s public key: %v", t, err)
	}
	return pk.Verify(signingMessage(msg), sig), nil
}

func signingMessage(msg []byte) []byte {
	if len(msg) > MaxUnhashedPayload {
		h := blake2b.Sum256(msg)
		return h[:]
	}
	return msg
}

func schemeFor(t SignatureType) (subkey.Scheme, error) {
	switch t {
	case Sr25519:
		return sr25519.Scheme{}, nil
	case Ed25519:
		return ed25519.Scheme{}, nil
	}
	return nil, errors.Wrapf(ErrSigning, "no key scheme for %s signatures", t)
}
