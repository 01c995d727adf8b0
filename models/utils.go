package models

import (
	"bytes"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v2/scale"
	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/decred/base58"
	"github.com/pkg/errors"
	subkey "github.com/vedhavyas/go-subkey"
	"golang.org/x/crypto/blake2b"
)

// SS58Prefix is the generic substrate address format
const SS58Prefix = 42

var ss58Pre = []byte("SS58PRE")

func SS58Address(addr []byte) (string, error) {
	return subkey.SS58Address(addr, SS58Prefix)
}

func SS58Addr(addr []byte) (out string) {
	out, _ = SS58Address(addr)
	return
}

// DecodeSS58Address returns the 32 byte account id of a single byte prefixed SS58
// address, checking its checksum
func DecodeSS58Address(ss58addr string) ([]byte, error) {
	decoded := base58.Decode(ss58addr)
	// prefix + 32 byte account + 2 byte checksum
	if len(decoded) != 35 {
		return nil, errors.Wrapf(ErrDecode, "ss58 address %q has %d bytes", ss58addr, len(decoded))
	}

	h, err := blake2b.New512(nil)
	if err != nil {
		return nil, err
	}
	_, _ = h.Write(ss58Pre)
	_, _ = h.Write(decoded[:33])
	sum := h.Sum(nil)
	if !bytes.Equal(sum[:2], decoded[33:]) {
		return nil, errors.Wrapf(ErrDecode, "ss58 address %q has a bad checksum", ss58addr)
	}
	return decoded[1:33], nil
}

// UCompactToUint64 reads a compact value that fits into 64 bits
func UCompactToUint64(c types.UCompact) uint64 {
	b := big.Int(c)
	return b.Uint64()
}

// UCompactEqual compares two compact values numerically
func UCompactEqual(a, b types.UCompact) bool {
	x, y := big.Int(a), big.Int(b)
	return x.Cmp(&y) == 0
}

// readChunk bounds each read of a length-prefixed field
const readChunk = 64 << 10

// readPrefixed reads n bytes. Lengths come from the input, so memory grows
// with the bytes actually read rather than with the declared length.
func readPrefixed(decoder scale.Decoder, n int) ([]byte, error) {
	if n <= readChunk {
		buf := make([]byte, n)
		// a zero length read on an exhausted reader reports EOF
		if n > 0 {
			err := decoder.Read(buf)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil
	}

	var bb bytes.Buffer
	chunk := make([]byte, readChunk)
	for n > 0 {
		c := chunk
		if n < len(c) {
			c = c[:n]
		}
		err := decoder.Read(c)
		if err != nil {
			return nil, err
		}
		bb.Write(c)
		n -= len(c)
	}
	return bb.Bytes(), nil
}
