package models

import (
	"github.com/pkg/errors"
)

var (
	// ErrDecode is returned when input bytes cannot be decoded into a structure
	ErrDecode = errors.New("decode error")
	// ErrSigning is returned when the signer rejects the key or the message
	ErrSigning = errors.New("signing error")
	// ErrConstruction is returned when a constructor receives an input shape it does not understand
	ErrConstruction = errors.New("construction error")
)

func decodeErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDecode) {
		return err
	}
	return errors.Wrapf(ErrDecode, "%s: %v", what, err)
}
