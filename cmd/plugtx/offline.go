package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v2/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/plugnet/plug-api-types-go/models"
)

// signFlags are the payload fields that are not read from chain when signing offline
type signFlags struct {
	nonce        uint64
	tip          uint64
	specVersion  uint32
	genesis      string
	block        string
	doughnut     string
	doughnutForm string
	scheme       string
}

func addSignFlags(cmd *cobra.Command, f *signFlags, offline bool) {
	if offline {
		cmd.Flags().Uint64Var(&f.nonce, "nonce", 0, "account nonce")
		cmd.Flags().Uint32Var(&f.specVersion, "spec-version", 0, "runtime spec version")
		cmd.Flags().StringVar(&f.genesis, "genesis", "", "genesis hash")
		cmd.Flags().StringVar(&f.block, "block", "", "checkpoint block hash, defaults to the genesis hash")
		_ = cmd.MarkFlagRequired("genesis")
	}
	cmd.Flags().Uint64Var(&f.tip, "tip", 0, "tip for the block author")
	cmd.Flags().StringVar(&f.doughnut, "doughnut", "", "hex encoded doughnut certificate")
	cmd.Flags().StringVar(&f.doughnutForm, "doughnut-form", "raw", "doughnut input form: raw or prefixed")
	cmd.Flags().StringVar(&f.scheme, "scheme", "sr25519", "signature scheme: sr25519 or ed25519")
}

func (f signFlags) optionDoughnut() (models.OptionDoughnut, error) {
	if f.doughnut == "" {
		return models.NewOptionDoughnutEmpty(), nil
	}
	var form models.DoughnutForm
	switch f.doughnutForm {
	case "raw":
		form = models.DoughnutRaw
	case "prefixed":
		form = models.DoughnutLengthPrefixed
	default:
		return models.OptionDoughnut{}, errors.Errorf("unknown doughnut form %q", f.doughnutForm)
	}
	d, err := models.NewDoughnutFromHex(f.doughnut, form)
	if err != nil {
		return models.OptionDoughnut{}, err
	}
	return models.NewOptionDoughnut(d), nil
}

func (f signFlags) options() (models.SignatureOptions, error) {
	genesis, err := types.NewHashFromHexString(f.genesis)
	if err != nil {
		return models.SignatureOptions{}, errors.Wrap(err, "genesis hash")
	}
	block := genesis
	if f.block != "" {
		block, err = types.NewHashFromHexString(f.block)
		if err != nil {
			return models.SignatureOptions{}, errors.Wrap(err, "block hash")
		}
	}
	d, err := f.optionDoughnut()
	if err != nil {
		return models.SignatureOptions{}, err
	}
	return models.SignatureOptions{
		BlockHash:      block,
		Era:            types.ExtrinsicEra{IsImmortalEra: true},
		Doughnut:       d,
		GenesisHash:    genesis,
		Nonce:          types.NewUCompactFromUInt(f.nonce),
		RuntimeVersion: types.RuntimeVersion{SpecVersion: types.U32(f.specVersion)},
		Tip:            types.NewUCompactFromUInt(f.tip),
	}, nil
}

func (f signFlags) signer(seed string) (models.Signer, error) {
	switch f.scheme {
	case "sr25519":
		return models.NewKeyringSigner(seed)
	case "ed25519":
		return models.NewSubkeySigner(models.Ed25519, seed)
	}
	return nil, errors.Errorf("unknown signature scheme %q", f.scheme)
}

// parseCall decodes a hex encoded call: call index followed by its arguments
func parseCall(s string) (types.Call, error) {
	bz, err := types.HexDecodeString(s)
	if err != nil {
		return types.Call{}, errors.Wrap(err, "call hex")
	}
	if len(bz) < 2 {
		return types.Call{}, errors.Wrap(models.ErrConstruction, "call is shorter than its index")
	}
	var c types.Call
	err = types.DecodeFromBytes(bz, &c)
	if err != nil {
		return types.Call{}, errors.Wrap(err, "call")
	}
	return c, nil
}

type signedOutput struct {
	Extrinsic string `json:"extrinsic"`
	Hash      string `json:"hash"`
}

func writeSigned(w io.Writer, xt models.VersionedExtrinsic) error {
	enc, err := xt.Hex()
	if err != nil {
		return err
	}
	h, err := xt.Hash()
	if err != nil {
		return err
	}
	return writeJSON(w, signedOutput{Extrinsic: enc, Hash: types.HexEncodeToString(h[:])})
}

func writeJSON(w io.Writer, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bz))
	return err
}

func (a *app) signCommand() *cobra.Command {
	var f signFlags
	cmd := &cobra.Command{
		Use:   "sign <call-hex>",
		Short: "sign a call offline with the configured seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSigningClient(a.vp)
			if err != nil {
				return err
			}
			c, err := parseCall(args[0])
			if err != nil {
				return err
			}
			o, err := f.options()
			if err != nil {
				return err
			}
			signer, err := f.signer(cfg.Seed)
			if err != nil {
				return err
			}

			xt := models.NewVersionedExtrinsic(c)
			err = xt.Sign(signer, o)
			if err != nil {
				return err
			}
			a.logger.Debug("signed",
				zap.String("signer", models.SS58Addr(signer.PublicKey())),
				zap.Stringer("scheme", signer.SignatureType()),
				zap.Uint64("nonce", f.nonce),
				zap.Bool("doughnut", o.Doughnut.HasValue),
			)
			return writeSigned(cmd.OutOrStdout(), xt)
		},
	}
	addSignFlags(cmd, &f, true)
	return cmd
}

func (a *app) fakeSignCommand() *cobra.Command {
	var (
		f    signFlags
		from string
	)
	cmd := &cobra.Command{
		Use:   "fake-sign <call-hex>",
		Short: "apply a placeholder signature for fee estimation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseCall(args[0])
			if err != nil {
				return err
			}
			o, err := f.options()
			if err != nil {
				return err
			}
			signer, err := models.NewMultiAddressFromSS58(from)
			if err != nil {
				return err
			}

			xt := models.NewVersionedExtrinsic(c)
			err = xt.SignFake(signer, o)
			if err != nil {
				return err
			}
			return writeSigned(cmd.OutOrStdout(), xt)
		},
	}
	addSignFlags(cmd, &f, true)
	cmd.Flags().StringVar(&from, "from", "", "SS58 address of the account the fee is estimated for")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// extrinsicView is the printable form of a decoded extrinsic
type extrinsicView struct {
	Version       uint8  `json:"version"`
	Signed        bool   `json:"signed"`
	Signer        string `json:"signer,omitempty"`
	SignatureType string `json:"signatureType,omitempty"`
	Signature     string `json:"signature,omitempty"`
	Doughnut      string `json:"doughnut,omitempty"`
	Era           string `json:"era,omitempty"`
	Nonce         uint64 `json:"nonce"`
	Tip           string `json:"tip"`
	Section       uint8  `json:"section"`
	Method        uint8  `json:"method"`
	Args          string `json:"args"`
	Hash          string `json:"hash"`
}

func viewExtrinsic(xt models.VersionedExtrinsic) (extrinsicView, error) {
	h, err := xt.Hash()
	if err != nil {
		return extrinsicView{}, err
	}
	v := extrinsicView{
		Version: xt.Type(),
		Signed:  xt.IsSigned(),
		Section: xt.Method.CallIndex.SectionIndex,
		Method:  xt.Method.CallIndex.MethodIndex,
		Args:    types.HexEncodeToString(xt.Method.Args),
		Hash:    types.HexEncodeToString(h[:]),
	}
	if !v.Signed {
		return v, nil
	}

	s := xt.Signature
	v.Signer = s.Signer.String()
	if t, ok := s.Signature.Type(); ok {
		v.SignatureType = t.String()
	}
	v.Signature = types.HexEncodeToString(s.Signature.Raw())
	if ok, d := s.Doughnut.Unwrap(); ok {
		v.Doughnut = types.HexEncodeToString(d)
	}
	if s.Era.IsMortalEra {
		v.Era = fmt.Sprintf("mortal %#x%02x", s.Era.AsMortalEra.First, s.Era.AsMortalEra.Second)
	} else {
		v.Era = "immortal"
	}
	v.Nonce = models.UCompactToUint64(s.Nonce)
	tip := big.Int(s.Tip)
	v.Tip = tip.String()
	return v, nil
}

func (a *app) decodeCommand() *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "decode a Plug runtime type, an extrinsic by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := types.HexDecodeString(args[0])
			if err != nil {
				return err
			}
			value, err := models.DecodeRuntimeType(typeName, bz)
			if err != nil {
				return err
			}

			switch v := value.(type) {
			case *models.VersionedExtrinsic:
				view, err := viewExtrinsic(*v)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), view)
			case *models.Doughnut:
				return writeJSON(cmd.OutOrStdout(), types.HexEncodeToString(*v))
			default:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			}
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "Extrinsic", fmt.Sprintf("runtime type, one of %v", models.RuntimeTypeNames()))
	return cmd
}

func (a *app) hashCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <extrinsic-hex>",
		Short: "print the transaction hash of an encoded extrinsic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var xt models.VersionedExtrinsic
			err := xt.UnmarshalHex(args[0])
			if err != nil {
				return err
			}
			h, err := xt.Hash()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), types.HexEncodeToString(h[:]))
			return err
		},
	}
}
