package main

import (
	"strconv"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v2/config"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/plugnet/plug-api-types-go/models"
)

var errNoSeed = errors.New("no signer seed configured, use --seed or PLUGTX_SEED")

// newViper reads PLUGTX_* environment variables, flags bound later take precedence
func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix("plugtx")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	vp.AutomaticEnv()
	vp.SetDefault("addr", config.Default().RPCURL)
	vp.SetDefault("seed", "")
	return vp
}

func loadClient(vp *viper.Viper) (models.Client, error) {
	var cli models.Client
	err := vp.Unmarshal(&cli)
	if err != nil {
		return models.Client{}, errors.Wrap(err, "failed to load configuration")
	}
	if cli.Addr == "" {
		cli.Addr = config.Default().RPCURL
	}
	return cli, nil
}

func loadSigningClient(vp *viper.Viper) (models.Client, error) {
	cli, err := loadClient(vp)
	if err != nil {
		return cli, err
	}
	if cli.Seed == "" {
		return cli, errNoSeed
	}
	return cli, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	// stdout carries command output
	config.OutputPaths = []string{"stderr"}
	return config.Build()
}

func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", s)
	}
	return amount, nil
}
