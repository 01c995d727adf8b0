package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const cmdName = "plugtx"

type app struct {
	vp     *viper.Viper
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{vp: newViper(), logger: zap.NewNop()}

	var (
		configPath string
		debug      bool
	)
	rootCmd := &cobra.Command{
		Use:           cmdName,
		Short:         "build, sign and submit Plug extrinsics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				a.vp.SetConfigFile(configPath)
				if err := a.vp.ReadInConfig(); err != nil {
					return err
				}
			}
			logger, err := newLogger(debug)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging")
	rootCmd.PersistentFlags().String("addr", "", "node websocket endpoint")
	rootCmd.PersistentFlags().String("seed", "", "secret seed, mnemonic or dev URI of the signer")
	_ = a.vp.BindPFlag("addr", rootCmd.PersistentFlags().Lookup("addr"))
	_ = a.vp.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))

	rootCmd.AddCommand(
		a.signCommand(),
		a.fakeSignCommand(),
		a.decodeCommand(),
		a.hashCommand(),
		a.submitCommand(),
		a.transferCommand(),
		a.feeCommand(),
		a.watchCommand(),
	)
	return rootCmd
}

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, cmdName+":", err)
		os.Exit(1)
	}
}
