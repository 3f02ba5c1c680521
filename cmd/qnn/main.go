package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "qnn",
	Short: "Train and run parametrized quantum-circuit classifiers",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("qnn failed", "err", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (flags and QNN_* env vars override it)")
	rootCmd.AddCommand(trainCmd, predictCmd)
}

// loadConfig layers flags over QNN_* environment variables over the config
// file, so a key like learning-rate can come from any of the three.
func loadConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return err
		}
		log.Info("configuration loaded", "file", v.ConfigFileUsed())
	}

	v.SetEnvPrefix("QNN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v.BindPFlags(cmd.Flags())
}
