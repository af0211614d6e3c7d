// Command corsprobe serves and checks CORS decisions made by the env-cors
// provider.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "CORSPROBE"

// keys shared by all commands
const (
	keyConfig      = "config"
	keyLogLevel    = "log-level"
	keyAllowOrigin = "allow-origin"
	keyAllowAll    = "allow-all"
	keyExpose      = "expose"
	keyMethod      = "method"
	keyAuthHeader  = "auth-header"
	keyCors        = "cors"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "corsprobe",
		Short:         "Serve and check CORS decisions of the env-cors provider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "path to a configuration file")
	flags.String(keyLogLevel, "info", "minimum enabled logging level")
	flags.StringSlice(keyAllowOrigin, nil, "origin allowed to access resources (repeatable)")
	flags.Bool(keyAllowAll, false, "allow all origins, subject to CORS_ALLOW_ORIGINS")
	flags.StringSlice(keyExpose, nil, "response header exposed to clients (repeatable)")
	flags.StringSlice(keyMethod, nil, "method advertised in preflight responses (repeatable)")
	flags.String(keyAuthHeader, "Authorization", "request header whose presence marks authenticated requests")
	// BindPFlags only fails on a nil flag set.
	_ = v.BindPFlags(flags)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.AddCommand(newServeCmd(v), newCheckCmd(v))
	return rootCmd
}

func loadConfig(v *viper.Viper) error {
	path := v.GetString(keyConfig)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	return v.ReadInConfig()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "corsprobe:", err)
		os.Exit(1)
	}
}
