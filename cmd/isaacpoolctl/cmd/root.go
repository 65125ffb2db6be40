// Package cmd implements the isaacpoolctl command line tool.
package cmd

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/internal/pool"
)

const (
	cfgLogFmt   = "log.format"
	cfgLogLevel = "log.level"

	cfgStateFile  = "state"
	cfgKeyHex     = "key-hex"
	cfgMultiplier = "multiplier"
)

var (
	rootCmd = &cobra.Command{
		Use:   "isaacpoolctl",
		Short: "Inspect and drive an entropy pool's persisted generator state",
	}

	rootFlags = flag.NewFlagSet("", flag.ContinueOnError)
)

// RootCmd returns the root command, so callers embedding this tool can
// alter its configuration before Execute.
func RootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the command tree, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogging() error {
	var logFmt logging.Format
	if err := logFmt.Set(viper.GetString(cfgLogFmt)); err != nil {
		return fmt.Errorf("root: failed to set log format: %w", err)
	}

	var logLevel logging.Level
	if err := logLevel.Set(viper.GetString(cfgLogLevel)); err != nil {
		return fmt.Errorf("root: failed to set log level: %w", err)
	}

	return logging.Initialize(os.Stderr, logFmt, logLevel)
}

func statePathFlag(cmd *cobra.Command) string {
	return viper.GetString(cfgStateFile)
}

func keyFlag(cmd *cobra.Command) ([]byte, error) {
	return keyHexFlag(cfgKeyHex)
}

// wrapInitErr annotates a failure from Pool.Initialize with its Status
// classification, so an operator can tell entropy-threshold failures
// (recoverable, try again) apart from a hard device or decryption
// failure without having to read the underlying error text.
func wrapInitErr(verb string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", verb, pool.ClassifyError(err), err)
}

func keyHexFlag(name string) ([]byte, error) {
	encoded := viper.GetString(name)
	if encoded == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	return key, nil
}

func init() {
	logFmt := logging.FmtLogfmt
	logLevel := logging.LevelInfo

	rootFlags.Var(&logFmt, cfgLogFmt, "log format (logfmt, JSON)")
	rootFlags.Var(&logLevel, cfgLogLevel, "log level (DEBUG, INFO, WARN, ERROR)")
	rootFlags.String(cfgStateFile, "./.isaacrngstate", "path to the persisted generator state file")
	rootFlags.String(cfgKeyHex, "", "32-byte AES-256 key, hex encoded; omit for plaintext state")
	rootFlags.Int(cfgMultiplier, 0, "entropy capture multiplier used when no state can be resumed")

	rootCmd.PersistentFlags().AddFlagSet(rootFlags)
	_ = viper.BindPFlags(rootFlags)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(rekeyCmd)
	rootCmd.AddCommand(entropyProbeCmd)
}
