package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropypool/isaacrand/internal/pool"
)

const cfgOutSize = "size"

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Resume generator state and write a block of pseudo-random bytes to stdout",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	key, err := keyFlag(cmd)
	if err != nil {
		return fmt.Errorf("generate: failed to decode key: %w", err)
	}

	p := pool.New()
	if _, err := p.InitializeOrResume(statePathFlag(cmd), viper.GetInt(cfgMultiplier), key); err != nil {
		return wrapInitErr("generate", err)
	}

	size := viper.GetInt(cfgOutSize)
	out := make([]byte, size)
	if err := p.GenerateBlock(out, size); err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if _, err := os.Stdout.Write(out); err != nil {
		return fmt.Errorf("generate: failed to write output: %w", err)
	}
	return p.SaveState().Err()
}

func init() {
	generateCmd.Flags().Int(cfgOutSize, 64, "number of pseudo-random bytes to generate")
	_ = viper.BindPFlag(cfgOutSize, generateCmd.Flags().Lookup(cfgOutSize))
}
