package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropypool/isaacrand/common/logging"
	"github.com/entropypool/isaacrand/internal/pool"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed a fresh generator, or resume one from existing state",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	logger := logging.GetLogger("isaacpoolctl")

	key, err := keyFlag(cmd)
	if err != nil {
		return fmt.Errorf("init: failed to decode key: %w", err)
	}

	p := pool.New()
	fresh, err := p.InitializeOrResume(statePathFlag(cmd), viper.GetInt(cfgMultiplier), key)
	if err != nil {
		return wrapInitErr("init", err)
	}

	if fresh {
		logger.Info("seeded fresh generator state", "strength", p.EntropyStrength())
	} else {
		logger.Info("resumed generator state")
	}

	return p.SaveState().Err()
}
