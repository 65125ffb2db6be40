package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropypool/isaacrand/internal/pool"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Resume generator state, then immediately persist it unchanged",
	RunE:  runSave,
}

func runSave(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	key, err := keyFlag(cmd)
	if err != nil {
		return fmt.Errorf("save: failed to decode key: %w", err)
	}

	p := pool.New()
	if _, err := p.InitializeOrResume(statePathFlag(cmd), viper.GetInt(cfgMultiplier), key); err != nil {
		return wrapInitErr("save", err)
	}
	return p.SaveState().Err()
}
