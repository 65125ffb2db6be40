package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entropypool/isaacrand/internal/pool"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether generator state can be resumed from the configured path",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	key, err := keyFlag(cmd)
	if err != nil {
		return fmt.Errorf("status: failed to decode key: %w", err)
	}

	p := pool.New()
	status := p.IsInitialized(statePathFlag(cmd), key)
	fmt.Println(status)
	if status != pool.StatusSuccess {
		return status.Err()
	}
	return nil
}
