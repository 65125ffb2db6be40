package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entropypool/isaacrand/internal/pool"
)

const cfgNewKeyHex = "new-key-hex"

var rekeyCmd = &cobra.Command{
	Use:   "rekey",
	Short: "Resume generator state under the current key and re-persist it under a new one",
	RunE:  runRekey,
}

func runRekey(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	key, err := keyFlag(cmd)
	if err != nil {
		return fmt.Errorf("rekey: failed to decode current key: %w", err)
	}

	newKey, err := keyHexFlag(cfgNewKeyHex)
	if err != nil {
		return fmt.Errorf("rekey: failed to decode new key: %w", err)
	}
	if newKey == nil {
		return fmt.Errorf("rekey: --%s is required", cfgNewKeyHex)
	}

	p := pool.New()
	if _, err := p.InitializeOrResume(statePathFlag(cmd), viper.GetInt(cfgMultiplier), key); err != nil {
		return wrapInitErr("rekey", err)
	}

	p.InitializeEncryption(newKey)
	return p.SaveState().Err()
}

func init() {
	rekeyCmd.Flags().String(cfgNewKeyHex, "", "32-byte AES-256 key to re-encrypt state under, hex encoded")
	_ = viper.BindPFlag(cfgNewKeyHex, rekeyCmd.Flags().Lookup(cfgNewKeyHex))
}
