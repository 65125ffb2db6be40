package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entropypool/isaacrand/internal/entropy"
	"github.com/entropypool/isaacrand/internal/pipeline"
	"github.com/entropypool/isaacrand/internal/pool"
)

const entropyProbeSampleBytes = 65536

var entropyProbeCmd = &cobra.Command{
	Use:   "entropy-probe",
	Short: "Report compiled-in capture backends and a live OS source bit-occurrence vector",
	RunE:  runEntropyProbe,
}

func runEntropyProbe(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	audio, camera := pipeline.Capabilities()
	p := pool.New()
	fmt.Printf("audio=%v camera=%v strength=%s\n", audio, camera, p.EntropyStrength())

	src := entropy.NewOSSource()
	if err := src.Generate(entropyProbeSampleBytes); err != nil {
		return fmt.Errorf("entropy-probe: %w", err)
	}
	fmt.Println(entropy.FormatBitEntropy(src.BitEntropy()))
	return nil
}
