package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/okian/pipeaudit/internal/sampledata"
)

var sampleFlags struct {
	dir   string
	deals int
	seed  int64
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a synthetic deals/activities dataset",
	Long: `Sample writes deals.csv and activities.csv with deliberately planted
defects, ready to feed into "pipeaudit run".`,
	RunE: runSample,
}

func init() {
	f := sampleCmd.Flags()
	f.StringVar(&sampleFlags.dir, "dir", ".", "Output directory")
	f.IntVar(&sampleFlags.deals, "deals", 200, "Number of deals to generate")
	f.Int64Var(&sampleFlags.seed, "seed", 42, "Random seed")
}

func runSample(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(sampleFlags.dir, 0o755); err != nil {
		return err
	}
	dealsPath := filepath.Join(sampleFlags.dir, "deals.csv")
	actsPath := filepath.Join(sampleFlags.dir, "activities.csv")

	dealsF, err := os.Create(dealsPath)
	if err != nil {
		return err
	}
	defer dealsF.Close()
	actsF, err := os.Create(actsPath)
	if err != nil {
		return err
	}
	defer actsF.Close()

	gen := sampledata.New(
		sampledata.WithDealCount(sampleFlags.deals),
		sampledata.WithSeed(sampleFlags.seed),
	)
	if err := gen.Write(dealsF, actsF); err != nil {
		return err
	}
	fmt.Printf("wrote %s and %s\n", dealsPath, actsPath)
	return nil
}
