package main

import (
	"fmt"
	"os"

	"github.com/h4ks-com/farmhand/internal/seed"
	"github.com/spf13/cobra"
)

var (
	seedFile   string
	seedFarmID uint
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load job types and a rate card from a YAML file",
	Long: `Load a farm's job-type catalog and, optionally, a rate card.

  job_types: [planting, weeding, harvest]
  rate_card:
    name: 2024 season
    activate: true
    rates:
      planting: 30000
      weeding: 25000

Job types already on the farm are skipped. Rates must lie within 10000-50000.`,
	Example: `  farmhand seed --farm 1 -f catalog.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (required)")
	seedCmd.Flags().UintVar(&seedFarmID, "farm", 0, "farm ID (required)")
	seedCmd.MarkFlagRequired("file")
	seedCmd.MarkFlagRequired("farm")
}

func runSeed() error {
	data, err := os.ReadFile(seedFile)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	catalog, err := seed.Parse(data)
	if err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.services.Farms.GetFarm(seedFarmID); err != nil {
		return err
	}

	result, err := seed.Apply(a.services.Catalog, seedFarmID, catalog)
	if err != nil {
		return err
	}

	fmt.Printf("job types: %d created, %d skipped\n", result.JobTypesCreated, result.JobTypesSkipped)
	if result.RateCard != nil {
		fmt.Printf("rate card %q (id %d, active=%t): %d rates\n", result.RateCard.Name, result.RateCard.ID, result.RateCard.IsActive, result.Rates)
	}
	return nil
}
