package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/h4ks-com/farmhand/internal/roster"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFile   string
	importFarmID uint
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-load data into a farm",
}

var importWorkersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Import a worker roster from JSON or a spreadsheet",
	Long: `Import workers from a .json, .xlsx or .xls roster.

JSON rosters are an array of objects:
[
  {"full_name": "Ada Obi", "phone": "+2348000000000", "role": "planter"},
  {"full_name": "Musa Bello"}
]

Spreadsheets use the first sheet; the header row must contain a "Full Name"
(or "Name") column and may contain "Phone" and "Role" columns.

Workers whose name is already on the farm's roster are skipped.`,
	Example: `  farmhand import workers --farm 1 -f roster.xlsx
  farmhand import workers --farm 1 -f roster.json --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImportWorkers()
	},
}

func init() {
	importWorkersCmd.Flags().StringVarP(&importFile, "file", "f", "", "roster file to import (required)")
	importWorkersCmd.Flags().UintVar(&importFarmID, "farm", 0, "farm ID to import into (required)")
	importWorkersCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse the roster and print it without writing")
	importWorkersCmd.MarkFlagRequired("file")
	importWorkersCmd.MarkFlagRequired("farm")
	importCmd.AddCommand(importWorkersCmd)
}

func runImportWorkers() error {
	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	entries, err := roster.Parse(filepath.Base(importFile), data)
	if err != nil {
		return fmt.Errorf("failed to parse roster: %w", err)
	}

	if importDryRun {
		for _, e := range entries {
			fmt.Printf("%-32s %-16s %s\n", e.FullName, e.Phone, e.Role)
		}
		fmt.Printf("%d workers parsed from %s\n", len(entries), importFile)
		return nil
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if _, err := a.services.Farms.GetFarm(importFarmID); err != nil {
		return err
	}

	a.log.Info("starting roster import", zap.String("file", importFile), zap.Int("entries", len(entries)), zap.Uint("farm_id", importFarmID))

	result, err := a.services.Roster.ImportWorkers(importFarmID, entries)
	if err != nil {
		return fmt.Errorf("import stopped after %d workers: %w", result.Imported, err)
	}

	fmt.Printf("Import complete: %d imported, %d skipped\n", result.Imported, result.Skipped)
	return nil
}
