package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/h4ks-com/farmhand/internal/services"
	"github.com/spf13/cobra"
)

var (
	payrollFarmID     uint
	payrollPeriodID   uint
	payrollRateCardID uint
	payrollExport     string
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll operations",
}

var payrollRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run payroll for a pay period",
	Long: `Recompute the payroll lines of a pay period from approved job logs.

Without --rate-card the farm's active rate card is used. Reruns replace the
period's lines; a closed period cannot be run.`,
	Example: `  farmhand payroll run --farm 1 --period 4
  farmhand payroll run --farm 1 --period 4 --rate-card 2 --export summary.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPayroll(cmd.Context())
	},
}

func init() {
	payrollRunCmd.Flags().UintVar(&payrollFarmID, "farm", 0, "farm ID (required)")
	payrollRunCmd.Flags().UintVar(&payrollPeriodID, "period", 0, "pay period ID (required)")
	payrollRunCmd.Flags().UintVar(&payrollRateCardID, "rate-card", 0, "rate card ID (defaults to the active card)")
	payrollRunCmd.Flags().StringVar(&payrollExport, "export", "", "write the summary CSV to this path")
	payrollRunCmd.MarkFlagRequired("farm")
	payrollRunCmd.MarkFlagRequired("period")
	payrollCmd.AddCommand(payrollRunCmd)
}

func runPayroll(ctx context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	cardID := payrollRateCardID
	if cardID == 0 {
		card, err := a.services.Catalog.ActiveRateCard(payrollFarmID)
		if err != nil {
			return fmt.Errorf("no rate card given and no active card: %w", err)
		}
		cardID = card.ID
	}

	result, err := a.services.Payroll.Run(ctx, payrollFarmID, payrollPeriodID, cardID)
	if err != nil {
		return err
	}

	lines, err := a.services.Payroll.Lines(payrollFarmID, payrollPeriodID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Worker\tGross\tBonuses\tDeductions\tNet\t")
	for _, line := range lines {
		name := fmt.Sprintf("#%d", line.WorkerID)
		if line.Worker != nil {
			name = line.Worker.FullName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", name,
			line.GrossPay.StringFixed(2), line.Bonuses.StringFixed(2),
			line.Deductions.StringFixed(2), line.NetPay.StringFixed(2))
	}
	totals := services.Totals(lines)
	fmt.Fprintf(w, "TOTAL (%d)\t%s\t%s\t%s\t%s\t\n", totals.Workers,
		totals.Gross.StringFixed(2), totals.Bonuses.StringFixed(2),
		totals.Deductions.StringFixed(2), totals.Net.StringFixed(2))
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("rate card %q, %d stale line(s) removed\n", result.RateCard.Name, result.Removed)

	if payrollExport == "" {
		return nil
	}
	f, err := os.Create(payrollExport)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()
	if err := services.WriteSummaryCSV(f, lines); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("summary written to %s\n", payrollExport)
	return nil
}
