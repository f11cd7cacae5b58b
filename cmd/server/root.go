package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "farmhand",
	Short: "Farmhand - farm operations backend",
	Long: `Farmhand tracks field work on farms and pays for it.

Supervisors log acres worked against planned jobs, managers approve the logs,
and payroll turns approved work into per-worker pay at the active rate card.

Run 'farmhand serve' to start the API server. The other commands bootstrap users,
import worker rosters, load catalog seeds and run payroll from the shell.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(payrollCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(seedCmd)
}
