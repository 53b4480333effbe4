package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetID string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear checkpoint entries so conversations are re-attempted",
	Long: `Deletes checkpoint entries. With --id, only that conversation is
forgotten; without it, the whole ledger is cleared. Rejection rules are never
touched -- edit the rule file directly to change them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := OpenLedger()
		if err != nil {
			return err
		}
		defer ledger.Close()

		if resetID != "" {
			existed, err := ledger.ResetID(resetID)
			if err != nil {
				return err
			}
			if !existed {
				return fmt.Errorf("no checkpoint entry for %s", resetID)
			}
			fmt.Printf("Forgot checkpoint for %s\n", resetID)
			return nil
		}

		entries, err := ledger.Done()
		if err != nil {
			return err
		}
		if err := ledger.Reset(); err != nil {
			return err
		}
		fmt.Printf("Cleared %d checkpoint entries\n", len(entries))
		return nil
	},
}

func init() {
	resetCmd.Flags().StringVar(&resetID, "id", "", "Forget a single conversation id")
	rootCmd.AddCommand(resetCmd)
}
