package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mnemo/cardmill/internal/export"
	"mnemo/cardmill/internal/pipeline"
)

var (
	statusData string
	statusJSON bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint ledger state and pending conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		if statusData != "" {
			cfg.DataPath = statusData
		}

		ledger, err := OpenLedger()
		if err != nil {
			return err
		}
		defer ledger.Close()

		entries, err := ledger.Done()
		if err != nil {
			return err
		}

		conversations, summary, err := export.LoadAll(cfg.DataPath)
		if err != nil {
			return err
		}

		doneIDs := make(map[string]bool, len(entries))
		cardsAdded := 0
		for _, e := range entries {
			doneIDs[e.ID] = true
			cardsAdded += e.CardsAdded
		}

		var pending []export.Conversation
		for _, conv := range conversations {
			if !doneIDs[conv.ID] {
				pending = append(pending, conv)
			}
		}

		if statusJSON {
			out := struct {
				Done       []interface{} `json:"done"`
				Pending    []string      `json:"pending"`
				CardsAdded int           `json:"cards_added"`
				Malformed  int           `json:"malformed_records"`
			}{CardsAdded: cardsAdded, Malformed: len(summary.Malformed)}
			for _, e := range entries {
				out.Done = append(out.Done, e)
			}
			for _, conv := range pending {
				out.Pending = append(out.Pending, conv.ID)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Printf("Checkpoint ledger: %s\n", ledger.Path)
		fmt.Printf("  Done:        %d conversation(s)\n", len(entries))
		fmt.Printf("  Pending:     %d conversation(s)\n", len(pending))
		fmt.Printf("  Cards added: %d\n", cardsAdded)
		if n := len(summary.Malformed); n > 0 {
			fmt.Printf("  Malformed:   %d record(s)\n", n)
		}

		if len(pending) > 0 {
			fmt.Println("\nPending:")
			for _, conv := range pending {
				fmt.Printf("  %s: %s\n", conv.Source.Tag(), pipeline.TruncateMiddle(conv.Title, 60))
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusData, "data", "", "Export root directory (overrides config)")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}
