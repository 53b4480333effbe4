package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mnemo/cardmill/internal/anki"
	"mnemo/cardmill/internal/config"
	"mnemo/cardmill/internal/pipeline"
	"mnemo/cardmill/internal/propose"
	"mnemo/cardmill/internal/review"
)

var (
	runData    string
	runDeck    string
	runSource  string
	runMaxRuns int
	runDryRun  bool
	runReset   bool
	runYes     bool
	runJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process pending conversations into reviewed flashcards",
	Long: `Loads all conversation exports, skips the ones already checkpointed,
and drives each remaining conversation through proposal, console review, and
Anki submission. Every conversation is checkpointed once it reaches a
terminal state, so an interrupted run resumes where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		if runData != "" {
			cfg.DataPath = runData
		}
		if runDeck != "" {
			cfg.Deck = runDeck
		}

		ledger, err := OpenLedger()
		if err != nil {
			return err
		}
		defer ledger.Close()

		if runReset {
			if err := ledger.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "[run] Checkpoint ledger reset\n")
		}

		rules, err := OpenRules()
		if err != nil {
			return err
		}

		deps := pipeline.Deps{
			Ledger: ledger,
			Rules:  rules,
		}

		if runYes {
			deps.Prompter = review.AutoApprove{}
		} else {
			deps.Prompter = review.NewConsole(os.Stdin, os.Stdout)
		}

		if runDryRun {
			// No service or store needed to list checkpoint state.
			return runPipeline(deps, cfg)
		}

		store := anki.NewClient(cfg.AnkiConnectURL)
		if err := store.Ping(); err != nil {
			return err
		}
		if err := store.EnsureDeck(cfg.Deck); err != nil {
			return err
		}
		deps.Store = store

		gemini, err := propose.NewGemini(propose.GeminiConfig{
			APIKey:    os.Getenv("GEMINI_API_KEY"),
			BaseURL:   cfg.BaseURL,
			Model:     cfg.Model,
			Interests: cfg.Interests,
			Timeout:   cfg.RequestTimeout(),
		})
		if err != nil {
			return err
		}
		deps.Proposer = gemini
		if cfg.SummarizeOnReject() {
			deps.Summarizer = gemini
		}

		return runPipeline(deps, cfg)
	},
}

func runPipeline(deps pipeline.Deps, cfg *config.Config) error {
	_, err := pipeline.Run(context.Background(), deps, pipeline.Options{
		DataPath: cfg.DataPath,
		Deck:     cfg.Deck,
		Source:   runSource,
		MaxRuns:  runMaxRuns,
		DryRun:   runDryRun,
		JSON:     runJSON,
	})
	return err
}

func init() {
	runCmd.Flags().StringVar(&runData, "data", "", "Export root directory (overrides config)")
	runCmd.Flags().StringVar(&runDeck, "deck", "", "Anki deck name (overrides config)")
	runCmd.Flags().StringVar(&runSource, "source", "", "Restrict to one source: claude, google, openai")
	runCmd.Flags().IntVar(&runMaxRuns, "max-runs", 0, "Maximum conversations to process this run (0 = all)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "List conversations and checkpoint state, don't propose")
	runCmd.Flags().BoolVar(&runReset, "reset", false, "Clear the checkpoint ledger before starting")
	runCmd.Flags().BoolVar(&runYes, "yes", false, "Approve every batch without prompting")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Output run summary as JSON")
	rootCmd.AddCommand(runCmd)
}
