package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mnemo/cardmill/internal/config"
	"mnemo/cardmill/internal/state"
)

var (
	configPath string
	stateDir   string
)

var rootCmd = &cobra.Command{
	Use:   "cardmill",
	Short: "Turn exported AI-chat transcripts into Anki flashcards",
	Long: `cardmill loads conversation exports from Claude, Google AI Studio, and
ChatGPT, asks Gemini to propose flashcards for each conversation, lets you
approve or reject each batch on the console, and pushes approved cards to
Anki via AnkiConnect.

Rejections grow a persistent rule file that steers future proposals, and a
checkpoint ledger makes every run resumable.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to cardmill.yaml")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Directory for checkpoint db and rule file")
}

// LoadConfig resolves and loads the configuration using priority:
// CARDMILL_CONFIG env > --config flag > ./cardmill.yaml > state dir.
func LoadConfig() (*config.Config, error) {
	dir, err := config.StateDir(stateDir)
	if err != nil {
		return nil, err
	}
	path, err := config.Discover(configPath, dir)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// OpenLedger opens the checkpoint database in the state directory.
func OpenLedger() (*state.Ledger, error) {
	dir, err := config.StateDir(stateDir)
	if err != nil {
		return nil, err
	}
	return state.OpenLedger(filepath.Join(dir, "checkpoints.db"))
}

// OpenRules opens the rejection rule memory in the state directory.
func OpenRules() (*state.Rules, error) {
	dir, err := config.StateDir(stateDir)
	if err != nil {
		return nil, err
	}
	return state.OpenRules(filepath.Join(dir, "rejection_rules.txt"))
}
