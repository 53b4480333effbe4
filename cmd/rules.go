package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the rejection rule memory",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := OpenRules()
		if err != nil {
			return err
		}
		if rules.Len() == 0 {
			fmt.Println("No rejection rules yet.")
			return nil
		}
		for i, rule := range rules.List() {
			fmt.Printf("%d. %s\n", i+1, rule)
		}
		return nil
	},
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <rule text>",
	Short: "Append a rejection rule by hand",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := OpenRules()
		if err != nil {
			return err
		}
		rule := strings.Join(args, " ")
		if err := rules.Add(rule); err != nil {
			return err
		}
		fmt.Printf("Added rule %d: %s\n", rules.Len(), rule)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesAddCmd)
	rootCmd.AddCommand(rulesCmd)
}
