package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the keyword rules in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := newSelector(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "match mode: %s\n\n", selector.Mode())
		for i, r := range selector.Rules() {
			fmt.Fprintf(out, "%2d. %-18s %s\n", i+1, r.Name, strings.Join(r.Terms, ", "))
		}
		fmt.Fprintf(out, "    %-18s (no match)\n", selector.Fallback().Name)
		return nil
	},
}
