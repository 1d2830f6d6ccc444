package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"xai-assistant/internal/responder"
)

var askShowRule bool

var errEmptyMessage = errors.New("message must not be blank")

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Print the local reply for a single message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, err := newSelector(cfg)
		if err != nil {
			return err
		}
		return runAsk(selector, strings.Join(args, " "), askShowRule, cmd.OutOrStdout())
	},
}

func init() {
	askCmd.Flags().BoolVar(&askShowRule, "rule", false, "print the name of the matching rule")
}

func runAsk(selector *responder.Selector, message string, showRule bool, out io.Writer) error {
	if strings.TrimSpace(message) == "" {
		return errEmptyMessage
	}
	m := selector.Resolve(message)
	if showRule {
		fmt.Fprintf(out, "[%s]\n", m.Rule)
	}
	fmt.Fprintln(out, m.Response)
	return nil
}
