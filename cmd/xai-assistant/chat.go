package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"xai-assistant/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		replier, err := newReplier(cfg, logger)
		if err != nil {
			return err
		}
		rec, closeRec, err := openRecorder(cfg)
		if err != nil {
			return err
		}
		defer closeRec()

		manager := newManager(cfg, replier, rec, logger)
		defer manager.CloseAll()

		return runChat(cmd.Context(), manager, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runChat reads one message per line until EOF or "exit" and prints each
// reply once it arrives.
func runChat(ctx context.Context, manager *chat.Manager, in io.Reader, out io.Writer) error {
	sess := manager.Create("terminal",
		chat.WithListener(func(ex chat.Exchange) {
			fmt.Fprintf(out, "\n%s\n\n", ex.Assistant.Content)
		}))
	defer manager.Close(sess.ID())

	fmt.Fprintf(out, "%s\n\n", sess.Turns()[0].Content)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit":
			return nil
		}

		if _, err := sess.Submit(line); err != nil {
			if errors.Is(err, chat.ErrEmptyInput) {
				continue
			}
			return err
		}
		fmt.Fprint(out, "...")
		if err := sess.Wait(ctx); err != nil {
			return err
		}
	}
}
