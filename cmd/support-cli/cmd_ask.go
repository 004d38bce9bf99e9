package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"framelink-support/internal/client"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a support question",
	Long:  `Send a question to the support assistant and print the answer as it streams.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringP("username", "u", "", "Name to store with the question")
	askCmd.Flags().StringP("subject", "s", "", "Subject of the question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	subject, _ := cmd.Flags().GetString("subject")
	out := cmd.OutOrStdout()

	streamed := false
	answer, err := newClient(cmd).Ask(cmd.Context(), client.Question{
		Username: username,
		Subject:  subject,
		Question: strings.Join(args, " "),
	}, func(ev client.Event) {
		if ev.Type == "delta" {
			streamed = true
			fmt.Fprint(out, ev.Content)
		}
	})
	if err != nil {
		if streamed {
			fmt.Fprintln(out)
		}
		return err
	}

	// A fallback replaces whatever partial text was streamed.
	if streamed && answer.Fallback {
		fmt.Fprintln(out)
	}
	if !streamed || answer.Fallback {
		fmt.Fprint(out, answer.Text)
	}
	fmt.Fprintln(out)

	if answer.Fallback {
		fmt.Fprintln(out, "\n(standard answer, the assistant was unavailable)")
	}
	if len(answer.Citations) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for i, c := range answer.Citations {
			name := c.Filename
			if name == "" {
				name = c.FileID
			}
			fmt.Fprintf(out, "  [%d] %s\n", i+1, name)
		}
	}
	return nil
}
