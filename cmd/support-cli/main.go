package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"framelink-support/internal/client"
)

var version = "1.0.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "support-cli",
	Short: "FrameLink support CLI",
	Long: `support-cli talks to the FrameLink support service.

Examples:
  support-cli ask "How do I export a study?"
  support-cli upload ./docs/faq.pdf
  support-cli files list
  support-cli files delete <file-id> <openai-file-id>`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(healthCmd)

	defaultURL := os.Getenv("SUPPORT_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().String("url", defaultURL, "Support service base URL")
	rootCmd.PersistentFlags().Duration("timeout", 5*time.Minute, "Request timeout")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func newClient(cmd *cobra.Command) *client.Client {
	baseURL, _ := cmd.Flags().GetString("url")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
	return client.New(baseURL, timeout, log)
}
