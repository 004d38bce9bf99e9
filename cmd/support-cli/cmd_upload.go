package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [path...]",
	Short: "Upload documents",
	Long:  `Upload one or more documents to the assistant's document store.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	c := newClient(cmd)
	out := cmd.OutOrStdout()

	var failed int
	for _, path := range args {
		file, err := c.Upload(cmd.Context(), path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "%s: %s (id %s, %s)\n", file.Filename, file.Status, file.RecordID, file.FileID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}
