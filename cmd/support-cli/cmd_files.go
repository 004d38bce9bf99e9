package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Manage uploaded documents",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runFilesList,
}

var filesDeleteCmd = &cobra.Command{
	Use:   "delete [file-id] [openai-file-id]",
	Short: "Delete an uploaded document",
	Args:  cobra.ExactArgs(2),
	RunE:  runFilesDelete,
}

func init() {
	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesDeleteCmd)
}

func runFilesList(cmd *cobra.Command, args []string) error {
	files, err := newClient(cmd).ListFiles(cmd.Context())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No files uploaded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOPENAI FILE\tNAME\tTYPE\tSIZE\tSTATUS\tUPLOADED")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.OpenAIFileID, f.OriginalFilename, f.MetadataCache.TypeDisplay,
			f.MetadataCache.SizeFormatted, f.Status, f.UploadedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runFilesDelete(cmd *cobra.Command, args []string) error {
	count, err := newClient(cmd).DeleteFile(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s)\n", count)
	return nil
}
