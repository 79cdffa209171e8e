package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vocabdrill/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import words, definitions and example sentences from a CSV or XLSX file",
	Long: `Import content rows with the columns
  word, type, pronunciation, difficulty, definition, source sentence, target sentence
Existing words, definitions and examples are reused, so a file can be imported again safely.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		sheet, _ := cmd.Flags().GetString("sheet")
		if sheet == "" {
			sheet = e.cfg.ImportSheet
		}

		result, err := importer.New(e.content, e.log).ImportFile(cmd.Context(), args[0], sheet)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processed %d rows: %d new examples, %d already present, %d invalid\n",
			result.Processed, result.Created, result.Existing, result.Invalid)
		for _, msg := range result.Errors {
			fmt.Fprintf(out, "  %s\n", msg)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().String("sheet", "", "Worksheet to read from an Excel file (default from IMPORT_SHEET)")
}
