package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vocabdrill/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write learner progress to a JSON backup file",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		outputPath, _ := cmd.Flags().GetString("output")
		if outputPath == "" {
			outputPath = fmt.Sprintf("progress_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		defer f.Close()

		backup := service.NewBackupService(e.progress, e.content, e.users, e.log)
		n, err := backup.Export(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d progress records to %s\n", n, outputPath)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Merge a JSON backup into the database without lowering any score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open backup file: %w", err)
		}
		defer f.Close()

		backup := service.NewBackupService(e.progress, e.content, e.users, e.log)
		result, err := backup.Restore(cmd.Context(), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d records (%d for unknown users, %d for unknown content skipped)\n",
			result.Restored, result.UnknownUsers, result.UnknownContent)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: progress_YYYYMMDD_HHMMSS.json)")
}
