package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/timetable/internal/app"
)

func newConflictsCmd(root *rootOptions) *cobra.Command {
	var xlsxPath string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Print the conflict report, optionally writing it as a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), root, func(a *app.App) error {
				ctx := cmd.Context()

				report, err := a.Conflicts.CountConflicts(ctx)
				if err != nil {
					return err
				}

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}

				if xlsxPath == "" {
					return nil
				}
				buf, _, err := a.Exports.ConflictReportXLSX(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(xlsxPath, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write workbook: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Wrote", xlsxPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report to this .xlsx file")
	return cmd
}
