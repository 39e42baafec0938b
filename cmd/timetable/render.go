package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/timetable/internal/app"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "render <section-id>",
		Short: "Write a section's timetable as a PNG grid or an iCalendar feed",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if format != "png" && format != "ics" {
				return fmt.Errorf("--format must be png or ics, got %q", format)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			sectionID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid section id %q: %w", args[0], err)
			}
			if output == "" {
				output = fmt.Sprintf("section-%d.%s", sectionID, format)
			}

			return withApp(cmd.Context(), root, func(a *app.App) error {
				var data []byte
				var err error
				if format == "ics" {
					data, err = a.Exports.SectionScheduleICS(cmd.Context(), sectionID)
				} else {
					data, err = a.Exports.SectionSchedulePNG(cmd.Context(), sectionID)
				}
				if err != nil {
					return err
				}

				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "Wrote", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default section-<id>.<format>)")
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png or ics")
	return cmd
}
