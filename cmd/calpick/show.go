package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appLog "calpick/internal/log"
	"calpick/internal/picker"
	"calpick/internal/tui"
)

var (
	showFlags pickerFlags
	showMarks bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the calendar grid and exit",
	Example: `  calpick show --month 2024-02 --locale en-GB --week-numbers
  calpick show --months 3 --columns 3`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showFlags.register(showCmd)
	showCmd.Flags().BoolVar(&showMarks, "marks", false, "fetch the configured ICS feeds once and mark event days")
}

func runShow(cmd *cobra.Command, _ []string) error {
	opts, err := showFlags.options(cmd, conf)
	if err != nil {
		return err
	}

	if showMarks && len(conf.Marks.ICS) > 0 {
		refresher := newRefresher(conf)
		if err := refresher.Refresh(cmd.Context()); err != nil {
			// Print the grid unmarked rather than failing the command.
			appLog.Error("marks refresh failed", err)
		}
		opts.Marker = refresher.Marker()
	}

	p := picker.New(opts)
	p.Rendered(true)
	fmt.Fprintln(cmd.OutOrStdout(), tui.Render(p.Render(), tui.Focus{}))
	return nil
}
