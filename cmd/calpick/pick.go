package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"calpick/internal/picker"
	"calpick/internal/tui"
)

var (
	pickFlags pickerFlags
	pickISO   bool
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a date interactively and print it",
	Long: `pick opens the picker in the terminal. Enter picks the date under
the cursor and prints it, q or esc leaves without a date.`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

var errNothingPicked = errors.New("no date picked")

func init() {
	pickFlags.register(pickCmd)
	pickCmd.Flags().BoolVar(&pickISO, "iso", false, "print the date as YYYY-MM-DD instead of the culture format")
}

func runPick(cmd *cobra.Command, _ []string) error {
	opts, err := pickFlags.options(cmd, conf)
	if err != nil {
		return err
	}
	p := picker.New(opts)

	prog := tea.NewProgram(tui.NewModel(p),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("picker: %w", err)
	}

	picked, ok := final.(tui.Model).Picked()
	if !ok {
		return errNothingPicked
	}
	if pickISO {
		fmt.Fprintln(cmd.OutOrStdout(), picked.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.FormattedDate())
	return nil
}
