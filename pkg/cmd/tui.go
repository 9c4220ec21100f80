package cmd

import (
	"fwdctl/pkg/reporting"
	"fwdctl/pkg/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive view of all forwards",
		Long: `Open a terminal UI listing every rule with its live status. Space
toggles the forward under the cursor, r restarts everything, R reloads
the rule file, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cfg, cleanup, err := setupWith(cmd, reporting.NewLogReporter())
			if err != nil {
				return err
			}
			defer cleanup()

			model := ui.NewModel(sup, cfg)
			p := tea.NewProgram(model, tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
