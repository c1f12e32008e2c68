package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notelist"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newCheckCmd(app *App, checked bool) *cobra.Command {
	use, short, done := "check <id>", "Mark a note as checked", "checked"
	if !checked {
		use, short, done = "uncheck <id>", "Mark a note as unchecked", "unchecked"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			b := notelist.Batch{Checks: []model.CheckEdit{{ID: id, IsChecked: checked}}}
			if err := send(cmd, app, b); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("note %d %s", id, done))
			return nil
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <from> <to>",
		Short: "Move a note from one index to another",
		Long:  "Indexes are 0-based positions in the full listing, as printed by `notes ls`.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			from, err := parseIndex("from", args[1])
			if err != nil {
				return err
			}
			to, err := parseIndex("to", args[2])
			if err != nil {
				return err
			}
			if from == to {
				ui.Warn(cmd.ErrOrStderr(), "from and to are the same, nothing to send")
				return nil
			}
			b := notelist.Batch{Positions: []model.PositionEdit{{ID: id, FromIndex: from, ToIndex: to}}}
			if err := send(cmd, app, b); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("note %d moved %d -> %d", id, from, to))
			return nil
		},
	}
}

func send(cmd *cobra.Command, app *App, b notelist.Batch) error {
	if err := app.client().ChangeNotes(cmd.Context(), b.Request()); err != nil {
		return fmt.Errorf("change notes: %w", err)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: not a number: %s", s)
	}
	return id, nil
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %s", name, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %d", name, n)
	}
	return n, nil
}
