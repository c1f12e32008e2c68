package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notelist"
	"github.com/Makepad-fr/tada/internal/ui"
)

const maxNameWidth = 60

func newListCmd(app *App) *cobra.Command {
	var (
		offset int
		all    bool
		search string
		group  bool
	)
	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "Print notes",
		Long: strings.TrimSpace(`
Print one page of notes (20 per page) starting at --offset, or every page
with --all. --search switches to the server-side search endpoint.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if offset < 0 {
				return fmt.Errorf("--offset must not be negative, got %d", offset)
			}
			search = strings.TrimSpace(search)

			notes, err := fetchNotes(cmd, app, offset, all, search)
			if err != nil {
				return err
			}

			lines := listHeader(notes, search)
			if group {
				lines = append(lines, groupLines(notes, offset)...)
			} else {
				lines = append(lines, flatLines(notes, offset)...)
			}
			lines = append(lines, "")
			lines = append(lines, ui.C(ui.Current().Muted, "Tip: toggle with `notes check <id>`, or run `notes` for the interactive list"))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "Index of the first note to fetch")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every page")
	cmd.Flags().StringVar(&search, "search", "", "Only notes matching this query")
	cmd.Flags().BoolVar(&group, "group", false, "Group output by unchecked/checked")
	cmd.MarkFlagsMutuallyExclusive("offset", "all")
	return cmd
}

// fetchNotes returns a single page at offset, or, with all, drives a
// controller through every page of the context.
func fetchNotes(cmd *cobra.Command, app *App, offset int, all bool, search string) ([]model.Note, error) {
	ctx := cmd.Context()
	client := app.client()

	if !all {
		req := notelist.PageRequest{Offset: offset, Search: search != "", Query: search}
		notes, err := req.Fetch(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("fetch notes at offset %d: %w", offset, err)
		}
		return notes, nil
	}

	ctl := app.controller()
	if search != "" {
		req, _ := ctl.Search(search)
		notes, err := req.Fetch(ctx, client)
		ctl.ApplyPage(req, notes, err)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", search, err)
		}
	}
	for ctl.HasMore() {
		if err := ctl.LoadPage(ctx, client); err != nil {
			return nil, err
		}
	}
	return ctl.Notes(), nil
}

func listHeader(notes []model.Note, search string) []string {
	checked, unchecked := stats(notes)
	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Heading, "Notes"),
		t.CountMark(true), checked,
		t.CountMark(false), unchecked,
		ui.C(t.Accent, "Shown"), len(notes),
	)
	if search != "" {
		header += "  " + ui.C(t.Accent, fmt.Sprintf("search: %q", search))
	}
	return []string{
		header,
		ui.C(t.Muted, ui.ProgressBar(checked, checked+unchecked, 28)),
		"",
	}
}

func stats(notes []model.Note) (checked, unchecked int) {
	for _, n := range notes {
		if n.IsChecked {
			checked++
		} else {
			unchecked++
		}
	}
	return
}

// flatLines numbers notes by their index in the listing, starting at base.
func flatLines(notes []model.Note, base int) []string {
	if len(notes) == 0 {
		return []string{ui.C(ui.Current().Muted, "no notes")}
	}
	out := make([]string, 0, len(notes))
	for i, n := range notes {
		out = append(out, ui.NoteLine(base+i, n.ID, n.Name, n.IsChecked, maxNameWidth))
	}
	return out
}

func groupLines(notes []model.Note, base int) []string {
	var open, done []string
	for i, n := range notes {
		line := ui.NoteLine(base+i, n.ID, n.Name, n.IsChecked, maxNameWidth)
		if n.IsChecked {
			done = append(done, line)
		} else {
			open = append(open, line)
		}
	}
	var lines []string
	lines = append(lines, ui.C(ui.Current().Accent, "Unchecked"))
	if len(open) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, open...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Accent, "Checked"))
	if len(done) == 0 {
		lines = append(lines, ui.C(ui.Current().Muted, "(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}
