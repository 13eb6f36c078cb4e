package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/surfacegen/genapi/internal/cli/ui"
	"github.com/surfacegen/genapi/internal/errors"
	"github.com/surfacegen/genapi/internal/history"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [assembly]",
		Short: "List recorded emissions",
		Long: `List emissions recorded with --history, newest first. Each entry shows
whether the emitted surface changed from the previous emission of the same
assembly.

Examples:
  genapi history --history .genapi/history.db
  genapi history Contoso.Widgets --limit 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			if cfg.History == "" {
				return errors.NewInvalidConfig("history", "no history database configured").
					WithSuggestion("Pass --history <path> or set history in genapi.yml")
			}

			ctx := commandContext(cmd)
			store, err := history.Open(ctx, cfg.History)
			if err != nil {
				return err
			}
			defer store.Close()

			assembly := ""
			if len(args) > 0 {
				assembly = args[0]
			}
			records, err := store.List(ctx, assembly, limit)
			if err != nil {
				return err
			}

			renderHistory(cmd.OutOrStdout(), records, noColorFlag(cmd))
			return nil
		},
	}

	cmd.Flags().String("history", "", "History database (SQLite path or postgres:// URL)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries")

	return cmd
}

// renderHistory prints records newest first. The change column compares each
// record with the next older record of the same assembly in the list.
func renderHistory(w io.Writer, records []*history.Record, noColor bool) {
	ui.Header(w, "Emission history", noColor)
	if len(records) == 0 {
		fmt.Fprintln(w, "No emissions recorded.")
		return
	}

	changed := color.New(color.FgYellow)
	if noColor {
		changed.DisableColor()
	}

	for i, rec := range records {
		var prev *history.Record
		for _, older := range records[i+1:] {
			if older.Assembly == rec.Assembly {
				prev = older
				break
			}
		}
		change := history.Compare(prev, rec)

		line := fmt.Sprintf("%s  %-28s %-10s %4d types %5d members %3d warnings  %s",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Assembly,
			rec.Version,
			rec.Types,
			rec.Members,
			rec.Warnings,
			shortHash(rec.OutputHash),
		)
		if change == history.ChangeSurface {
			changed.Fprintf(w, "%s  %s\n", line, change)
		} else {
			fmt.Fprintf(w, "%s  %s\n", line, change)
		}
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
