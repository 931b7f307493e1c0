package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		search string
		prune  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently applied filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())
			if !cfg.History.Enabled {
				return usageError("history is disabled (history.enabled = false)")
			}

			store, err := openHistory(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			w := cmd.OutOrStdout()
			if prune {
				removed, err := store.Prune(cfg.History.MaxEntries)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(w, "Removed %d entries\n", removed)
				return err
			}

			var entries []history.HistoryEntry
			if search != "" {
				entries, err = store.Search(search, limit)
			} else {
				entries, err = store.GetRecent(limit)
			}
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				_, err := fmt.Fprintln(w, "No history")
				return err
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "APPLIED\tTABLE\tRULES\tFILTER")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
					e.AppliedAt.Local().Format("2006-01-02 15:04"), dash(e.Table), e.RuleCount, e.Summary)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	cmd.Flags().StringVar(&search, "search", "", "only entries whose filter or table matches")
	cmd.Flags().BoolVar(&prune, "prune", false, "drop entries beyond history.max_entries")
	return cmd
}
