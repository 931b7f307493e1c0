package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
)

func newPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved filter presets",
	}

	cmd.AddCommand(
		newPresetsListCommand(),
		newPresetsShowCommand(),
		newPresetsDeleteCommand(),
		newPresetsExportCommand(),
	)
	return cmd
}

func newPresetsListCommand() *cobra.Command {
	var (
		search string
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pm, err := openPresets(config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}

			var list []models.FilterPreset
			switch sortBy {
			case "name":
				list = pm.GetAll()
				sort.SliceStable(list, func(i, j int) bool {
					return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
				})
			case "used":
				list = pm.GetMostUsed(0)
			case "recent":
				list = pm.GetRecent(0)
			default:
				return usageError("unknown --sort %q (name, used, recent)", sortBy)
			}
			list = keepMatches(list, pm.Search(search))

			if len(list) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No presets found")
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTABLE\tRULES\tUSED\tFILTER")
			for _, p := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", p.Name, dash(p.Table), len(p.Rules), p.UsageCount, filter.Describe(p.Rules))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only presets matching this text")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "order: name, used, recent")
	return cmd
}

func newPresetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the rules of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := openPresets(config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			p, err := pm.GetByName(args[0])
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s)\n", p.Name, dash(p.Table))
			if p.Description != "" {
				fmt.Fprintln(w, p.Description)
			}
			for i, r := range p.Rules {
				line := fmt.Sprintf("  %d. %s", i+1, filter.DescribeRule(r))
				if r.Logic != models.LogicNone {
					line += " " + string(r.Logic)
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
}

func newPresetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pm, err := openPresets(config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}
			p, err := pm.GetByName(args[0])
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			if err := pm.Delete(p.ID); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", p.Name)
			return err
		},
	}
}

func newPresetsExportCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all presets to CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pm, err := openPresets(config.FromContext(cmd.Context()))
			if err != nil {
				return err
			}

			var path string
			switch strings.ToLower(format) {
			case "csv":
				path, err = pm.ExportToCSV(output)
			case "json":
				path, err = pm.ExportToJSON(output)
			default:
				return usageError("unknown --format %q (csv, json)", format)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Exported presets to %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: next to presets.yaml)")
	return cmd
}

// keepMatches keeps the presets of list that are also in matches, in list order
func keepMatches(list, matches []models.FilterPreset) []models.FilterPreset {
	ids := make(map[string]bool, len(matches))
	for _, p := range matches {
		ids[p.ID] = true
	}
	var out []models.FilterPreset
	for _, p := range list {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
