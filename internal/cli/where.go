package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/db/metadata"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/logger"
	"github.com/rebelice/lazyfilter/internal/models"
)

type whereOutput struct {
	Where string        `json:"where"`
	Args  []interface{} `json:"args"`
	SQL   string        `json:"sql,omitempty"`
}

func newWhereCommand(src *fieldSource) *cobra.Command {
	var (
		rulesFile  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "where [PRESET]",
		Short: "Print the SQL WHERE clause of a preset or a rules file",
		Long: `Translate a saved preset, or a JSON rules file as copied from the
builder with Y, into a parameterised PostgreSQL WHERE clause.

Rules are repaired against the fields first: rules on unknown fields are
dropped and operators the field does not support are replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (rulesFile != "") {
				return usageError("give either a preset name or --rules")
			}

			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			var rules []models.FilterRule
			if rulesFile != "" {
				var err error
				if rules, err = readRulesFile(rulesFile); err != nil {
					return err
				}
			} else {
				pm, err := openPresets(cfg)
				if err != nil {
					return err
				}
				p, err := pm.GetByName(args[0])
				if err != nil {
					return &ExitError{Code: 2, Err: err}
				}
				rules = p.Rules
			}

			fields, pool, err := src.load(ctx, false)
			if err != nil {
				return err
			}
			closePool(pool)

			engine, err := newEngine(cfg, logger.FromContext(ctx), fields, rules, nil)
			if err != nil {
				return err
			}

			where, params, err := filter.NewBuilder().BuildWhere(engine.Registry(), engine.Rules())
			if err != nil {
				return err
			}

			out := whereOutput{Where: where, Args: params}
			if src.table != "" {
				out.SQL = metadata.FilteredQuery(src.schema, src.table, where, cfg.Database.QueryLimit)
			}
			return writeWhere(cmd.OutOrStdout(), out, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&rulesFile, "rules", "", "JSON file with a rule chain")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func readRulesFile(path string) ([]models.FilterRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	var rules []models.FilterRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	return rules, nil
}

func writeWhere(w io.Writer, out whereOutput, asJSON bool) error {
	if asJSON {
		if out.Args == nil {
			out.Args = []interface{}{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if out.SQL != "" {
		if _, err := fmt.Fprintln(w, out.SQL); err != nil {
			return err
		}
	} else if _, err := fmt.Fprintln(w, out.Where); err != nil {
		return err
	}
	for i, a := range out.Args {
		if _, err := fmt.Fprintf(w, "$%d = %s\n", i+1, filter.FormatValue(a)); err != nil {
			return err
		}
	}
	return nil
}
