package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rebelice/lazyfilter/internal/app"
	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/history"
	"github.com/rebelice/lazyfilter/internal/logger"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/presets"
)

func runTUI(cmd *cobra.Command, src fieldSource, presetName string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	log := logger.FromContext(ctx)

	fields, pool, err := src.load(ctx, true)
	if err != nil {
		return err
	}
	defer closePool(pool)

	pm, err := openPresets(cfg)
	if err != nil {
		return err
	}

	var initial []models.FilterRule
	if presetName != "" {
		p, err := pm.GetByName(presetName)
		if err != nil {
			return &ExitError{Code: 2, Err: err}
		}
		initial = p.Rules
		if err := pm.RecordUsage(p.ID); err != nil {
			log.Warn("failed to record preset usage", zap.Error(err))
		}
	}

	hooks := engineHooks{
		onReset: func() { log.Debug("filter chain cleared", zap.String("table", src.qualifiedTable())) },
	}
	if cfg.History.Enabled {
		store, err := openHistory(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		recorder, err := history.NewRecorder(store, src.qualifiedTable(), fields, cfg.History.MaxEntries, log.Named("history"))
		if err != nil {
			return err
		}
		hooks.onApply = recorder.Record
	}

	engine, err := newEngine(cfg, log, fields, initial, &hooks)
	if err != nil {
		return err
	}

	opts := app.Options{
		Config:  cfg,
		Engine:  engine,
		Pool:    pool,
		Presets: pm,
		Logger:  log,
	}
	if src.table != "" {
		opts.Schema, opts.Table = src.schema, src.table
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	log.Info("starting filter builder", zap.Int("fields", len(fields)), zap.String("table", src.qualifiedTable()))
	_, err = tea.NewProgram(app.New(opts), programOpts...).Run()
	return err
}

// engineHooks are the engine's output callbacks
type engineHooks struct {
	onApply func([]models.FilterRule)
	onReset func()
}

// newEngine builds a rule engine configured from cfg. hooks may be nil.
func newEngine(cfg *config.Config, log *zap.Logger, fields []models.FieldDescriptor, initial []models.FilterRule, hooks *engineHooks) (*filter.Engine, error) {
	opts := filter.Options{
		Fields:         fields,
		InitialFilters: initial,
		MaxFilters:     cfg.Filter.MaxFilters,
		DefaultLogic:   models.Logic(cfg.Filter.DefaultLogic),
		Logger:         log.Named("filter"),
	}
	if hooks != nil {
		opts.OnApply = hooks.onApply
		opts.OnReset = hooks.onReset
	}
	return filter.NewEngine(opts)
}

func openPresets(cfg *config.Config) (*presets.Manager, error) {
	dir, err := cfg.PresetsDir()
	if err != nil {
		return nil, err
	}
	return presets.NewManager(dir)
}

func openHistory(cfg *config.Config) (*history.Store, error) {
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.NewStore(path)
}
