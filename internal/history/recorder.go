package history

import (
	"go.uber.org/zap"

	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
)

// Recorder writes the chains applied to one table into a Store. Record has
// the shape of the engine's OnApply callback.
type Recorder struct {
	store    *Store
	table    string
	registry *filter.Registry
	keep     int
	logger   *zap.Logger
}

// NewRecorder creates a recorder for table. keep > 0 prunes the log to the
// newest keep entries after every write.
func NewRecorder(store *Store, table string, fields []models.FieldDescriptor, keep int, logger *zap.Logger) (*Recorder, error) {
	registry, err := filter.NewRegistry(fields)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		store:    store,
		table:    table,
		registry: registry,
		keep:     keep,
		logger:   logger,
	}, nil
}

// Record stores rules with their WHERE clause. Failures are logged, the
// applied chain itself is never rejected.
func (r *Recorder) Record(rules []models.FilterRule) {
	where, _, err := filter.NewBuilder().BuildWhere(r.registry, rules)
	if err != nil {
		r.logger.Warn("applied chain has no WHERE clause", zap.Error(err))
	}

	if err := r.store.Add(r.table, rules, where); err != nil {
		r.logger.Warn("failed to record history", zap.Error(err))
		return
	}
	if r.keep <= 0 {
		return
	}
	if removed, err := r.store.Prune(r.keep); err != nil {
		r.logger.Warn("failed to prune history", zap.Error(err))
	} else if removed > 0 {
		r.logger.Debug("history pruned", zap.Int64("removed", removed))
	}
}
