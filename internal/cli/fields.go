package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rebelice/lazyfilter/internal/db/connection"
	"github.com/rebelice/lazyfilter/internal/db/metadata"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/logger"
	"github.com/rebelice/lazyfilter/internal/models"
)

// fieldSource says where the filterable fields come from: a YAML file, or
// the columns of a PostgreSQL table
type fieldSource struct {
	fieldsFile string
	dsn        string
	schema     string
	table      string
}

func (s *fieldSource) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&s.fieldsFile, "fields", "", "YAML file describing the filterable fields")
	pf.StringVar(&s.dsn, "dsn", "", "PostgreSQL connection string (default: database.dsn from config)")
	pf.StringVar(&s.schema, "schema", "public", "schema of --table")
	pf.StringVar(&s.table, "table", "", "table to filter")
}

// connects reports whether a database connection should be opened
func (s *fieldSource) connects() bool {
	return s.dsn != "" && s.table != ""
}

// qualifiedTable returns schema.table, or "" without a table
func (s *fieldSource) qualifiedTable() string {
	state := models.AppState{Schema: s.schema, Table: s.table}
	return state.QualifiedTable()
}

// load resolves the fields. A pool is opened when the fields come from the
// table, or when withPool asks for one to run queries; the caller closes it.
func (s *fieldSource) load(ctx context.Context, withPool bool) ([]models.FieldDescriptor, *connection.Pool, error) {
	log := logger.FromContext(ctx)

	if s.fieldsFile == "" && !s.connects() {
		return nil, nil, usageError("either --fields or --dsn with --table is required")
	}

	var pool *connection.Pool
	if s.connects() && (s.fieldsFile == "" || withPool) {
		var err error
		pool, err = connection.NewPool(ctx, s.dsn)
		if err != nil {
			return nil, nil, err
		}
	}

	if s.fieldsFile != "" {
		registry, err := filter.LoadFieldsFile(s.fieldsFile)
		if err != nil {
			closePool(pool)
			return nil, nil, err
		}
		log.Debug("fields loaded from file", zap.String("path", s.fieldsFile), zap.Int("fields", registry.Len()))
		return registry.Fields(), pool, nil
	}

	fields, err := metadata.GetTableFields(ctx, pool, s.schema, s.table)
	if err != nil {
		closePool(pool)
		return nil, nil, fmt.Errorf("failed to read columns of %s: %w", s.qualifiedTable(), err)
	}
	log.Debug("fields discovered", zap.String("table", s.qualifiedTable()), zap.Int("fields", len(fields)))
	return fields, pool, nil
}

func closePool(pool *connection.Pool) {
	if pool != nil {
		pool.Close()
	}
}
