package metadata

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rebelice/lazyfilter/internal/db/connection"
	"github.com/rebelice/lazyfilter/internal/db/query"
	"github.com/rebelice/lazyfilter/internal/models"
)

// FilteredQuery renders the SELECT for a table with an optional WHERE clause
// produced by the filter builder
func FilteredQuery(schema, table, where string, limit int) string {
	ident := pgx.Identifier{table}
	if schema != "" {
		ident = pgx.Identifier{schema, table}
	}

	sql := "SELECT * FROM " + ident.Sanitize()
	if where != "" {
		sql += " " + where
	}
	if limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", limit)
	}
	return sql
}

// QueryFilteredData fetches at most limit rows matching the WHERE clause
func QueryFilteredData(ctx context.Context, pool *connection.Pool, schema, table, where string, args []interface{}, limit int) models.QueryResult {
	return query.Execute(ctx, pool.GetPool(), FilteredQuery(schema, table, where, limit), args...)
}
