package metadata

import (
	"context"
	"fmt"
	"strings"

	"github.com/rebelice/lazyfilter/internal/db/connection"
	"github.com/rebelice/lazyfilter/internal/models"
)

// toString safely converts an interface{} to string
func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toStrings(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, toString(item))
		}
		return out
	default:
		return nil
	}
}

// GetTableColumns retrieves column metadata for a table. Enum labels are
// resolved for enum columns and arrays of enums.
func GetTableColumns(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.ColumnInfo, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.is_nullable = 'YES' AS nullable,
			c.data_type = 'ARRAY' AS is_array,
			COALESCE((
				SELECT array_agg(e.enumlabel::text ORDER BY e.enumsortorder)
				FROM pg_type t
				JOIN pg_enum e ON e.enumtypid = t.oid
				WHERE t.typname = CASE WHEN c.data_type = 'ARRAY'
					THEN substr(c.udt_name, 2) ELSE c.udt_name END
			), '{}') AS enum_values
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := pool.Query(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	columns := make([]models.ColumnInfo, 0, len(rows))
	for _, row := range rows {
		var col models.ColumnInfo
		col.Name = toString(row["column_name"])
		col.DataType = toString(row["data_type"])
		col.UDTName = toString(row["udt_name"])
		col.EnumValues = toStrings(row["enum_values"])

		if nullable, ok := row["nullable"].(bool); ok {
			col.Nullable = nullable
		}
		if isArray, ok := row["is_array"].(bool); ok {
			col.IsArray = isArray
		}

		columns = append(columns, col)
	}

	return columns, nil
}

// FieldTypeForPG maps a column to the filter field type used to edit it
func FieldTypeForPG(col models.ColumnInfo) models.FieldType {
	if len(col.EnumValues) > 0 {
		if col.IsArray {
			return models.FieldMultiSelect
		}
		return models.FieldSelect
	}
	if col.IsArray {
		// arrays of free values are matched on their text form
		return models.FieldText
	}

	switch strings.ToLower(col.DataType) {
	case "smallint", "integer", "bigint", "numeric", "decimal", "real", "double precision", "money":
		return models.FieldNumber
	case "date":
		return models.FieldDate
	case "timestamp without time zone", "timestamp with time zone":
		return models.FieldDateTime
	case "boolean":
		return models.FieldBoolean
	default:
		return models.FieldText
	}
}

// FieldsFromColumns builds field descriptors for every column
func FieldsFromColumns(cols []models.ColumnInfo) []models.FieldDescriptor {
	fields := make([]models.FieldDescriptor, 0, len(cols))
	for _, col := range cols {
		f := models.FieldDescriptor{
			ID:          col.Name,
			Label:       col.Name,
			Type:        FieldTypeForPG(col),
			Placeholder: col.DataType,
		}
		for _, v := range col.EnumValues {
			f.Options = append(f.Options, models.FieldOption{Value: v, Label: v})
		}
		if f.Type == models.FieldSelect || f.Type == models.FieldMultiSelect {
			f.Placeholder = strings.Join(col.EnumValues, ", ")
		}
		fields = append(fields, f)
	}
	return fields
}

// GetTableFields discovers the filterable fields of a table
func GetTableFields(ctx context.Context, pool *connection.Pool, schema, table string) ([]models.FieldDescriptor, error) {
	cols, err := GetTableColumns(ctx, pool, schema, table)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s.%s not found or has no columns", schema, table)
	}
	return FieldsFromColumns(cols), nil
}
