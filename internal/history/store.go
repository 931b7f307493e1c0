package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// applied_at is stored as sortable UTC text; go-sqlite3 parses DATETIME
// columns in this layout back into time.Time
const timeLayout = "2006-01-02 15:04:05.000"

// HistoryEntry represents one applied rule chain
type HistoryEntry struct {
	ID          int
	Table       string
	Rules       []models.FilterRule
	Summary     string
	WhereClause string
	RuleCount   int
	AppliedAt   time.Time
}

// Store manages filter history persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new history store
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: opens its own empty database
	db.SetMaxOpenConns(1)

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Add records an applied chain. The summary and rule count are derived from
// the rules.
func (s *Store) Add(table string, rules []models.FilterRule, whereClause string) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO filter_history
		(table_name, rules_json, summary, where_clause, rule_count, applied_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		table,
		string(data),
		filter.Describe(rules),
		whereClause,
		len(rules),
		time.Now().UTC().Format(timeLayout),
	)
	return err
}

// GetRecent retrieves the most recently applied chains
func (s *Store) GetRecent(limit int) ([]HistoryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, table_name, rules_json, summary, where_clause, rule_count, applied_at
		FROM filter_history
		ORDER BY applied_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Search finds applied chains whose summary or table matches text
func (s *Store) Search(text string, limit int) ([]HistoryEntry, error) {
	pattern := "%" + filter.EscapeLike(text) + "%"
	rows, err := s.db.Query(`
		SELECT id, table_name, rules_json, summary, where_clause, rule_count, applied_at
		FROM filter_history
		WHERE summary LIKE ? ESCAPE '\' OR table_name LIKE ? ESCAPE '\'
		ORDER BY applied_at DESC, id DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanEntries(rows)
}

// Prune keeps only the newest keep entries
func (s *Store) Prune(keep int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM filter_history
		WHERE id NOT IN (
			SELECT id FROM filter_history ORDER BY applied_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEntries(rows *sql.Rows) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var rulesJSON string

		err := rows.Scan(
			&e.ID,
			&e.Table,
			&rulesJSON,
			&e.Summary,
			&e.WhereClause,
			&e.RuleCount,
			&e.AppliedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(rulesJSON), &e.Rules); err != nil {
			return nil, fmt.Errorf("failed to decode rules of entry %d: %w", e.ID, err)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
