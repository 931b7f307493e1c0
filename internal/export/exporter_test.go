package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebelice/lazyfilter/internal/models"
)

func testPresets() []models.FilterPreset {
	return []models.FilterPreset{
		{
			ID:          "test-1",
			Name:        "Adults, active",
			Description: "Active users over \"18\"",
			Table:       "public.users",
			Rules: []models.FilterRule{
				{ID: "r1", Field: "age", Operator: models.OpGreaterThan, Value: "18", Logic: models.LogicAnd},
				{ID: "r2", Field: "status", Operator: models.OpIn, Value: []interface{}{"active"}},
			},
			Tags:       []string{"users", "ops"},
			CreatedAt:  time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
			LastUsed:   time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC),
			UsageCount: 5,
		},
		{
			ID:        "test-2",
			Name:      "No email",
			Table:     "public.users",
			Rules:     []models.FilterRule{{ID: "r3", Field: "email", Operator: models.OpIsEmpty}},
			CreatedAt: time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2024, 1, 2, 13, 0, 0, 0, time.UTC),
		},
	}
}

func TestExportToCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "test.csv")

	if err := ExportToCSV(testPresets(), csvPath); err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}

	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	expectedHeader := []string{"Name", "Description", "Table", "Rules", "Rule Count", "Tags", "Created", "Updated", "Last Used", "Usage Count"}
	if !slicesEqual(records[0], expectedHeader) {
		t.Errorf("Header mismatch.\nExpected: %v\nGot: %v", expectedHeader, records[0])
	}

	row1 := records[1]
	if row1[0] != "Adults, active" {
		t.Errorf("Expected name 'Adults, active', got '%s'", row1[0])
	}
	if row1[3] != "age greater than 18 AND status is any of [active]" {
		t.Errorf("Unexpected rules description '%s'", row1[3])
	}
	if row1[4] != "2" {
		t.Errorf("Expected rule count '2', got '%s'", row1[4])
	}
	if row1[5] != "users, ops" {
		t.Errorf("Expected tags 'users, ops', got '%s'", row1[5])
	}
	if row1[9] != "5" {
		t.Errorf("Expected usage count '5', got '%s'", row1[9])
	}

	// Never used presets leave Last Used blank
	if records[2][8] != "" {
		t.Errorf("Expected empty last used, got '%s'", records[2][8])
	}
}

func TestExportToJSON(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "test.json")

	if err := ExportToJSON(testPresets()[:1], jsonPath); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var parsed []models.FilterPreset
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("Expected 1 preset, got %d", len(parsed))
	}
	if parsed[0].Name != "Adults, active" {
		t.Errorf("Expected name 'Adults, active', got '%s'", parsed[0].Name)
	}
	if len(parsed[0].Rules) != 2 || parsed[0].Rules[0].Logic != models.LogicAnd {
		t.Errorf("Rules did not round trip: %+v", parsed[0].Rules)
	}

	// Verify JSON is pretty-printed (contains newlines and indentation)
	jsonStr := string(data)
	if !strings.Contains(jsonStr, "\n") {
		t.Error("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(jsonStr, "  ") {
		t.Error("JSON should be indented")
	}
}

func TestExportEmptyPresets(t *testing.T) {
	tmpDir := t.TempDir()

	csvPath := filepath.Join(tmpDir, "empty.csv")
	if err := ExportToCSV([]models.FilterPreset{}, csvPath); err != nil {
		t.Fatalf("ExportToCSV with empty list failed: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("Failed to open CSV: %v", err)
	}
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 1 { // Only header
		t.Errorf("Expected 1 record (header), got %d", len(records))
	}

	jsonPath := filepath.Join(tmpDir, "empty.json")
	if err := ExportToJSON([]models.FilterPreset{}, jsonPath); err != nil {
		t.Fatalf("ExportToJSON with empty list failed: %v", err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("Expected empty JSON array, got %s", data)
	}
}

func TestRulesToJSON(t *testing.T) {
	out, err := RulesToJSON(nil)
	if err != nil {
		t.Fatalf("RulesToJSON failed: %v", err)
	}
	if out != "[]" {
		t.Errorf("Expected [], got %s", out)
	}

	out, err = RulesToJSON(testPresets()[0].Rules)
	if err != nil {
		t.Fatalf("RulesToJSON failed: %v", err)
	}
	if !strings.Contains(out, `"logic": "AND"`) {
		t.Errorf("Expected logic in output, got %s", out)
	}
	if strings.Count(out, `"logic"`) != 1 {
		t.Errorf("Last rule should omit logic, got %s", out)
	}
}

// Helper function to compare slices
func slicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
