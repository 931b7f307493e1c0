package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFields() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "age", Label: "Age", Type: models.FieldNumber},
		{ID: "status", Label: "Status", Type: models.FieldSelect, Options: []models.FieldOption{
			{Value: "active", Label: "Active"},
			{Value: "inactive", Label: "Inactive"},
		}},
		{ID: "name", Label: "Name", Type: models.FieldText},
		{ID: "tags", Label: "Tags", Type: models.FieldMultiSelect, Options: []models.FieldOption{
			{Value: "vip", Label: "VIP"},
			{Value: "new", Label: "New"},
		}},
		{ID: "verified", Label: "Verified", Type: models.FieldBoolean},
		{ID: "price", Label: "Price", Type: models.FieldRange},
		{ID: "created", Label: "Created", Type: models.FieldDateTime},
	}
}

func TestNewRegistry(t *testing.T) {
	r, err := NewRegistry(testFields())
	require.NoError(t, err)

	assert.Equal(t, 7, r.Len())

	first, ok := r.First()
	require.True(t, ok)
	assert.Equal(t, "age", first.ID)

	status, ok := r.FieldByID("status")
	require.True(t, ok)
	assert.Equal(t, models.FieldSelect, status.Type)
	assert.Equal(t, 1, r.Index("status"))
	assert.Equal(t, -1, r.Index("missing"))
}

func TestNewRegistry_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []models.FieldDescriptor
		target error
	}{
		{"empty id", []models.FieldDescriptor{{Type: models.FieldText}}, ErrInvalidField},
		{"unknown type", []models.FieldDescriptor{{ID: "x", Type: "geo"}}, ErrInvalidField},
		{"select without options", []models.FieldDescriptor{{ID: "s", Type: models.FieldSelect}}, ErrInvalidField},
		{"unknown operator", []models.FieldDescriptor{{ID: "x", Type: models.FieldText, Operators: []models.FilterOperator{"like"}}}, ErrInvalidField},
		{"duplicate", []models.FieldDescriptor{{ID: "x", Type: models.FieldText}, {ID: "x", Type: models.FieldNumber}}, ErrDuplicateField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.fields)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestRegistry_EmptyIsUsable(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	_, ok := r.First()
	assert.False(t, ok)
	assert.Empty(t, r.OperatorsForID("age"))
}

func TestRegistry_OperatorsForID(t *testing.T) {
	r, err := NewRegistry(testFields())
	require.NoError(t, err)

	assert.Equal(t, []models.FilterOperator{models.OpBetween}, r.OperatorsForID("price"))
	assert.Empty(t, r.OperatorsForID("missing"))
}

func TestRegistry_FieldsIsolatedFromCaller(t *testing.T) {
	fields := testFields()
	r, err := NewRegistry(fields)
	require.NoError(t, err)

	fields[0].ID = "changed"
	got := r.Fields()
	got[1].Type = models.FieldText

	f, ok := r.FieldByID("age")
	require.True(t, ok)
	assert.Equal(t, "age", f.ID)
	status, _ := r.FieldByID("status")
	assert.Equal(t, models.FieldSelect, status.Type)
}

func TestLoadFieldsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fields.yaml")
	content := `
- id: email
  label: Email
  type: text
  placeholder: someone@example.com
- id: plan
  label: Plan
  type: select
  operators: [in, notIn]
  options:
    - {value: free, label: Free}
    - {value: pro, label: Pro}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err := LoadFieldsFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	plan, ok := r.FieldByID("plan")
	require.True(t, ok)
	assert.Equal(t, []models.FilterOperator{models.OpIn, models.OpNotIn}, OperatorsFor(plan))
	assert.Len(t, plan.Options, 2)
}

func TestLoadFieldsFile_Missing(t *testing.T) {
	_, err := LoadFieldsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
