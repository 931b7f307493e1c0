package filter

import (
	"errors"
	"fmt"
	"os"

	"github.com/rebelice/lazyfilter/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidField is returned when a field descriptor is malformed
	ErrInvalidField = errors.New("invalid field")
	// ErrDuplicateField is returned when two descriptors share an id
	ErrDuplicateField = errors.New("duplicate field id")
)

// Registry is an ordered, read-only set of field descriptors
type Registry struct {
	fields []models.FieldDescriptor
	byID   map[string]int
}

// NewRegistry validates fields and builds a registry over a copy of them
func NewRegistry(fields []models.FieldDescriptor) (*Registry, error) {
	r := &Registry{
		fields: make([]models.FieldDescriptor, 0, len(fields)),
		byID:   make(map[string]int, len(fields)),
	}

	for _, f := range fields {
		if err := validateField(f); err != nil {
			return nil, err
		}
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.ID)
		}
		f.Operators = cloneOperators(f.Operators)
		f.Options = append([]models.FieldOption(nil), f.Options...)
		r.byID[f.ID] = len(r.fields)
		r.fields = append(r.fields, f)
	}

	return r, nil
}

func validateField(f models.FieldDescriptor) error {
	if f.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidField)
	}
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q has unknown type %q", ErrInvalidField, f.ID, f.Type)
	}
	if (f.Type == models.FieldSelect || f.Type == models.FieldMultiSelect) && len(f.Options) == 0 {
		return fmt.Errorf("%w: %q is %s but has no options", ErrInvalidField, f.ID, f.Type)
	}
	for _, op := range f.Operators {
		if !op.Valid() {
			return fmt.Errorf("%w: %q lists unknown operator %q", ErrInvalidField, f.ID, op)
		}
	}
	return nil
}

// LoadFieldsFile reads a YAML list of field descriptors and builds a registry
func LoadFieldsFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fields file: %w", err)
	}

	var fields []models.FieldDescriptor
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse fields file: %w", err)
	}

	return NewRegistry(fields)
}

// Len returns the number of fields
func (r *Registry) Len() int {
	return len(r.fields)
}

// Fields returns the descriptors in registry order
func (r *Registry) Fields() []models.FieldDescriptor {
	out := make([]models.FieldDescriptor, len(r.fields))
	copy(out, r.fields)
	return out
}

// First returns the first field, if any
func (r *Registry) First() (models.FieldDescriptor, bool) {
	if len(r.fields) == 0 {
		return models.FieldDescriptor{}, false
	}
	return r.fields[0], true
}

// FieldByID looks up a field by id
func (r *Registry) FieldByID(id string) (models.FieldDescriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return models.FieldDescriptor{}, false
	}
	return r.fields[i], true
}

// Index returns the position of a field, or -1
func (r *Registry) Index(id string) int {
	if i, ok := r.byID[id]; ok {
		return i
	}
	return -1
}

// OperatorsForID returns the operators of the field with the given id.
// An unknown id yields an empty list.
func (r *Registry) OperatorsForID(id string) []models.FilterOperator {
	f, ok := r.FieldByID(id)
	if !ok {
		return []models.FilterOperator{}
	}
	return OperatorsFor(f)
}
