// Package schema describes the relational models an expression is compiled
// and validated against: each model's table, its columns, and the named
// associations that lead to other models.
package schema

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownModel is returned when a model name is not in the schema.
	ErrUnknownModel = errors.New("unknown model")

	// ErrNoSuchAssociation is returned when a model exists but has no
	// association of the requested name.
	ErrNoSuchAssociation = errors.New("no such association")
)

// Provider answers schema questions for the compilers.
//
// Implementations must report a missing association with an error matching
// ErrNoSuchAssociation, distinct from ErrUnknownModel and I/O failures.
type Provider interface {
	Model(name string) (*Model, error)
	Association(model, name string) (Association, error)
}

// Model is one relational model.
type Model struct {
	Name         string
	Table        string
	Columns      []string
	Associations map[string]Association
}

// HasColumn reports whether the model's table has the column.
func (m *Model) HasColumn(name string) bool {
	return slices.Contains(m.Columns, name)
}

// Association leads from a parent model to Model. Rows join on
// parent.ParentKey = child.ChildKey.
type Association struct {
	Name      string
	Model     string
	ParentKey string
	ChildKey  string
}

// Schema is an in-memory Provider.
type Schema struct {
	models map[string]*Model
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{models: make(map[string]*Model)}
}

// AddModel adds or replaces a model. Association names are filled in from
// their map keys.
func (s *Schema) AddModel(m Model) error {
	if m.Name == "" {
		return fmt.Errorf("model name is required")
	}
	if m.Table == "" {
		return fmt.Errorf("model %s: table is required", m.Name)
	}

	assocs := make(map[string]Association, len(m.Associations))
	for name, a := range m.Associations {
		a.Name = name
		assocs[name] = a
	}
	m.Associations = assocs
	m.Columns = slices.Clone(m.Columns)
	s.models[m.Name] = &m
	return nil
}

// Model implements Provider.
func (s *Schema) Model(name string) (*Model, error) {
	m, ok := s.models[name]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownModel, name)
	}
	return m, nil
}

// Association implements Provider.
func (s *Schema) Association(model, name string) (Association, error) {
	m, err := s.Model(model)
	if err != nil {
		return Association{}, err
	}
	a, ok := m.Associations[name]
	if !ok {
		return Association{}, fmt.Errorf("model %s has %w %s", model, ErrNoSuchAssociation, name)
	}
	return a, nil
}

// Models returns the model names in sorted order.
func (s *Schema) Models() []string {
	names := make([]string, 0, len(s.models))
	for name := range s.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Check verifies that every association targets a known model and joins on
// existing columns. All problems are returned joined.
func (s *Schema) Check() error {
	var errs []error
	for _, name := range s.Models() {
		m := s.models[name]
		assocNames := make([]string, 0, len(m.Associations))
		for an := range m.Associations {
			assocNames = append(assocNames, an)
		}
		slices.Sort(assocNames)

		for _, an := range assocNames {
			a := m.Associations[an]
			target, ok := s.models[a.Model]
			if !ok {
				errs = append(errs, fmt.Errorf("%s.%s: %w %s", name, an, ErrUnknownModel, a.Model))
				continue
			}
			if !m.HasColumn(a.ParentKey) {
				errs = append(errs, fmt.Errorf("%s.%s: parent key %q is not a column of %s", name, an, a.ParentKey, name))
			}
			if !target.HasColumn(a.ChildKey) {
				errs = append(errs, fmt.Errorf("%s.%s: child key %q is not a column of %s", name, an, a.ChildKey, a.Model))
			}
		}
	}
	return errors.Join(errs...)
}
