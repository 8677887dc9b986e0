package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// CompileError is a schema definition error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadCUE loads every .cue file of the package in dir and compiles the
// schema it defines.
func LoadCUE(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("schema directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("schema directory: not a directory: %s", dir)
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	return CompileCUE(value)
}

// CompileCUEString compiles a schema from CUE source. filename is used in
// error positions.
func CompileCUEString(filename, src string) (*Schema, error) {
	value := cuecontext.New().CompileString(src, cue.Filename(filename))
	return CompileCUE(value)
}

// CompileCUE builds a schema from a CUE value of the form:
//
//	model: User: {
//		table: "users"
//		columns: ["id", "name"]
//		associations: address: {model: "Address", parent_key: "id", child_key: "tenant_id"}
//	}
func CompileCUE(v cue.Value) (*Schema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	modelsVal := v.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, &CompileError{Field: "model", Message: "no models defined", Pos: v.Pos()}
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	s := New()
	for iter.Next() {
		m, err := compileModel(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if err := s.AddModel(*m); err != nil {
			return nil, &CompileError{Field: "model." + m.Name, Message: err.Error(), Pos: iter.Value().Pos()}
		}
	}

	if err := s.Check(); err != nil {
		return nil, &CompileError{Field: "associations", Message: err.Error(), Pos: modelsVal.Pos()}
	}
	return s, nil
}

func compileModel(name string, v cue.Value) (*Model, error) {
	m := &Model{Name: name}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{Field: "model." + name + ".table", Message: "table is required", Pos: v.Pos()}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	m.Table = table

	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if colsVal.Exists() {
		if err := colsVal.Decode(&m.Columns); err != nil {
			return nil, formatCUEError(err)
		}
	}

	assocVal := v.LookupPath(cue.ParsePath("associations"))
	if !assocVal.Exists() {
		return m, nil
	}
	iter, err := assocVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m.Associations = make(map[string]Association)
	for iter.Next() {
		label := iter.Label()
		var raw struct {
			Model     string `json:"model"`
			ParentKey string `json:"parent_key"`
			ChildKey  string `json:"child_key"`
		}
		if err := iter.Value().Decode(&raw); err != nil {
			return nil, formatCUEError(err)
		}
		if raw.Model == "" || raw.ParentKey == "" || raw.ChildKey == "" {
			return nil, &CompileError{
				Field:   "model." + name + ".associations." + label,
				Message: "model, parent_key and child_key are required",
				Pos:     iter.Value().Pos(),
			}
		}
		m.Associations[label] = Association{
			Name:      label,
			Model:     raw.Model,
			ParentKey: raw.ParentKey,
			ChildKey:  raw.ChildKey,
		}
	}
	return m, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
