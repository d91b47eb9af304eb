// Package schemax validates JSON documents against JSON schemas loaded from
// an fs.FS. Each schema is addressed by its file name without extension.
package schemax

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

var ErrInvalid = errors.New("schemax: document does not match schema")

// ValidationError carries the individual violations of one document.
type ValidationError struct {
	Schema   string
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schemax: %s: %s", e.Schema, strings.Join(e.Messages, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Registry holds compiled schemas.
type Registry struct {
	schemas map[string]*jschema.Schema
}

// NewRegistry compiles every *.json file at the root of fsys. Formats such
// as "email" are asserted, not just annotated.
func NewRegistry(fsys fs.FS) (*Registry, error) {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}

	c := jschema.NewCompiler()
	c.AssertFormat()

	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("schemax: read %s: %w", name, err)
		}
		doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("schemax: parse %s: %w", name, err)
		}
		if err := c.AddResource(name, doc); err != nil {
			return nil, fmt.Errorf("schemax: add %s: %w", name, err)
		}
	}

	r := &Registry{schemas: make(map[string]*jschema.Schema, len(names))}
	for _, name := range names {
		sch, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("schemax: compile %s: %w", name, err)
		}
		r.schemas[strings.TrimSuffix(path.Base(name), ".json")] = sch
	}
	return r, nil
}

// IDs returns the sorted schema ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.schemas))
	for id := range r.schemas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validator returns the validator for id.
func (r *Registry) Validator(id string) (*Validator, error) {
	sch, ok := r.schemas[id]
	if !ok {
		return nil, fmt.Errorf("schemax: unknown schema %q", id)
	}
	return &Validator{id: id, sch: sch}, nil
}

// MustValidator is Validator for static wiring; it panics on unknown ids.
func (r *Registry) MustValidator(id string) *Validator {
	v, err := r.Validator(id)
	if err != nil {
		panic(err)
	}
	return v
}

// Validator checks documents against one schema.
type Validator struct {
	id  string
	sch *jschema.Schema
}

func (v *Validator) ID() string { return v.id }

// ValidateJSON parses raw and validates it. Parse failures are reported as
// a ValidationError as well.
func (v *Validator) ValidateJSON(raw []byte) error {
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ValidationError{Schema: v.id, Messages: []string{"body is not valid JSON"}}
	}
	return v.Validate(doc)
}

// Validate checks an already decoded document.
func (v *Validator) Validate(doc any) error {
	err := v.sch.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Schema: v.id, Messages: messages(ve)}
}

// messages flattens the error tree into "at '/field': reason" lines.
func messages(ve *jschema.ValidationError) []string {
	var out []string
	for _, line := range strings.Split(ve.Error(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			out = append(out, strings.TrimPrefix(line, "- "))
		}
	}
	if len(out) == 0 {
		out = append(out, ve.Error())
	}
	return out
}
