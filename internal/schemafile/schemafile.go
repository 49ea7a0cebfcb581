// Package schemafile describes document shapes in YAML or TOML files and
// decodes documents against them with resilient field wrappers. It backs the
// inspect command, where Go types for the documents do not exist.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/reoring/resilient"
)

// Field shapes, one per resilient wrapper.
const (
	ShapeRequired      = "required"
	ShapeOptional      = "optional"
	ShapeArray         = "array"
	ShapeOptionalArray = "optional_array"
	ShapeMap           = "map"
	ShapeOptionalMap   = "optional_map"
)

// Field value types. TypeEnum uses Values, Fallback and Frozen; TypeObject
// uses Fields.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeNumber = "number"
	TypeAny    = "any"
	TypeEnum   = "enum"
	TypeObject = "object"
)

// Key strategies accepted in Schema.Keys.
const (
	KeysAsIs      = "as_is"
	KeysSnakeCase = "snake_case"
)

// Schema is the root of a schema file.
type Schema struct {
	Name   string  `yaml:"name" toml:"name"`
	Keys   string  `yaml:"keys" toml:"keys"`
	Fields []Field `yaml:"fields" toml:"fields"`
}

// Field describes one member of an object.
type Field struct {
	Name     string   `yaml:"name" toml:"name"`
	Shape    string   `yaml:"shape" toml:"shape"`
	Type     string   `yaml:"type" toml:"type"`
	Strict   bool     `yaml:"strict" toml:"strict"`
	Values   []string `yaml:"values" toml:"values"`
	Fallback *string  `yaml:"fallback" toml:"fallback"`
	Frozen   bool     `yaml:"frozen" toml:"frozen"`
	Fields   []Field  `yaml:"fields" toml:"fields"`
}

// ErrUnknownFormat is returned for schema files that are neither YAML nor TOML.
var ErrUnknownFormat = errors.New("schemafile: unknown schema format")

// Load reads a schema file; the format follows the file extension.
func Load(path string) (*Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a schema in format "yaml", "yml" or "toml" and validates it.
func Parse(b []byte, format string) (*Schema, error) {
	var s Schema
	switch strings.ToLower(format) {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case "toml":
		meta, err := toml.Decode(string(b), &s)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if und := meta.Undecoded(); len(und) > 0 {
			return nil, fmt.Errorf("unknown TOML key %s", und[0].String())
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names, shapes and types. Missing shapes default to optional.
func (s *Schema) Validate() error {
	switch s.Keys {
	case "", KeysAsIs, KeysSnakeCase:
	default:
		return fmt.Errorf("unknown key strategy %q", s.Keys)
	}
	return validateFields(s.Fields, "")
}

func validateFields(fields []Field, parent string) error {
	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		f := &fields[i]
		where := parent + "/" + f.Name
		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("field %d under %q has no name", i, parent)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%s: duplicate field", where)
		}
		seen[f.Name] = struct{}{}
		if f.Shape == "" {
			f.Shape = ShapeOptional
		}
		switch f.Shape {
		case ShapeRequired, ShapeOptional, ShapeArray, ShapeOptionalArray, ShapeMap, ShapeOptionalMap:
		default:
			return fmt.Errorf("%s: unknown shape %q", where, f.Shape)
		}
		switch f.Type {
		case TypeString, TypeInt, TypeFloat, TypeBool, TypeNumber, TypeAny:
		case TypeEnum:
			if len(f.Values) == 0 {
				return fmt.Errorf("%s: enum without values", where)
			}
		case TypeObject:
			if err := validateFields(f.Fields, where); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: unknown type %q", where, f.Type)
		}
		if f.Fallback != nil && f.Type != TypeEnum {
			return fmt.Errorf("%s: fallback is only supported for enums", where)
		}
	}
	return nil
}

// Options returns session options matching the schema's key strategy.
func (s *Schema) Options() resilient.Options {
	var opt resilient.Options
	if s.Keys == KeysSnakeCase {
		opt.KeyStrategy = resilient.KeysFromSnakeCase
	}
	return opt
}
