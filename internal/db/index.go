package db

import (
	"errors"
	"fmt"
)

// FieldKind is the FT schema type of an indexed hash field.
type FieldKind int

const (
	// FieldTag is an exact-match TAG field.
	FieldTag FieldKind = iota
	// FieldNumeric is a NUMERIC field.
	FieldNumeric
	// FieldGeo is a GEO field holding "lng,lat".
	FieldGeo
)

func (k FieldKind) String() string {
	switch k {
	case FieldTag:
		return "TAG"
	case FieldNumeric:
		return "NUMERIC"
	case FieldGeo:
		return "GEO"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// IndexField is one SCHEMA entry of an index over hashes.
type IndexField struct {
	Name     string
	Kind     FieldKind
	Sortable bool

	// Separator overrides the TAG separator. Set it to a byte that never
	// occurs in values to keep the whole value as one tag.
	Separator string
	// SuffixTrie enables *infix* matching on a TAG field.
	SuffixTrie bool
}

// IndexDefinition is an FT.CREATE ... ON HASH definition.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the definition can be sent to FT.CREATE.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field %d: name is required", i)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		if f.Kind != FieldTag && (f.SuffixTrie || f.Separator != "") {
			return fmt.Errorf("field %q: tag options on a %s field", f.Name, f.Kind)
		}
	}
	return nil
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
