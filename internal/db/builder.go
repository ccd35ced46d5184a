package db

// IndexBuilder assembles an IndexDefinition field by field.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts an index definition over hashes.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Prefix restricts the index to keys with the given prefixes.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Tag adds an exact-match TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldTag})
}

// SortableTag adds a TAG field usable in SORTBY.
func (b *IndexBuilder) SortableTag(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldTag, Sortable: true})
}

// SubstringTag adds a TAG field that answers *infix* queries. separator
// should never appear in values so that each value stays a single tag.
func (b *IndexBuilder) SubstringTag(name, separator string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldTag, Separator: separator, SuffixTrie: true})
}

// SortableNumeric adds a NUMERIC field usable in SORTBY.
func (b *IndexBuilder) SortableNumeric(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldNumeric, Sortable: true})
}

// Geo adds a GEO field.
func (b *IndexBuilder) Geo(name string) *IndexBuilder {
	return b.add(IndexField{Name: name, Kind: FieldGeo})
}

// Build validates and returns the definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

func (b *IndexBuilder) add(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}
