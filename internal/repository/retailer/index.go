package retailer

import "github.com/kailas-cloud/retailerdir/internal/db"

// tagSeparator keeps the whole lowercased name as a single tag value.
const tagSeparator = "\x1f"

// buildIndex returns the FT index over retailer hashes.
func (r *Repo) buildIndex() (*db.IndexDefinition, error) {
	return db.NewIndex(r.indexName()).
		Prefix(r.prefix + recordPrefix).
		SortableTag(fieldID).
		SubstringTag(fieldNameLC, tagSeparator).
		Tag(fieldCategory).
		Geo(fieldLocation).
		SortableNumeric(fieldCreatedAt).
		Build()
}
