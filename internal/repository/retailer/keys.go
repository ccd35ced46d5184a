package retailer

const (
	recordPrefix = "retailer:"
	namePrefix   = "retailer_name:"
	indexSuffix  = "idx:retailers"
)

func (r *Repo) recordKey(id string) string { return r.prefix + recordPrefix + id }

func (r *Repo) nameKey(name string) string { return r.prefix + namePrefix + name }

func (r *Repo) indexName() string { return r.prefix + indexSuffix }
