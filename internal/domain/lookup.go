package domain

// LookupValue is one entry of a reference list (religions, castes, languages,
// countries, and so on) served by the metadata endpoints.
type LookupValue struct {
	ID        int64  `db:"id" json:"id"`
	Category  string `db:"category" json:"category"`
	Value     string `db:"value" json:"value"`
	Label     string `db:"label" json:"label"`
	SortOrder int    `db:"sort_order" json:"sort_order"`
}
