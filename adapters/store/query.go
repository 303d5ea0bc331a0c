package store

import "github.com/timshannon/badgerhold/v4"

// queryBuilder accumulates optional equality filters into a badgerhold
// query. With no filters the built query matches every record.
type queryBuilder struct {
	query *badgerhold.Query
}

func newQuery() *queryBuilder {
	return &queryBuilder{}
}

func (b *queryBuilder) where(field string, value interface{}) {
	if b.query == nil {
		b.query = badgerhold.Where(field).Eq(value)
		return
	}
	b.query = b.query.And(field).Eq(value)
}

func (b *queryBuilder) build() *badgerhold.Query {
	if b.query == nil {
		return &badgerhold.Query{}
	}
	return b.query
}
