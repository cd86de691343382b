package orm

import (
	"errors"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/postgres"
)

// A Query is a typed view over a [*postgres.Builder],
// yielding records of T from its finishers.
type Query[T any] struct {
	table *Table[T]
	b     *postgres.Builder
}

// Builder exposes the underlying untyped builder,
// e.g. for joins the typed surface does not carry.
//
// NB: use in exceptional circumstances only.
func (q *Query[T]) Builder() *postgres.Builder { return q.b }

// Select replaces the selected columns, defaulting to *.
func (q *Query[T]) Select(columns ...string) *Query[T] {
	q.b.Select(columns...)
	return q
}

// Where adds a condition to the current query.
func (q *Query[T]) Where(column, op string, value any) *Query[T] {
	q.b.Where(column, op, value)
	return q
}

// Like adds a LIKE condition, wrapping pattern in % wildcards automatically.
func (q *Query[T]) Like(column, pattern string) *Query[T] {
	q.b.Like(column, pattern)
	return q
}

// ILike adds a case-insensitive ILIKE condition,
// wrapping pattern in % wildcards automatically.
func (q *Query[T]) ILike(column, pattern string) *Query[T] {
	q.b.ILike(column, pattern)
	return q
}

// GroupBy applies a GROUP BY clause over the named columns.
func (q *Query[T]) GroupBy(columns ...string) *Query[T] {
	q.b.GroupBy(columns...)
	return q
}

// Having adds a condition to the HAVING clause.
func (q *Query[T]) Having(column, op string, value any) *Query[T] {
	q.b.Having(column, op, value)
	return q
}

// OrderBy applies an ORDER BY clause to the current query.
func (q *Query[T]) OrderBy(column, direction string) *Query[T] {
	q.b.OrderBy(column, direction)
	return q
}

// Limit applies a LIMIT clause to the current query.
func (q *Query[T]) Limit(limit int) *Query[T] {
	q.b.Limit(limit)
	return q
}

// Offset applies an OFFSET clause to the current query.
func (q *Query[T]) Offset(offset int) *Query[T] {
	q.b.Offset(offset)
	return q
}

// Distinct adds a DISTINCT clause to the current query.
func (q *Query[T]) Distinct() *Query[T] {
	q.b.Distinct()
	return q
}

// All executes the query and returns every matching record.
// No matches yield an empty slice, not an error.
func (q *Query[T]) All() ([]Record[T], error) {
	var items []T
	if err := q.b.Find(&items); err != nil {
		return nil, err
	}

	return q.table.records(items)
}

// First executes the query with LIMIT 1 and returns the matching record.
// When nothing matches, First returns nil without error.
func (q *Query[T]) First() (*Record[T], error) {
	var item T
	err := q.b.First(&item)
	if errors.Is(err, slintrust.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return q.table.record(item)
}

// FirstValue executes the query with LIMIT 1 and returns the bare value.
// When nothing matches, FirstValue returns ErrNotFound.
func (q *Query[T]) FirstValue() (T, error) {
	var item T
	if err := q.b.First(&item); err != nil {
		return item, err
	}

	return item, nil
}
