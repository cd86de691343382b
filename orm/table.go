package orm

import (
	"errors"
	"fmt"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/postgres"
	"github.com/emeraldlinks/slintrust/schema"
)

// A Table is a typed handle to the database table backing T.
//
// Record lookups key off the schema's primary column by default;
// use [Table.WithKey] for tables keyed some other way.
type Table[T any] struct {
	orm    *ORM
	schema *schema.Table
	key    string
}

// NewTable derives the schema for T, registers it on the ORM,
// and returns the typed handle.
//
// T must declare a primary key column, either via the slint tag
// or by embedding [slintrust.Model]; otherwise use [Table.WithKey].
func NewTable[T any](o *ORM) (*Table[T], error) {
	var model T
	t, err := o.register(&model)
	if err != nil {
		return nil, err
	}

	handle := &Table[T]{orm: o, schema: t}
	if primary, ok := t.Primary(); ok {
		handle.key = primary.Name
	}

	return handle, nil
}

// Name returns the database table name.
func (t *Table[T]) Name() string { return t.schema.Name }

// Key returns the column record lookups key off.
func (t *Table[T]) Key() string { return t.key }

// Schema exposes the derived table schema.
func (t *Table[T]) Schema() *schema.Table { return t.schema }

// WithKey returns a handle keying records off the named column.
func (t *Table[T]) WithKey(column string) (*Table[T], error) {
	if _, ok := t.schema.Column(column); !ok {
		return nil, fmt.Errorf("%w: table %s has no column %q", slintrust.ErrNotValid, t.schema.Name, column)
	}

	handle := *t
	handle.key = column
	return &handle, nil
}

// Insert inserts item into the table.
func (t *Table[T]) Insert(item *T) error {
	return t.orm.Insert(t.schema.Name, item)
}

// Get fetches the first record where column equals value.
// When no record matches, Get returns nil without error.
func (t *Table[T]) Get(column string, value any) (*Record[T], error) {
	var item T
	err := t.orm.First(&item, t.schema.Name, column, value)
	if errors.Is(err, slintrust.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return t.record(item)
}

// GetAll fetches every record in the table.
// An empty table yields an empty slice, not an error.
func (t *Table[T]) GetAll() ([]Record[T], error) {
	var items []T
	if err := t.orm.All(&items, t.schema.Name); err != nil {
		return nil, err
	}

	return t.records(items)
}

// Query starts a typed query against the table.
func (t *Table[T]) Query() *Query[T] {
	return &Query[T]{table: t, b: t.orm.Query(t.schema.Name)}
}

func (t *Table[T]) record(item T) (*Record[T], error) {
	key, err := t.keyValue(item)
	if err != nil {
		return nil, err
	}

	return &Record[T]{Value: item, table: t, key: key}, nil
}

func (t *Table[T]) records(items []T) ([]Record[T], error) {
	records := make([]Record[T], len(items))
	for i, item := range items {
		r, err := t.record(item)
		if err != nil {
			return nil, err
		}
		records[i] = *r
	}

	return records, nil
}

func (t *Table[T]) keyValue(item T) (any, error) {
	if t.key == "" {
		return nil, fmt.Errorf("%w: table %s has no key column; use WithKey", slintrust.ErrMissingData, t.schema.Name)
	}

	cols, vals, err := t.schema.Values(item)
	if err != nil {
		return nil, err
	}

	for i, col := range cols {
		if col == t.key {
			return vals[i], nil
		}
	}

	return nil, fmt.Errorf("%w: key column %q not found on %s", slintrust.ErrMissingData, t.key, t.schema.Name)
}

// A Record wraps a fetched value with instance-level update and delete,
// keyed off the value as it was fetched.
type Record[T any] struct {
	Value T

	table *Table[T]
	key   any
}

// Update applies updates to the record, refetches it,
// and returns the fresh value.
func (r *Record[T]) Update(updates postgres.Updates) (T, error) {
	var fresh T
	t := r.table
	if err := t.orm.UpdateColumns(t.schema.Name, t.key, r.key, updates); err != nil {
		return fresh, err
	}

	if err := t.orm.First(&fresh, t.schema.Name, t.key, r.key); err != nil {
		return fresh, err
	}

	r.Value = fresh
	return fresh, nil
}

// Delete removes the record from its table.
func (r *Record[T]) Delete() error {
	t := r.table
	return t.orm.Delete(t.schema.Name, t.key, r.key)
}
