package postgres

import (
	"fmt"
	"strings"

	"github.com/emeraldlinks/slintrust"
)

// A cond is one accumulated WHERE or HAVING condition.
// Its placeholder number is assigned when the query renders.
type cond struct {
	column string
	op     string
	value  any
}

// A Builder accumulates query clauses and renders them
// into a single parameterized SELECT statement.
//
// Chaining methods mutate and return the same *Builder;
// a Builder describes one query and is not safe to fork or share.
// The first invalid clause puts the Builder in an error state,
// surfaced by SQL and every finisher method.
type Builder struct {
	db       *DB
	table    string
	selects  []string
	joins    []string
	wheres   []cond
	groups   []string
	havings  []cond
	order    string
	limit    *int
	offset   *int
	distinct bool
	err      error
}

// NewBuilder constructs a *Builder querying table.
//
// A Builder constructed directly renders SQL only;
// use [*DB.Query] for one whose finishers can execute.
func NewBuilder(table string) *Builder {
	return &Builder{table: table, selects: []string{"*"}}
}

// **************************************************************************
// QUERY BUILDING METHODS
//
// Query building methods add clauses to the query
// until a finisher method is called.
// **************************************************************************

// Select replaces the selected columns, defaulting to *.
func (b *Builder) Select(columns ...string) *Builder {
	if len(columns) == 0 {
		return b.setErr(fmt.Errorf("%w: select requires at least one column", slintrust.ErrNotValid))
	}

	b.selects = columns
	return b
}

// Where adds a condition to the current query as a WHERE or AND clause.
// The value binds to a numbered placeholder.
func (b *Builder) Where(column, op string, value any) *Builder {
	if column == "" || op == "" {
		return b.setErr(fmt.Errorf("%w: where requires a column and an operator", slintrust.ErrNotValid))
	}

	b.wheres = append(b.wheres, cond{column: column, op: op, value: value})
	return b
}

// Like adds a LIKE condition, wrapping pattern in % wildcards automatically.
func (b *Builder) Like(column, pattern string) *Builder {
	return b.Where(column, "LIKE", "%"+pattern+"%")
}

// ILike adds a case-insensitive ILIKE condition,
// wrapping pattern in % wildcards automatically.
func (b *Builder) ILike(column, pattern string) *Builder {
	return b.Where(column, "ILIKE", "%"+pattern+"%")
}

// Join adds an inner JOIN with table on left = right.
func (b *Builder) Join(table, left, right string) *Builder {
	b.joins = append(b.joins, fmt.Sprintf("JOIN %s ON %s = %s", table, left, right))
	return b
}

// LeftJoin adds a LEFT JOIN with table on left = right.
func (b *Builder) LeftJoin(table, left, right string) *Builder {
	b.joins = append(b.joins, fmt.Sprintf("LEFT JOIN %s ON %s = %s", table, left, right))
	return b
}

// GroupBy applies a GROUP BY clause over the named columns.
func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groups = append(b.groups, columns...)
	return b
}

// Having adds a condition to the HAVING clause.
// HAVING placeholders number after all WHERE placeholders.
func (b *Builder) Having(column, op string, value any) *Builder {
	if column == "" || op == "" {
		return b.setErr(fmt.Errorf("%w: having requires a column and an operator", slintrust.ErrNotValid))
	}

	b.havings = append(b.havings, cond{column: column, op: op, value: value})
	return b
}

// OrderBy applies an ORDER BY clause to the current query.
func (b *Builder) OrderBy(column, direction string) *Builder {
	b.order = strings.TrimSpace(column + " " + direction)
	return b
}

// Limit applies a LIMIT clause to the current query.
//
// PostgreSQL errors on negative numbers:
//
//	ERROR:  LIMIT must not be negative
//
// Limit mirrors PostgreSQL and errors eagerly.
func (b *Builder) Limit(limit int) *Builder {
	if limit < 0 {
		return b.setErr(fmt.Errorf("%w: limit must not be negative", slintrust.ErrNotValid))
	}

	b.limit = &limit
	return b
}

// Offset applies an OFFSET clause to the current query.
// Like Limit, a negative offset errors eagerly.
func (b *Builder) Offset(offset int) *Builder {
	if offset < 0 {
		return b.setErr(fmt.Errorf("%w: offset must not be negative", slintrust.ErrNotValid))
	}

	b.offset = &offset
	return b
}

// Distinct adds a DISTINCT clause to the current query.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// SQL renders the accumulated clauses into a parameterized statement
// and the values bound to its numbered placeholders.
//
// The rendered statement numbers placeholders $1..$n for the driver.
// Finisher methods bind through gorm instead, which expects ?
// placeholders in raw statements and numbers them itself.
func (b *Builder) SQL() (string, []any, error) {
	return b.render(strings.Join(b.selects, ", "), true, true)
}

func (b *Builder) render(selects string, tail, numbered bool) (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}

	if b.table == "" {
		return "", nil, fmt.Errorf("%w: no table to query", slintrust.ErrMissingData)
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	if b.distinct {
		sql.WriteString("DISTINCT ")
	}
	sql.WriteString(selects)
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	for _, join := range b.joins {
		sql.WriteString(" ")
		sql.WriteString(join)
	}

	placeholder := func(n int) string {
		if numbered {
			return fmt.Sprintf("$%d", n)
		}
		return "?"
	}

	params := make([]any, 0, len(b.wheres)+len(b.havings))
	if len(b.wheres) > 0 {
		conds := make([]string, len(b.wheres))
		for i, c := range b.wheres {
			conds[i] = fmt.Sprintf("%s %s %s", c.column, c.op, placeholder(len(params)+1))
			params = append(params, c.value)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(conds, " AND "))
	}

	if len(b.groups) > 0 {
		sql.WriteString(" GROUP BY ")
		sql.WriteString(strings.Join(b.groups, ", "))
	}

	if len(b.havings) > 0 {
		conds := make([]string, len(b.havings))
		for i, c := range b.havings {
			conds[i] = fmt.Sprintf("%s %s %s", c.column, c.op, placeholder(len(params)+1))
			params = append(params, c.value)
		}
		sql.WriteString(" HAVING ")
		sql.WriteString(strings.Join(conds, " AND "))
	}

	if !tail {
		return sql.String(), params, nil
	}

	if b.order != "" {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(b.order)
	}

	if b.limit != nil {
		fmt.Fprintf(&sql, " LIMIT %d", *b.limit)
	}

	if b.offset != nil {
		fmt.Fprintf(&sql, " OFFSET %d", *b.offset)
	}

	return sql.String(), params, nil
}

// **************************************************************************
// FINISHER METHODS
//
// These methods close out a current query, executing it.
// All finisher methods are terminal and cannot be chained.
// They return any errors accumulated while building the query
// or occurring when executing it.
// **************************************************************************

// Find retrieves all records matching the current query
// and scans them into dest, almost always a pointer to a slice.
//
// A query matching nothing leaves dest untouched and returns no error.
func (b *Builder) Find(dest any) error {
	_, err := b.scan(dest)
	return err
}

// First retrieves a single record matching the current query,
// forcing LIMIT 1, and scans it into dest.
//
// If no match is found, First returns ErrNotFound.
func (b *Builder) First(dest any) error {
	rows, err := b.Limit(1).scan(dest)
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("%w", slintrust.ErrNotFound)
	}

	return nil
}

func (b *Builder) scan(dest any) (rows int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T cannot be scanned into", slintrust.ErrNotValid, dest)
		}
	}()

	sql, params, err := b.executable()
	if err != nil {
		return 0, err
	}

	res := b.db.db.Raw(sql, params...).Scan(dest)
	if res.Error != nil {
		return 0, translate(res.Error)
	}

	return res.RowsAffected, nil
}

// Count returns the number of records matching the current query.
// Any ORDER BY, LIMIT and OFFSET clauses are ignored.
func (b *Builder) Count() (int64, error) {
	if err := b.bound(); err != nil {
		return 0, err
	}

	sql, params, err := b.render("COUNT(*)", false, false)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := b.db.Raw(&count, sql, params...); err != nil {
		return 0, err
	}

	return count, nil
}

// Exists asserts whether any record matches the current query.
func (b *Builder) Exists() (bool, error) {
	if err := b.bound(); err != nil {
		return false, err
	}

	sql, params, err := b.render("1", false, false)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := b.db.Raw(&exists, "SELECT EXISTS("+sql+")", params...); err != nil {
		return false, err
	}

	return exists, nil
}

func (b *Builder) executable() (string, []any, error) {
	if err := b.bound(); err != nil {
		return "", nil, err
	}

	return b.render(strings.Join(b.selects, ", "), true, false)
}

func (b *Builder) bound() error {
	if b.err != nil {
		return b.err
	}

	if b.db == nil {
		return fmt.Errorf("%w: builder is not bound to a database", slintrust.ErrNotConnected)
	}

	return nil
}

func (b *Builder) setErr(err error) *Builder {
	if b.err == nil {
		b.err = err
	}

	return b
}
