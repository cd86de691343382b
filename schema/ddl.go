package schema

import "strings"

// CreateSQL renders the idempotent DDL statement creating the table.
//
// Column constraints are rendered in PRIMARY KEY, UNIQUE, NOT NULL order.
func (t *Table) CreateSQL() string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		var def strings.Builder
		def.WriteString(c.Name)
		def.WriteString(" ")
		def.WriteString(c.SQLType)
		if c.Primary {
			def.WriteString(" PRIMARY KEY")
		}
		if c.Unique {
			def.WriteString(" UNIQUE")
		}
		if c.NotNull {
			def.WriteString(" NOT NULL")
		}
		cols[i] = def.String()
	}

	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (" + strings.Join(cols, ", ") + ")"
}
