package postgres

import (
	"fmt"
	"strings"
)

// The renderers below produce statements for [*DB.Exec] and [*DB.Raw],
// which bind through gorm. gorm expects ? placeholders in raw statements
// and numbers them for the driver itself.

// placeholders renders a parameter list of n placeholders.
func placeholders(n int) []string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "?"
	}

	return ps
}

// InsertSQL renders an INSERT statement for the named columns of table.
func InsertSQL(table string, columns []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ","),
		strings.Join(placeholders(len(columns)), ","),
	)
}

// UpdateSQL renders an UPDATE statement setting the named columns of table
// on records matching keyColumn.
// The key value binds to the placeholder after all SET placeholders.
func UpdateSQL(table string, columns []string, keyColumn string) string {
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = ?"
	}

	return fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = ?",
		table,
		strings.Join(sets, ", "),
		keyColumn,
	)
}

// DeleteSQL renders a DELETE statement for records of table matching column.
func DeleteSQL(table, column string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column)
}

// ExistsSQL renders an existence check for records of table matching column.
func ExistsSQL(table, column string) string {
	return fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = ?)", table, column)
}
