package postgres

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/emeraldlinks/slintrust"
	"gorm.io/gorm"
)

var (
	// These errors originate from the std lib database/sql package.
	//
	// Cf., https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go
	errSQLScan          = regexp.MustCompile(`sql: expected \d+ destination arguments in Scan, not \d+`)
	errSQLUnaddressable = regexp.MustCompile(`sql: Scan error on column index \d+, name "\w+": destination not a pointer`)

	// errSQLSyntax is a very loose aggregation of error codes
	// originating from PostgreSQL itself
	// that are some sort of syntax issue in the statement,
	// a reference to a missing table, or a datatype mismatch.
	//
	// Cf., https://www.postgresql.org/docs/current/errcodes-appendix.html
	errSQLSyntax = regexp.MustCompile(`SQLSTATE (42601|42P01|22P02)`)

	errFKViolation   = regexp.MustCompile(`SQLSTATE (23503)`)
	errUniqViolation = regexp.MustCompile(`SQLSTATE (23505)`)
)

// translate maps an error surfaced by the driver
// into the slintrust sentinel error vocabulary.
func translate(err error) error {
	switch {
	case err == nil:
		return nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w", slintrust.ErrNotFound)

	case errUniqViolation.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", slintrust.ErrExists, err)

	case errFKViolation.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", slintrust.ErrNotValid, err)

	case errSQLSyntax.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", slintrust.ErrNotValid, err)

	case errSQLScan.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", slintrust.ErrNotValid, err)

	case errSQLUnaddressable.MatchString(err.Error()):
		return fmt.Errorf("%w: %s", slintrust.ErrUnaddressable, err)

	default:
		return fmt.Errorf("%w: %s", slintrust.ErrUnexpected, err)
	}
}
