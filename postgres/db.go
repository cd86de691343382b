package postgres

import (
	"database/sql"
	"fmt"

	"github.com/emeraldlinks/slintrust"
	"gorm.io/gorm"
)

type DB struct {
	// *gorm.DB's methods are generally unsafe to use directly.
	// Some are not thread-safe and mutate the state of the *gorm.DB backing DB.
	// DB only calls methods creating a fresh statement,
	// so a single *DB can serve concurrent callers.
	db *gorm.DB
}

// NewDB constructs a *DB from a *gorm.DB.
func NewDB(db *gorm.DB) *DB { return &DB{db: db} }

// DB exposes the underlying *gorm.DB backing DB.
//
// NB: use in exceptional circumstances only.
func (db *DB) DB() *gorm.DB { return db.db }

// Debug prints the current query to the logger.
func (db *DB) Debug() *DB { return &DB{db: db.db.Debug()} }

// Close closes the connection pool backing DB.
func (db *DB) Close() error {
	sqlDB, err := db.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %s", slintrust.ErrUnexpected, err)
	}

	return sqlDB.Close()
}

// Exec executes SQL query sql, passing values to it.
//
// If the query executed does not affect any records, Exec returns ErrNotFound.
// There are many use cases where the caller ought to specifically ignore this error,
// since the execution may not change existing records.
//
// Exec does not write any data resulting from the query into Go values.
func (db *DB) Exec(sql string, values ...any) error {
	if db.db.Error != nil {
		return db.db.Error
	}

	res := db.db.Exec(sql, values...)
	if res.Error != nil {
		return translate(res.Error)
	}

	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: exec failed to affect any rows", slintrust.ErrNotFound)
	}

	return nil
}

// Raw executes sql, passing values to it, and scans the results into dest.
//
// Raw places no expectation on the number of rows the query matches;
// a SELECT matching nothing leaves dest untouched and returns no error.
func (db *DB) Raw(dest any, sql string, values ...any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %T cannot be scanned into", slintrust.ErrNotValid, dest)
		}
	}()

	if db.db.Error != nil {
		return db.db.Error
	}

	if err := db.db.Raw(sql, values...).Scan(dest).Error; err != nil {
		return translate(err)
	}

	return nil
}

// Query starts a [*Builder] for the named table, bound to this *DB.
func (db *DB) Query(table string) *Builder {
	b := NewBuilder(table)
	b.db = db
	return b
}

// **************************************************************************
// TRANSACTION METHODS
//
// These methods control database transactions.
// **************************************************************************

// Begin initializes a database transaction.
func (db *DB) Begin(opts ...*sql.TxOptions) *DB {
	return &DB{db: db.db.Begin(opts...)}
}

// Commit completes the current transaction,
// applying any state changes and making them visible to other database connections.
func (db *DB) Commit() error {
	if db.db.Error != nil {
		return db.db.Error
	}

	if err := db.db.Commit().Error; err != nil {
		return fmt.Errorf("%w: failed committing tx: %s", slintrust.ErrUnexpected, err)
	}

	return nil
}

// Rollback reverts the current transaction.
// If no transaction is open, Rollback returns an error.
func (db *DB) Rollback() error {
	if err := db.db.Rollback().Error; err != nil {
		return fmt.Errorf("%w: failed rolling back tx: %s", slintrust.ErrUnexpected, err)
	}

	return nil
}
