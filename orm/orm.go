package orm

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/logger"
	"github.com/emeraldlinks/slintrust/postgres"
	"github.com/emeraldlinks/slintrust/schema"
)

// An ORM holds the connection to the underlying database
// and the registry of table schemas derived from model structs.
//
// Construct one with [New], register models, then [ORM.Connect].
// An ORM is safe for concurrent use once connected.
type ORM struct {
	cfg        *postgres.CxnConfig
	env        slintrust.Environment
	log        logger.Logger
	migrations []postgres.Migration

	mu     sync.RWMutex
	db     *postgres.DB
	tables map[string]*schema.Table
}

// An Option configures an ORM when constructing a new one.
type Option func(*ORM)

// WithEnv sets the environment the ORM operates in,
// steering .env loading, query log coloring and test database handling.
func WithEnv(env slintrust.Environment) Option {
	return func(o *ORM) { o.env = env }
}

// WithLogger sets the logger the ORM reports connection and migration activity to.
func WithLogger(l logger.Logger) Option {
	return func(o *ORM) { o.log = l }
}

// WithMigrations appends custom keyed migrations
// run after the schema DDL when connecting.
func WithMigrations(migrations ...postgres.Migration) Option {
	return func(o *ORM) { o.migrations = append(o.migrations, migrations...) }
}

// New constructs an ORM from the connection config.
// Nothing touches the database until [ORM.Connect].
func New(cfg *postgres.CxnConfig, opts ...Option) *ORM {
	o := &ORM{
		cfg:    cfg,
		env:    slintrust.Development,
		log:    logger.New(),
		tables: make(map[string]*schema.Table),
	}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register derives a table schema from each model and adds it to the registry.
// Registering a model whose table name is already present replaces the earlier entry.
//
// Models registered after [ORM.Connect] get their DDL applied on the next [ORM.Migrate].
func (o *ORM) Register(models ...any) error {
	for _, model := range models {
		if _, err := o.register(model); err != nil {
			return err
		}
	}

	return nil
}

func (o *ORM) register(model any) (*schema.Table, error) {
	t, err := schema.Parse(model)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.tables[t.Name] = t
	o.mu.Unlock()

	return t, nil
}

// Connect opens the database connection, applies the DDL for every
// registered schema, and then runs any custom migrations, so migrations
// can alter registered tables on a fresh database.
// Connect is a no-op when already connected.
func (o *ORM) Connect() error {
	o.mu.Lock()
	if o.db != nil {
		o.mu.Unlock()
		return nil
	}

	db, err := postgres.Connect(o.cfg, nil, o.env)
	if err != nil {
		o.mu.Unlock()
		o.log.Error("failed connecting to database", &logger.LogContext{Error: err})
		return err
	}

	o.db = db
	o.mu.Unlock()

	o.log.Info("connected to database", nil)

	if err := o.Migrate(); err != nil {
		return err
	}

	if err := postgres.MigrateUp(db.DB(), o.migrations); err != nil {
		o.log.Error("failed running migrations", &logger.LogContext{Error: err})
		return err
	}

	return nil
}

// Migrate applies the idempotent CREATE TABLE statement
// for every registered schema, in table name order.
func (o *ORM) Migrate() error {
	db, err := o.database()
	if err != nil {
		return err
	}

	o.mu.RLock()
	names := make([]string, 0, len(o.tables))
	for name := range o.tables {
		names = append(names, name)
	}
	sort.Strings(names)

	ddl := make([]string, len(names))
	for i, name := range names {
		ddl[i] = o.tables[name].CreateSQL()
	}
	o.mu.RUnlock()

	for i, stmt := range ddl {
		err := db.Exec(stmt)
		// CREATE TABLE IF NOT EXISTS affects no rows; that is not a failure.
		if err != nil && !errors.Is(err, slintrust.ErrNotFound) {
			o.log.Error("failed migrating table", &logger.LogContext{
				Error: err,
				Data:  map[string]any{"table": names[i]},
			})
			return err
		}

		o.log.Debug("migrated table", &logger.LogContext{Data: map[string]any{"table": names[i]}})
	}

	return nil
}

// Close closes the underlying connection pool.
func (o *ORM) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.db == nil {
		return nil
	}

	err := o.db.Close()
	o.db = nil

	return err
}

// DB exposes the connected *postgres.DB.
//
// NB: use in exceptional circumstances only.
func (o *ORM) DB() *postgres.DB {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.db
}

// **************************************************************************
// TABLE OPERATIONS
//
// These methods resolve the named table in the schema registry
// before touching the database; an unregistered table is ErrNotFound
// and an unknown column is ErrNotValid, never generated SQL.
// **************************************************************************

// Insert inserts item into the named table,
// generating a v4 UUID for any zero-valued uuid column.
func (o *ORM) Insert(table string, item any) error {
	t, db, err := o.resolve(table)
	if err != nil {
		return err
	}

	cols, vals, err := t.InsertValues(item)
	if err != nil {
		return err
	}

	return db.Exec(postgres.InsertSQL(t.Name, cols), vals...)
}

// First fetches the first record of the named table where column equals value,
// scanning it into dest. If no record matches, First returns ErrNotFound.
func (o *ORM) First(dest any, table, column string, value any) error {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return err
	}

	return db.Query(t.Name).Where(column, "=", value).First(dest)
}

// Find fetches every record of the named table where column equals value,
// scanning them into dest. No matches leave dest untouched without error.
func (o *ORM) Find(dest any, table, column string, value any) error {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return err
	}

	return db.Query(t.Name).Where(column, "=", value).Find(dest)
}

// All fetches every record of the named table into dest.
// An empty table leaves dest untouched without error.
func (o *ORM) All(dest any, table string) error {
	t, db, err := o.resolve(table)
	if err != nil {
		return err
	}

	return db.Query(t.Name).Find(dest)
}

// Update replaces every schema column of the records matching column = value
// with the data on item.
func (o *ORM) Update(table, column string, value any, item any) error {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return err
	}

	cols, vals, err := t.Values(item)
	if err != nil {
		return err
	}

	return db.Exec(postgres.UpdateSQL(t.Name, cols, column), append(vals, value)...)
}

// UpdateColumns sets only the columns named in updates
// on the records matching column = value.
func (o *ORM) UpdateColumns(table, column string, value any, updates postgres.Updates) error {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return err
	}

	if err := updates.Valid(); err != nil {
		return err
	}

	cols := updates.Columns()
	vals := make([]any, 0, len(cols)+1)
	for _, c := range cols {
		if _, ok := t.Column(c); !ok {
			return fmt.Errorf("%w: table %s has no column %q", slintrust.ErrNotValid, t.Name, c)
		}
		vals = append(vals, updates[c])
	}

	return db.Exec(postgres.UpdateSQL(t.Name, cols, column), append(vals, value)...)
}

// Delete removes the records of the named table matching column = value.
// If nothing matches, Delete returns ErrNotFound.
func (o *ORM) Delete(table, column string, value any) error {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return err
	}

	return db.Exec(postgres.DeleteSQL(t.Name, column), value)
}

// Exists asserts whether any record of the named table matches column = value.
func (o *ORM) Exists(table, column string, value any) (bool, error) {
	t, db, err := o.resolveColumn(table, column)
	if err != nil {
		return false, err
	}

	var exists bool
	if err := db.Raw(&exists, postgres.ExistsSQL(t.Name, column), value); err != nil {
		return false, err
	}

	return exists, nil
}

// Exec executes raw SQL against the underlying database.
func (o *ORM) Exec(sql string, values ...any) error {
	db, err := o.database()
	if err != nil {
		return err
	}

	return db.Exec(sql, values...)
}

// Raw executes raw SQL against the underlying database,
// scanning the results into dest.
func (o *ORM) Raw(dest any, sql string, values ...any) error {
	db, err := o.database()
	if err != nil {
		return err
	}

	return db.Raw(dest, sql, values...)
}

// Query starts a [*postgres.Builder] for the named table.
//
// The table is not resolved in the registry;
// the builder queries whatever table it is told to,
// which permits joins and aliases the registry knows nothing about.
func (o *ORM) Query(table string) *postgres.Builder {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.db == nil {
		return postgres.NewBuilder(table)
	}

	return o.db.Query(table)
}

// **************************************************************************
// HELPERS
// **************************************************************************

func (o *ORM) database() (*postgres.DB, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.db == nil {
		return nil, fmt.Errorf("%w: call Connect first", slintrust.ErrNotConnected)
	}

	return o.db, nil
}

func (o *ORM) table(name string) (*schema.Table, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	t, ok := o.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: no schema registered for table %q", slintrust.ErrNotFound, name)
	}

	return t, nil
}

func (o *ORM) resolve(table string) (*schema.Table, *postgres.DB, error) {
	t, err := o.table(table)
	if err != nil {
		return nil, nil, err
	}

	db, err := o.database()
	if err != nil {
		return nil, nil, err
	}

	return t, db, nil
}

func (o *ORM) resolveColumn(table, column string) (*schema.Table, *postgres.DB, error) {
	t, db, err := o.resolve(table)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := t.Column(column); !ok {
		return nil, nil, fmt.Errorf("%w: table %s has no column %q", slintrust.ErrNotValid, t.Name, column)
	}

	return t, db, nil
}
