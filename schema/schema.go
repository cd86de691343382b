package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/emeraldlinks/slintrust"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Tabler names the database table backing a model,
// overriding the name derived from the struct name.
type Tabler interface {
	TableName() string
}

// A Column describes a single database column derived from a struct field.
type Column struct {
	Name    string
	SQLType string
	Primary bool
	Unique  bool
	NotNull bool
	UUID    bool

	// index is the reflect field index path on the model struct,
	// including steps through embedded structs.
	index []int
}

// A Table describes the database table derived from a model struct.
type Table struct {
	Name    string
	Columns []Column

	goType reflect.Type
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	nullTimeType = reflect.TypeOf(sql.NullTime{})
	jsonType     = reflect.TypeOf(datatypes.JSON{})
)

// Parse derives a *Table from model.
//
// The table name comes from [Tabler] when model implements it,
// otherwise the snake_case of the struct name.
// Each exported field becomes a column named by its "db" tag,
// or the snake_case of the field name when the tag is absent.
// Embedded structs are flattened into the parent table.
//
// The "slint" tag configures column behavior:
//   - uuid: the column is the primary key and a v4 UUID is generated
//     on insert when the field is its zero value; string fields only
//   - primary: the column is the primary key
//   - unique: the column carries a UNIQUE constraint
//   - "-": the field is skipped, e.g. association fields
func Parse(model any) (*Table, error) {
	typ := reflect.TypeOf(model)
	if typ == nil {
		return nil, fmt.Errorf("%w: model must be a struct, not nil", slintrust.ErrNotValid)
	}

	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: model must be a struct, not %s", slintrust.ErrNotValid, typ.Kind())
	}

	t := &Table{Name: tableName(model, typ), goType: typ}
	for _, field := range reflect.VisibleFields(typ) {
		if field.Anonymous {
			// A pointer embed promotes fields that cannot be read
			// off the model when the pointer is nil.
			if field.Type.Kind() == reflect.Pointer {
				return nil, fmt.Errorf("%w: embed %s.%s by value, not by pointer", slintrust.ErrNotValid, typ.Name(), field.Name)
			}
			continue
		}

		if !field.IsExported() {
			continue
		}

		opts := strings.Split(field.Tag.Get("slint"), ",")
		if opts[0] == "-" {
			continue
		}

		col := Column{Name: columnName(field), NotNull: true}
		for _, opt := range opts {
			switch opt {
			case "uuid":
				col.UUID = true
				col.Primary = true
			case "primary":
				col.Primary = true
			case "unique":
				col.Unique = true
			}
		}

		if col.UUID && field.Type.Kind() != reflect.String {
			return nil, fmt.Errorf("%w: uuid column %q must be a string field", slintrust.ErrNotValid, col.Name)
		}

		sqlType, notNull, err := sqlTypeOf(field.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s.%s", err, typ.Name(), field.Name)
		}

		col.SQLType = sqlType
		col.NotNull = notNull
		col.index = field.Index
		t.Columns = append(t.Columns, col)
	}

	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable columns", slintrust.ErrNotValid, typ.Name())
	}

	return t, nil
}

// Primary returns the primary key column, if the table declares one.
func (t *Table) Primary() (Column, bool) {
	for _, col := range t.Columns {
		if col.Primary {
			return col, true
		}
	}

	return Column{}, false
}

// Column returns the named column, if the table declares it.
func (t *Table) Column(name string) (Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}

	return Column{}, false
}

// Values pulls the column names and bound values off item in schema order.
//
// Item must be the model type the *Table was parsed from, or a pointer to it.
func (t *Table) Values(item any) ([]string, []any, error) {
	val := reflect.ValueOf(item)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}

	if !val.IsValid() || val.Type() != t.goType {
		return nil, nil, fmt.Errorf("%w: %T is not a %s", slintrust.ErrNotValid, item, t.goType)
	}

	cols := make([]string, len(t.Columns))
	vals := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		cols[i] = col.Name
		vals[i] = val.FieldByIndex(col.index).Interface()
	}

	return cols, vals, nil
}

// InsertValues behaves like Values but generates a v4 UUID
// for any uuid column whose value is the zero string.
func (t *Table) InsertValues(item any) ([]string, []any, error) {
	cols, vals, err := t.Values(item)
	if err != nil {
		return nil, nil, err
	}

	for i, col := range t.Columns {
		if !col.UUID {
			continue
		}

		// Parse guarantees uuid columns are string-kinded;
		// going through reflect catches named string types too.
		if v := reflect.ValueOf(vals[i]); v.String() == "" {
			vals[i] = reflect.ValueOf(uuid.NewString()).Convert(v.Type()).Interface()
		}
	}

	return cols, vals, nil
}

func tableName(model any, typ reflect.Type) string {
	if tabler, ok := model.(Tabler); ok {
		return tabler.TableName()
	}

	return toSnake(typ.Name())
}

func columnName(field reflect.StructField) string {
	if tag := field.Tag.Get("db"); tag != "" {
		return tag
	}

	return toSnake(field.Name)
}

// sqlTypeOf maps a Go type onto its PostgreSQL column type.
// Pointer and sql.Null* fields drop the NOT NULL constraint.
func sqlTypeOf(typ reflect.Type) (string, bool, error) {
	notNull := true
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
		notNull = false
	}

	switch typ {
	case timeType:
		return "TIMESTAMPTZ", notNull, nil
	case nullTimeType:
		return "TIMESTAMPTZ", false, nil
	case jsonType:
		return "JSONB", notNull, nil
	case reflect.TypeOf(sql.NullString{}):
		return "TEXT", false, nil
	case reflect.TypeOf(sql.NullBool{}):
		return "BOOLEAN", false, nil
	case reflect.TypeOf(sql.NullInt32{}), reflect.TypeOf(sql.NullInt64{}):
		return "BIGINT", false, nil
	case reflect.TypeOf(sql.NullFloat64{}):
		return "DOUBLE PRECISION", false, nil
	}

	switch typ.Kind() {
	case reflect.String:
		return "TEXT", notNull, nil

	case reflect.Bool:
		return "BOOLEAN", notNull, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "BIGINT", notNull, nil

	case reflect.Float32, reflect.Float64:
		return "DOUBLE PRECISION", notNull, nil

	case reflect.Slice:
		if typ.Elem().Kind() == reflect.Uint8 {
			return "BYTEA", notNull, nil
		}
	}

	return "", false, fmt.Errorf("%w: unsupported column type %s", slintrust.ErrNotValid, typ)
}

func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			// Break words on lower-to-upper transitions and at the end of
			// initialisms, so AccountID becomes account_id.
			prevLower := i > 0 && unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	return b.String()
}
