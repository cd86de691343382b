package postgres

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/emeraldlinks/slintrust"
	"gorm.io/datatypes"
)

// An Updates is a map of key-value pairs where key is the database column and the value is the data.
type Updates map[string]any

// Valid asserts the Updates sets at least one column.
func (u Updates) Valid() error {
	if len(u) == 0 {
		return fmt.Errorf("%w: no columns set", slintrust.ErrMissingData)
	}

	return nil
}

// Columns returns the column names set in Updates, sorted,
// so statements built from an Updates render deterministically.
func (u Updates) Columns() []string {
	cols := make([]string, 0, len(u))
	for k := range u {
		cols = append(cols, k)
	}
	sort.Strings(cols)

	return cols
}

// StripNils removes all entries from the map where the value resolves to nil, i.e. NULL.
func (u Updates) StripNils() {
	for k, v := range u {
		switch t := v.(type) {
		case nil:
			delete(u, k)

		case datatypes.JSON:
			if t == nil || bytes.Equal([]byte(t), []byte(json.RawMessage(`null`))) {
				delete(u, k)
			}

		case driver.Valuer:
			val, err := t.Value()
			if err != nil || val == nil {
				delete(u, k)
			}
		}
	}
}
