package data

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

// searchFold is the SQL function both sides of a name search are folded with.
// PostgreSQL gets it from a migration; SQLite's own LOWER only folds ASCII,
// so the SQLite driver gets a Go implementation.
const searchFold = "search_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(searchFold, 1, sqliteSearchFold)
}

// fold is applied to search terms and, through SQLite, to stored names.
func fold(s string) string {
	return strings.ToLower(s)
}

func sqliteSearchFold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return fold(v), nil
	case []byte:
		return fold(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument type %T", searchFold, v)
	}
}
