package data

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	_ "modernc.org/sqlite"

	"casting.interimme.net/migrations"
)

func newTestModels(t *testing.T) Models {
	t.Helper()
	c := qt.New(t)

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "casting.sqlite"))
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)

	err = migrations.Up(context.Background(), db, "sqlite")
	c.Assert(err, qt.IsNil)
	return NewModels(db)
}

func TestNamePattern(t *testing.T) {
	c := qt.New(t)
	c.Assert(namePattern("Added Movie"), qt.Equals, "%added movie%")
	c.Assert(namePattern("100%_off"), qt.Equals, `%100\%\_off%`)
	c.Assert(namePattern(`a\b`), qt.Equals, `%a\\b%`)
	c.Assert(namePattern(""), qt.Equals, "%%")
	c.Assert(namePattern("ÉCOLE"), qt.Equals, "%école%")
}

func TestSearchFoldFunction(t *testing.T) {
	c := qt.New(t)
	models := newTestModels(t)

	var folded string
	err := models.Movies.DB.QueryRowContext(context.Background(), `SELECT search_fold($1)`, "ÉCOLE Ünïcode ΣΑΣ").Scan(&folded)
	c.Assert(err, qt.IsNil)
	c.Assert(folded, qt.Equals, fold("ÉCOLE Ünïcode ΣΑΣ"))
	c.Assert(folded, qt.Equals, "école ünïcode σασ")

	var null sql.NullString
	err = models.Movies.DB.QueryRowContext(context.Background(), `SELECT search_fold(NULL)`).Scan(&null)
	c.Assert(err, qt.IsNil)
	c.Assert(null.Valid, qt.IsFalse)
}
