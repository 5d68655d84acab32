package validator

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestValidatorCheck(t *testing.T) {
	c := qt.New(t)
	v := New()
	v.Check(true, "name", "must be provided")
	c.Assert(v.Valid(), qt.IsTrue)

	v.Check(false, "name", "must be provided")
	v.Check(false, "name", "second message is ignored")
	c.Assert(v.Errors, qt.DeepEquals, map[string]string{"name": "must be provided"})
}

func TestErr(t *testing.T) {
	c := qt.New(t)
	flag := func(key, message string) string { return "--" + key + " " + message }

	v := New()
	c.Assert(v.Err("invalid: ", flag), qt.IsNil)

	v.AddError("port", "must be positive")
	v.AddError("env", "must be known")
	c.Assert(v.Problems(flag), qt.DeepEquals, []string{"--env must be known", "--port must be positive"})
	c.Assert(v.Err("invalid: ", flag), qt.ErrorMatches, "invalid: --env must be known; --port must be positive")
}

func TestIn(t *testing.T) {
	c := qt.New(t)
	c.Assert(In("sqlite", "postgres", "sqlite"), qt.IsTrue)
	c.Assert(In("mysql", "postgres", "sqlite"), qt.IsFalse)
	c.Assert(In("x"), qt.IsFalse)
}
