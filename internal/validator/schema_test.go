package validator

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

var actorSchema = MustSchema(
	Field{Name: "name", Kind: String},
	Field{Name: "age", Kind: Integer},
	Field{Name: "gender", Kind: String},
)

func TestCheckJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid []string
	}{
		{name: "valid", body: `{"name":"Jane","age":34,"gender":"female"}`},
		{name: "extra keys allowed", body: `{"name":"Jane","age":34,"gender":"female","agent":"Bob"}`},
		{name: "empty strings pass", body: `{"name":"","age":0,"gender":""}`},
		{name: "empty body", body: ``, invalid: []string{"body"}},
		{name: "malformed", body: `{"name":`, invalid: []string{"body"}},
		{name: "array", body: `[]`, invalid: []string{"body"}},
		{name: "null", body: `null`, invalid: []string{"body"}},
		{name: "missing key", body: `{"name":"Jane","age":34}`, invalid: []string{"body"}},
		{name: "string as integer", body: `{"name":"Jane","age":"34","gender":"female"}`, invalid: []string{"age"}},
		{name: "fractional integer", body: `{"name":"Jane","age":34.5,"gender":"female"}`, invalid: []string{"age"}},
		{name: "number as string", body: `{"name":2,"age":34,"gender":"female"}`, invalid: []string{"name"}},
		{name: "two bad types", body: `{"name":2,"age":34,"gender":false}`, invalid: []string{"gender", "name"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			v := New()
			v.CheckJSON(actorSchema, []byte(test.body))

			var keys []string
			for _, k := range []string{"age", "body", "gender", "name"} {
				if _, ok := v.Errors[k]; ok {
					keys = append(keys, k)
				}
			}
			c.Assert(keys, qt.DeepEquals, test.invalid)
			c.Assert(v.Valid(), qt.Equals, test.invalid == nil)
		})
	}
}

func TestNewSchemaRejectsUnknownKind(t *testing.T) {
	c := qt.New(t)
	_, err := NewSchema(Field{Name: "when", Kind: "date"})
	c.Assert(err, qt.ErrorMatches, `field "when": unsupported kind "date"`)
}
