package auth

import (
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/pascaldekloe/jwt"
)

func TestCheckPermission(t *testing.T) {
	tests := []struct {
		name   string
		set    map[string]interface{}
		status int
	}{
		{name: "granted", set: map[string]interface{}{"permissions": []interface{}{"get:movies", "post:movies"}}},
		{name: "no claim", set: map[string]interface{}{"sub": "x"}, status: http.StatusBadRequest},
		{name: "not a list", set: map[string]interface{}{"permissions": "post:movies"}, status: http.StatusBadRequest},
		{name: "empty list", set: map[string]interface{}{"permissions": []interface{}{}}, status: http.StatusForbidden},
		{name: "other permission", set: map[string]interface{}{"permissions": []interface{}{"get:movies"}}, status: http.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)
			err := CheckPermission(&jwt.Claims{Set: test.set}, "post:movies")
			if test.status == 0 {
				c.Assert(err, qt.IsNil)
				return
			}
			assertAuthError(c, err, CodeInvalidPermission, test.status)
		})
	}
}

func TestCheckPermissionNilClaims(t *testing.T) {
	c := qt.New(t)
	assertAuthError(c, CheckPermission(nil, "get:movies"), CodeInvalidPermission, http.StatusBadRequest)
}

func TestPermissionsInclude(t *testing.T) {
	c := qt.New(t)
	p := Permissions{"get:actors", "patch:actors"}
	c.Assert(p.Include("patch:actors"), qt.IsTrue)
	c.Assert(p.Include("patch:movies"), qt.IsFalse)
	c.Assert(Permissions(nil).Include("get:actors"), qt.IsFalse)
}
