package auth

import "github.com/pascaldekloe/jwt"

// PermissionsClaim is the custom claim listing the granted permission strings.
const PermissionsClaim = "permissions"

// Permissions represents a slice of permission codes as strings.
type Permissions []string

// Include checks if a specific permission code exists within the Permissions slice.
func (p Permissions) Include(code string) bool {
	for i := range p {
		if code == p[i] {
			return true
		}
	}
	return false
}

// PermissionsFromClaims returns the permission list carried by claims. The
// boolean is false when the claim is absent or is not an array.
func PermissionsFromClaims(claims *jwt.Claims) (Permissions, bool) {
	if claims == nil {
		return nil, false
	}
	raw, ok := claims.Set[PermissionsClaim].([]interface{})
	if !ok {
		return nil, false
	}

	permissions := make(Permissions, 0, len(raw))
	for _, item := range raw {
		if code, ok := item.(string); ok {
			permissions = append(permissions, code)
		}
	}
	return permissions, true
}

// CheckPermission succeeds when claims grant permission.
func CheckPermission(claims *jwt.Claims, permission string) error {
	permissions, ok := PermissionsFromClaims(claims)
	if !ok {
		return errNoPermissions()
	}
	if !permissions.Include(permission) {
		return errDenied()
	}
	return nil
}
