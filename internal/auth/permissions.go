package auth

import "strings"

// Grant allows one role to call a method on a route. The table is read-only
// and consulted by the authorization gate; it never changes at runtime.
type Grant struct {
	Role    Role
	Method  string // "*" matches any method
	Pattern string // exact path, or prefix match when ending in "/*"
}

var grants = []Grant{
	// Customers browse the catalog and manage their own session.
	{RoleCustomer, "GET", "/v1/products"},
	{RoleCustomer, "GET", "/v1/products/*"},
	{RoleCustomer, "GET", "/v1/discounts"},
	{RoleCustomer, "GET", "/v1/reviews/*"},
	{RoleCustomer, "POST", "/v1/reviews"},
	{RoleCustomer, "POST", "/v1/transactions"},
	{RoleCustomer, "GET", "/v1/users/me"},
	{RoleCustomer, "GET", "/v1/auth/session"},
	{RoleCustomer, "POST", "/v1/auth/logout"},

	// Admins additionally manage the catalog and reach admin surfaces.
	{RoleAdmin, "*", "/v1/*"},
}

// Allowed reports whether the grant table contains an entry for the tuple.
// Absence of a grant is a deny.
func Allowed(role Role, method, path string) bool {
	for _, g := range grants {
		if g.Role != role {
			continue
		}
		if g.Method != "*" && g.Method != method {
			continue
		}
		if matchPattern(g.Pattern, path) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(path, prefix+"/")
	}
	return pattern == path
}
