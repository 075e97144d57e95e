package auth

import "testing"

func TestAllowed(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		method string
		path   string
		want   bool
	}{
		{"customer lists products", RoleCustomer, "GET", "/v1/products", true},
		{"customer reads one product", RoleCustomer, "GET", "/v1/products/p-1", true},
		{"customer lists discounts", RoleCustomer, "GET", "/v1/discounts", true},
		{"customer reads product reviews", RoleCustomer, "GET", "/v1/reviews/p-1", true},
		{"customer posts a review", RoleCustomer, "POST", "/v1/reviews", true},
		{"customer checks out", RoleCustomer, "POST", "/v1/transactions", true},
		{"customer reads own profile", RoleCustomer, "GET", "/v1/users/me", true},
		{"customer inspects session", RoleCustomer, "GET", "/v1/auth/session", true},
		{"customer logs out", RoleCustomer, "POST", "/v1/auth/logout", true},

		{"customer cannot create products", RoleCustomer, "POST", "/v1/products", false},
		{"customer cannot delete products", RoleCustomer, "DELETE", "/v1/products/p-1", false},
		{"customer cannot list users", RoleCustomer, "GET", "/v1/users", false},
		{"customer cannot reach admin overview", RoleCustomer, "GET", "/v1/admin/overview", false},
		{"prefix does not match bare root", RoleCustomer, "GET", "/v1/products-archive", false},

		{"admin deletes products", RoleAdmin, "DELETE", "/v1/products/p-1", true},
		{"admin lists users", RoleAdmin, "GET", "/v1/users", true},
		{"admin reaches overview", RoleAdmin, "GET", "/v1/admin/overview", true},
		{"admin wildcard stops at the api root", RoleAdmin, "GET", "/internal/debug", false},

		{"unknown role is denied everywhere", Role("auditor"), "GET", "/v1/products", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Allowed(tc.role, tc.method, tc.path); got != tc.want {
				t.Fatalf("Allowed(%s, %s, %s) = %v, want %v", tc.role, tc.method, tc.path, got, tc.want)
			}
		})
	}
}
