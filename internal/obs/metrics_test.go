package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                         "/",
		"/metrics":                 "/metrics",
		"/v1/products/abc":         "/v1/products/:id",
		"/v1/users/01ABC":          "/v1/users/:id",
		"/v1/reviews/42":           "/v1/reviews/:id",
		"/v1/auth/signin":          "/v1/auth/signin",
		"/v1/auth/refresh?redir=1": "/v1/auth/refresh",
		"/v1/products/abc/images":  "/v1/products/abc/images",
		"/v1/transactions/tx-9":    "/v1/transactions/:id",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
