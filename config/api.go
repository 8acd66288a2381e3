package config

// GetAuthSkipperPaths returns the /api routes that do not require a signed-in customer.
func GetAuthSkipperPaths() []string {
	return []string{
		"/api/auth/csrf",
		"/api/auth/login",
		"/api/auth/refresh",
		"/api/auth/logout",
		"/api/products",
		"/api/products/filter-counts",
		"/api/products/lookups",
		"/api/products/:id",
		"/api/exchange-rates",
	}
}
