package config

import (
	"net/url"
	"strings"
)

// StripSchemaParam removes the `schema` query parameter that Prisma-style
// PostgreSQL URLs carry and that the drivers reject. The removed value is
// returned so it can serve as the default schema. Anything that is not a
// postgres:// or postgresql:// URL is returned untouched.
func StripSchemaParam(dsn string) (string, string) {
	lower := strings.ToLower(dsn)
	if !strings.HasPrefix(lower, "postgres://") && !strings.HasPrefix(lower, "postgresql://") {
		return dsn, ""
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return dsn, ""
	}
	query := u.Query()
	if !query.Has("schema") {
		return dsn, ""
	}

	schema := query.Get("schema")
	query.Del("schema")
	u.RawQuery = query.Encode()
	return u.String(), schema
}
