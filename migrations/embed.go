// Package migrations holds the goose SQL migrations for every relational
// storage driver, one directory per dialect.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql mysql/*.sql
var FS embed.FS
