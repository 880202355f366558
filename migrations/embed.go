// Package migrations holds the goose SQL migrations, embedded into cmd/migrate
// and the postgres integration tests.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
