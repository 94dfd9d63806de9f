package migrations

import "embed"

// FS holds the schema migrations applied at startup in filename order.
//
//go:embed *.sql
var FS embed.FS
