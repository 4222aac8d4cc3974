// Package migrations carries the versioned schema applied by
// "casebook-server migrate up".
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
