// Package migrations embeds the reference schema migrations so binaries can
// run them without shipping loose SQL files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
