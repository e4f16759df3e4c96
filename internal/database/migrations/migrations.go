// Package migrations embeds the goose SQL migrations for the bookstore schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
