// Package migrations embeds the token cache schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
