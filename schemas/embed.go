// Package schemas embeds the MySQL schema of the glossary database sink.
package schemas

import "embed"

// Migrations holds migrations/*.sql, applied in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
