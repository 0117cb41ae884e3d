// Package migrations embeds the catalog schema so it ships inside the binary.
package migrations

import "embed"

// MySQLDir is the root of the migration files within MySQL.
const MySQLDir = "mysql"

// MySQL holds the catalog schema for MySQL, one statement per file.
//
//go:embed mysql/*.sql
var MySQL embed.FS
