// Package shoptogether holds assets embedded into the binary.
package shoptogether

import "embed"

// Migrations contains the goose SQL migrations for the postgres storage.
//
//go:embed migrations/*.sql
var Migrations embed.FS
