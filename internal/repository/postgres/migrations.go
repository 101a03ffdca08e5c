package postgres

import "embed"

// Migrations holds the schema files applied at startup by
// database.RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations containing the files.
const MigrationsDir = "migrations"
