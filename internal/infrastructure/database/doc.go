// Package database provides SQLite connectivity for HomeGuardian Core.
//
// The database is the optional durable archive behind the in-memory
// controller: activity records and notifications are written here by
// background archivers, never on the command path.
//
// This package manages:
//   - Connection setup with WAL mode and a busy timeout
//   - Embedded schema migrations (see the migrations package)
//   - Health checks and lifecycle
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive-only. Each version has a .up.sql file and an
// optional .down.sql file named YYYYMMDD_HHMMSS_description.
package database
