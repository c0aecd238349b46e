// Package persistence writes collected container stats and metadata to
// MySQL, grounded on original_source/src/persistence/{mysql.rs,models.rs,
// persister.rs,error.rs}. database/sql plus a MySQL driver replaces the
// source's sqlx/async pool: a *sql.DB is itself a connection pool, so no
// extra pooling layer is added on top.
package persistence

// ErrorKind classifies a persistence failure.
type ErrorKind int

const (
	// ConnectionError means the initial sql.Open/Ping failed.
	ConnectionError ErrorKind = iota
	// MigrationError means EnsureSchema's CREATE TABLE statements failed.
	MigrationError
	// SetupError means a pool option (e.g. SetMaxOpenConns) or DSN parse failed.
	SetupError
	// InsertError means a batch insert or upsert failed and was rolled back.
	InsertError
)

func (k ErrorKind) String() string {
	switch k {
	case ConnectionError:
		return "connection"
	case MigrationError:
		return "migration"
	case SetupError:
		return "setup"
	case InsertError:
		return "insert"
	default:
		return "unknown"
	}
}

// Error wraps a database/sql failure with the phase it occurred in.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ConnectionError:
		return "failed to connect to database: " + e.Cause.Error()
	case MigrationError:
		return "failed to run initial migration: " + e.Cause.Error()
	case SetupError:
		return "failed to setup database connection: " + e.Cause.Error()
	case InsertError:
		return "failed to insert stats: " + e.Cause.Error()
	default:
		return "persistence error: " + e.Cause.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}
