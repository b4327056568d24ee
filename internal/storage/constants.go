package db

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// maxConnectionRetries is the number of retries for initial connection
	maxConnectionRetries = 10
)

// Database pool default constants
const (
	defaultMaxConns          int32         = 10
	defaultMinConns          int32         = 2
	defaultMaxConnIdleTime   time.Duration = 30 * time.Minute
	defaultMaxConnLifetime   time.Duration = time.Hour
	defaultHealthCheckPeriod time.Duration = time.Minute
)

// Advisory lock namespaces. Category locks hash the category name into the
// second key. Runs and retention use different spaces because a run holds its
// session lock while retention takes the transaction lock on another connection.
const (
	migrationLockID       = 1000
	categoryRunLockSpace  = 2000
	categoryRetainLockSpc = 2001
)

const (
	defaultArchiveLimit = 20
	maxArchiveLimit     = 100
	errFmtBeginTx       = "begin tx: %w"
	errFmtCommitTx      = "commit tx: %w"
)
