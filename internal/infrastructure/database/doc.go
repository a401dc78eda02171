// Package database provides SQLite connection management for the decision
// journal. It wraps database/sql with directory creation, WAL pragmas,
// restrictive file permissions and a health check. Schema management lives
// with the journal repository, which creates its own table on first use.
package database
