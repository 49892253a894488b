// Package database manages bun connections for sqlite, postgres and mysql,
// the model registry, versioned migrations, foreign keys, SQL seed files,
// query hooks, SQL error classification and health checks.
package database
