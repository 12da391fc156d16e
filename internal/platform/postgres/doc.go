// Package postgres implements the store interfaces on PostgreSQL via the
// pgx stdlib driver. All implementations accept a store.DBTX so they run
// unchanged on a connection pool or inside a transaction.
package postgres
