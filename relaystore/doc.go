// Package relaystore implements the relay's append-only ordered log: the
// Store interface, an in-memory MemStore for tests and mix bookkeeping,
// and a Postgres-backed PostgresStore for a standalone relay server.
package relaystore
