// Package store provides core.ContactStore implementations.
//
//   - RESTStore posts the batch to the contacts backend behind a circuit breaker.
//   - PostgresStore copies the batch into a contacts table in one transaction.
//   - SQLiteStore inserts the batch in one transaction; used for local runs.
//   - MemoryStore keeps contacts in process for tests and demos.
//
// Every implementation creates all contacts of a batch or none of them.
package store
