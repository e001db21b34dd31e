// Package core implements bulk contact import: decoding an uploaded
// comma-separated file, validating every row independently, and handing a
// fully valid batch to a [ContactStore] in a single call.
//
// The package has no knowledge of HTTP or terminals. The web handlers and
// the contactimport CLI both call [Importer.Import] (or the dry-run
// [Validate]) and render the returned [ImportOutcome] themselves.
//
// # Flow
//
//  1. [ParseAndValidate] decodes the text (BOM stripped, invalid UTF-8
//     replaced, blank lines skipped) and produces one [ImportCandidate] per
//     data row with its errors attached.
//  2. [Importer.Submit] applies the fail-closed policy: a single invalid row
//     rejects the whole file and the store is never called.
//  3. A valid batch is sent with exactly one [ContactStore.BulkCreate]. Store
//     errors are logged and reported with a generic retry message.
//
// Every expected failure is reported through [ImportOutcome]. The only
// error returned by the importer is [ErrMissingOwner].
//
// # Error Handling
//
// Transport-level failures (oversized uploads, missing files, exhausted
// import slots, bad tokens) are mapped to user-facing messages with support
// codes by [MapError].
package core
