// Package helper provides testing utilities for the ledger and simulator test suites.
//
// It contains spies for the dependency-free observability interfaces of package ledger
// (log handler, contextual logger, metrics, tracing and fault reporting) and small builders
// for arranging ledgers.
package helper
