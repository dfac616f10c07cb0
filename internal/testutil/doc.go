// Package testutil provides deterministic stand-ins for the ledger's clock
// and ID generator, so recorded sessions are reproducible in tests.
package testutil
