// Package canon serializes plain data as RFC 8785 canonical JSON and
// derives content hashes from it.
//
// Collected instance data, golden snapshots and the session ledger all go
// through MarshalCanonical so that equal data always produces equal bytes,
// whatever map iteration order or float formatting Go would otherwise pick.
package canon
