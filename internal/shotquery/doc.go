// Package shotquery filters recorded shots by their instance data.
//
// A filter is a Predicate tree over dotted paths into a shot's stored
// data. Predicates are parsed from command-line expressions:
//
//	frameStart=1001        Equals
//	track!=V2              NotEquals
//	families~=review       Contains (array membership)
//
// Several expressions combine with And. Compile turns a predicate into a
// parameterized SQLite WHERE fragment using json_extract; values and
// paths are always bound as parameters, never interpolated.
package shotquery
