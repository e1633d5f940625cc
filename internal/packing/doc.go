// Package packing assembles ordered chapters into volume artifacts that fit
// under a byte ceiling.
//
// The engine discovers volume boundaries empirically: it speculatively asks
// the converter to merge the open candidate plus one more chapter, measures
// the result, and either commits the merge or discards it and closes the
// candidate. At most one candidate is open at a time and a superseded merge
// artifact is deleted the moment its replacement is accepted. Every file the
// engine creates lives in a run-scoped staging directory that is removed on
// the way out, success or failure.
package packing
