// Package memory defines the tagged-variant memory model shared by every
// engine: the common envelope, the three payload variants (vendor,
// correction, resolution), and the pure per-memory operations (validation,
// usage accounting, wire-format (de)serialization) that do not require a
// storage round trip.
//
// A Memory is treated as immutable once constructed: engines that need to
// change a memory build a new value rather than mutating fields in place,
// and persistence always replaces the stored record with the new one.
package memory
