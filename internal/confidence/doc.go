// Package confidence implements the pure, deterministic confidence math of
// spec §4.2: reinforcing a memory's confidence from a processing outcome,
// and decaying it over elapsed time. Nothing here touches storage or the
// clock directly — callers supply the elapsed duration and outcome.
package confidence
