// Package engine loads artifacts into the process and drives their
// lifecycle entry points.
//
// An Engine owns one wazero runtime for the lifetime of a watcher. Load
// clones the canonical artifact to its shadow path, compiles and
// instantiates the clone, and hands back a Handle: the exclusively owned
// token for the mapped artifact. At most one Handle is live at a time, and
// a Handle must be closed before the next Load overwrites the shadow file.
//
// Handles resolve the heimdall_* exports lazily, per call, and validate
// the i64 signature before invoking. A missing export fails that call;
// nothing is skipped.
package engine
