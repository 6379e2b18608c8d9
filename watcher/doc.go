// Package watcher orchestrates hot reloads of a single artifact.
//
// A Watcher owns the loaded handle, the shadow path, and the watched
// timestamp for one artifact. Construction performs the first load and
// calls heimdall_init synchronously, because the host needs an initial
// state to proceed. Afterwards the host drives one Watch/Update pair per
// loop tick on one goroutine; there is no background thread and no
// implicit timer.
//
// Watch polls for a rebuild. On a detected change it runs the swap:
// unload against the outgoing handle, release it, load the new build, then
// reload against the incoming handle, in exactly that order. If the load
// fails after the unload, the watcher is left without a handle for that
// tick (the old shadow copy has already been superseded; resurrecting it
// would run retired code against reloaded state). The next detected change
// re-establishes a handle.
//
// Building with -tags heimdall_static replaces the machinery with direct
// calls on a statically linked Program; Watch then always reports
// NoChange.
package watcher
