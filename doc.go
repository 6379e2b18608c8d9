// Package heimdall lets a long-running host process swap a freshly built
// code artifact in without restarting, while an application state value
// survives the swap.
//
// Artifacts are WebAssembly core modules that export five fixed entry
// points (heimdall_init, heimdall_reload, heimdall_unload, heimdall_update,
// heimdall_finalize), each taking and returning the state as a single i64.
// The host polls the artifact's modification time; when it advances, the
// running module is unloaded and the new build is loaded in its place.
//
// # Architecture Overview
//
//	heimdall/            Root package: State, Stage, Program, ABI names
//	├── artifact/        Canonical/shadow paths, cloning, change detection
//	├── engine/          wazero integration: load, invoke, release
//	├── errors/          Structured error types
//	├── watcher/         Orchestrator: Watch / Update / Finalize
//	├── wasm/            Minimal wasm binary emitter for artifacts
//	├── testbed/         Instrumented artifacts and end-to-end tests
//	└── cmd/run/         Demo host with a live dashboard
//
// # Quick Start
//
//	ctx := context.Background()
//	w, state, err := watcher.New(ctx, watcher.Config{Path: "plugin.wasm"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close(ctx)
//
//	for {
//	    if _, err := w.Watch(ctx, &state); err != nil {
//	        log.Println(err)
//	    }
//	    if err := w.Update(ctx, &state); err != nil {
//	        log.Fatal(err)
//	    }
//	    time.Sleep(250 * time.Millisecond)
//	}
//
// # The Shadow Copy
//
// The watcher never loads the canonical artifact path directly. Every load
// copies it to a shadow path next to it (name_updated.wasm) and loads the
// copy, so a build tool can overwrite the canonical file at any moment,
// including on platforms that lock open files.
//
// # State
//
// State is a 64-bit word with the same representation on both sides of the
// boundary (Go uint64, wasm i64). Host and artifact must agree on its
// interpretation; the core only threads it through calls. Every stage takes
// the value in and passes a value out.
//
// # Static Builds
//
// Building with -tags heimdall_static compiles the watch/reload machinery
// out. Lifecycle stages become direct in-process calls on a host-supplied
// Program, and Watch always reports NoChange. Use it for release builds.
//
// # Concurrency
//
// The model is single-threaded and synchronous: the host drives one
// Watch/Update pair per loop tick. A Watcher owns its handle and shadow
// file exclusively; two Watchers must not target the same artifact.
package heimdall
