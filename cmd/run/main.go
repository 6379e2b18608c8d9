package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/ericrobolson/heimdall/artifact"
	"github.com/ericrobolson/heimdall/engine"
	"github.com/ericrobolson/heimdall/wasm"
	"github.com/ericrobolson/heimdall/watcher"
)

func main() {
	var (
		path        = flag.String("artifact", "", "Path to the artifact wasm file")
		interval    = flag.Duration("interval", 500*time.Millisecond, "Poll interval between ticks")
		ticks       = flag.Int("ticks", 0, "Stop after this many ticks (0 = run until interrupted)")
		notify      = flag.Bool("notify", false, "Use fsnotify change detection instead of mtime polling")
		emit        = flag.Int64("emit", 0, "Write a demo counter artifact with this update step and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log watcher and engine activity")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -artifact <file.wasm> [-interval 500ms] [-ticks n] [-notify]")
		fmt.Fprintln(os.Stderr, "       run -artifact <file.wasm> -emit <step>  (write a demo artifact)")
		fmt.Fprintln(os.Stderr, "       run -artifact <file.wasm> -i  (interactive mode)")
		os.Exit(1)
	}

	if *emit != 0 {
		if err := os.WriteFile(*path, demoArtifact(*emit), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote demo artifact (step %d) to %s\n", *emit, *path)
		return
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		engine.SetLogger(logger)
		watcher.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*path, *interval); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*path, *interval, *ticks, *notify); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, interval time.Duration, ticks int, notify bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := watcher.Config{Path: path}
	if notify {
		det, err := artifact.NewNotifyDetector(path)
		if err != nil {
			return err
		}
		cfg.Detector = det
	}

	w, state, err := watcher.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer w.Close(context.Background())

	fmt.Printf("Watching %s (state %d)\n", path, state)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			if err := w.Finalize(context.Background(), &state); err != nil {
				return err
			}
			fmt.Printf("Final state: %d\n", state)
			return nil

		case <-ticker.C:
			outcome, err := w.Watch(ctx, &state)
			switch outcome {
			case watcher.Updated:
				fmt.Printf("tick %d: artifact swapped, state %d\n", tick, state)
			case watcher.Failed:
				fmt.Printf("tick %d: watch failed: %v\n", tick, err)
			}

			if err := w.Update(ctx, &state); err != nil {
				fmt.Printf("tick %d: update failed: %v\n", tick, err)
			} else {
				fmt.Printf("tick %d: state %d\n", tick, state)
			}

			tick++
			if ticks > 0 && tick >= ticks {
				if err := w.Finalize(ctx, &state); err != nil {
					return err
				}
				fmt.Printf("Final state: %d\n", state)
				return nil
			}
		}
	}
}

// demoArtifact emits a counter artifact: init returns 0, update adds step,
// unload subtracts 1, reload adds 1, finalize passes through.
func demoArtifact(step int64) []byte {
	b := wasm.NewBuilder()
	unary := wasm.FuncType{Params: []wasm.ValType{wasm.I64}, Results: []wasm.ValType{wasm.I64}}

	initFn := b.Func(wasm.FuncType{Results: []wasm.ValType{wasm.I64}}, wasm.I64Const(0))
	reload := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(1), wasm.I64Add())
	unload := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(1), wasm.I64Sub())
	update := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(step), wasm.I64Add())
	fini := b.Func(unary, wasm.LocalGet(0))

	b.Export("heimdall_init", initFn)
	b.Export("heimdall_reload", reload)
	b.Export("heimdall_unload", unload)
	b.Export("heimdall_update", update)
	b.Export("heimdall_finalize", fini)

	bin, err := b.Build()
	if err != nil {
		panic(err)
	}
	return bin
}
