package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ericrobolson/heimdall"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want []string
		name string
	}{
		{
			name: "poll with cause",
			err:  Poll("plugin.wasm", fmt.Errorf("no such file")),
			want: []string{"[poll]", "io", "plugin.wasm", "no such file"},
		},
		{
			name: "copy includes both paths",
			err:  Copy("plugin.wasm", "plugin_updated.wasm", fmt.Errorf("denied")),
			want: []string{"[copy]", "copy_failed", "plugin.wasm", "plugin_updated.wasm"},
		},
		{
			name: "missing symbol names the export",
			err:  MissingSymbol(heimdall.StageReload),
			want: []string{"[invoke]", "symbol_missing", "at reload", "heimdall_reload"},
		},
		{
			name: "no handle names the stage",
			err:  NoHandle(heimdall.StageUpdate),
			want: []string{"no_handle", "at update"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(msg, want) {
					t.Errorf("message %q missing %q", msg, want)
				}
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	err := Map("plugin_updated.wasm", fmt.Errorf("bad magic"))

	if !stderrors.Is(err, &Error{Phase: PhaseLoad, Kind: KindMap}) {
		t.Error("expected Is to match on phase+kind")
	}
	if stderrors.Is(err, &Error{Phase: PhasePoll, Kind: KindIO}) {
		t.Error("expected Is to reject a different phase+kind")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("stat failed")
	err := Poll("plugin.wasm", cause)

	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
}

func TestError_As(t *testing.T) {
	var wrapped error = fmt.Errorf("watch: %w", MissingSymbol(heimdall.StageUnload))

	var e *Error
	if !stderrors.As(wrapped, &e) {
		t.Fatal("expected As to find *Error")
	}
	if e.Kind != KindSymbolMissing {
		t.Errorf("kind = %q, want %q", e.Kind, KindSymbolMissing)
	}
	if e.Stage != "unload" {
		t.Errorf("stage = %q, want unload", e.Stage)
	}
}
