package errors

import (
	"fmt"
	"strings"

	"github.com/ericrobolson/heimdall"
)

// Phase indicates where in the watch/reload cycle the error occurred
type Phase string

const (
	PhasePoll   Phase = "poll"   // change detection
	PhaseCopy   Phase = "copy"   // canonical -> shadow clone
	PhaseLoad   Phase = "load"   // mapping the shadow copy
	PhaseInvoke Phase = "invoke" // lifecycle entry point calls
	PhaseConfig Phase = "config" // watcher construction
)

// Kind categorizes the error
type Kind string

const (
	KindIO            Kind = "io"             // file open/stat failures
	KindCopy          Kind = "copy_failed"    // clone to the shadow path failed
	KindMap           Kind = "map_failed"     // artifact cannot be compiled/instantiated
	KindSymbolMissing Kind = "symbol_missing" // required export absent
	KindBadSignature  Kind = "bad_signature"  // export has the wrong wasm type
	KindTrap          Kind = "trap"           // entry point faulted during the call
	KindNoHandle      Kind = "no_handle"      // no artifact currently loaded
	KindClosed        Kind = "closed"         // handle already released
	KindInvalidInput  Kind = "invalid_input"  // bad configuration
)

// Error is the structured error type used throughout heimdall
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Path   string
	Stage  string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Stage != "" {
		b.WriteString(" at ")
		b.WriteString(e.Stage)
	}

	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}

	if e.Detail != "" {
		if e.Path != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// Poll creates a change-detection failure. The watcher surfaces it without
// touching the loaded handle or the watched timestamp.
func Poll(path string, cause error) *Error {
	return &Error{
		Phase: PhasePoll,
		Kind:  KindIO,
		Path:  path,
		Cause: cause,
	}
}

// Copy creates a clone failure (source missing, destination unwritable).
func Copy(canonical, shadow string, cause error) *Error {
	return &Error{
		Phase:  PhaseCopy,
		Kind:   KindCopy,
		Path:   canonical,
		Detail: fmt.Sprintf("clone to %s", shadow),
		Cause:  cause,
	}
}

// Map creates a load failure: the shadow copy is not a loadable artifact.
func Map(path string, cause error) *Error {
	return &Error{
		Phase: PhaseLoad,
		Kind:  KindMap,
		Path:  path,
		Cause: cause,
	}
}

// MissingSymbol reports that the loaded artifact does not export the entry
// point for stage. There is no fallback; every artifact must export every
// stage it will be driven through.
func MissingSymbol(stage heimdall.Stage) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindSymbolMissing,
		Stage:  stage.String(),
		Detail: fmt.Sprintf("artifact does not export %q", stage.Symbol()),
	}
}

// BadSignature reports an export whose wasm type does not match the
// lifecycle ABI.
func BadSignature(stage heimdall.Stage, detail string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindBadSignature,
		Stage:  stage.String(),
		Detail: detail,
	}
}

// Trap wraps a fault raised inside an entry point call.
func Trap(stage heimdall.Stage, cause error) *Error {
	return &Error{
		Phase: PhaseInvoke,
		Kind:  KindTrap,
		Stage: stage.String(),
		Cause: cause,
	}
}

// NoHandle reports a lifecycle call with no artifact loaded.
func NoHandle(stage heimdall.Stage) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindNoHandle,
		Stage:  stage.String(),
		Detail: "no artifact is currently loaded",
	}
}

// Closed reports a lifecycle call against a released handle.
func Closed(stage heimdall.Stage) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindClosed,
		Stage:  stage.String(),
		Detail: "handle has been released",
	}
}

// InvalidInput creates a configuration error
func InvalidInput(detail string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}
