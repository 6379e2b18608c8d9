package heimdall

// State is the application value threaded through every lifecycle call.
// It crosses the artifact boundary as a wasm i64, so its representation is
// identical on both sides by construction. The core never inspects it.
type State uint64

// Stage identifies one of the five lifecycle entry points an artifact
// must export for every stage it will be driven through.
type Stage int

const (
	StageInit Stage = iota
	StageReload
	StageUnload
	StageUpdate
	StageFinalize
)

var stageNames = [...]string{"init", "reload", "unload", "update", "finalize"}

func (s Stage) String() string {
	if s < StageInit || s > StageFinalize {
		return "unknown"
	}
	return stageNames[s]
}

// Symbol returns the export name an artifact must use for this stage.
func (s Stage) Symbol() string {
	return "heimdall_" + s.String()
}

// Stages lists all lifecycle stages in protocol order.
func Stages() []Stage {
	return []Stage{StageInit, StageReload, StageUnload, StageUpdate, StageFinalize}
}

// HostModule is the import namespace artifacts use to reach host
// functions, e.g. (import "heimdall" "log" (func (param i64))).
const HostModule = "heimdall"

// Program is the statically linked form of an artifact: the same five
// stages as direct in-process calls. Static builds (-tags heimdall_static)
// drive a Program instead of a loaded module.
type Program interface {
	Init() State
	Reload(State) State
	Unload(State) State
	Update(State) State
	Finalize(State) State
}
