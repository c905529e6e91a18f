package session

// Stage is one step of the pipeline.
type Stage int

const (
	StageScan Stage = iota
	StagePick
	StageProbe
	StageExtract
	StageServe
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageScan, StagePick, StageProbe, StageExtract, StageServe}

func (s Stage) String() string {
	switch s {
	case StageScan:
		return "Scan"
	case StagePick:
		return "Pick"
	case StageProbe:
		return "Probe"
	case StageExtract:
		return "Extract"
	case StageServe:
		return "Serve"
	default:
		return "Unknown"
	}
}

// EventKind says what happened to a stage.
type EventKind int

const (
	EventStarted EventKind = iota
	EventDone
	EventSkipped
	EventFailed
)

// Event is a progress notification from Runner.Run.
type Event struct {
	Stage   Stage
	Kind    EventKind
	Message string
	Err     error
}

// Observer receives events synchronously from the goroutine running the pipeline.
type Observer func(Event)
