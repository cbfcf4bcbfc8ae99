package pipeline

import "time"

// Stage is one step of a run. A run moves through the stages in order and
// cannot be resumed part way.
type Stage string

const (
	StageInit        Stage = "init"
	StageLoading     Stage = "loading"
	StageNormalizing Stage = "normalizing"
	StageAggregating Stage = "aggregating"
	StageExporting   Stage = "exporting"
	StageReporting   Stage = "reporting"
	StageIndexing    Stage = "indexing"
	StageDone        Stage = "done"
)

// Stages returns the working stages in execution order.
func Stages() []Stage {
	return []Stage{StageLoading, StageNormalizing, StageAggregating, StageExporting, StageReporting, StageIndexing}
}

// StageRecord logs a completed stage with its outcome.
type StageRecord struct {
	Stage     Stage  `json:"stage"`
	Outcome   string `json:"outcome"`
	Timestamp string `json:"timestamp"`
}

// RunState tracks where a run is.
type RunState struct {
	Current Stage         `json:"current"`
	Status  string        `json:"status"` // running, done
	History []StageRecord `json:"history"`
}

// InitState creates a RunState at init.
func InitState() *RunState {
	return &RunState{Current: StageInit, Status: "running"}
}

// Advance moves the state to next and records the finished stage.
func Advance(state *RunState, next Stage, outcome string, now time.Time) {
	state.History = append(state.History, StageRecord{
		Stage:     state.Current,
		Outcome:   outcome,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
	state.Current = next
	if next == StageDone {
		state.Status = "done"
	}
}

// Path returns the stage codes completed so far.
func (s *RunState) Path() []string {
	var out []string
	for _, r := range s.History {
		if r.Stage == StageInit {
			continue
		}
		out = append(out, string(r.Stage))
	}
	return out
}
