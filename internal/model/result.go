package model

import "encoding/json"

// Outcome is the verdict of a single heuristic run.
type Outcome int

const (
	// OutcomePassed means the heuristic was evaluated and found no signal.
	OutcomePassed Outcome = iota

	// OutcomeTriggered means the heuristic found the condition it looks for.
	OutcomeTriggered

	// OutcomeSkipped means the heuristic intentionally did not evaluate the
	// target, for example because the target is above its sampling cap.
	OutcomeSkipped
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeTriggered:
		return "triggered"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Descriptor is the read-only view of a heuristic that reports need.
type Descriptor interface {
	ID() string
	Name() string
	Description() string
}

// Result is what a heuristic returns for one target.
//
// Heuristic points back at the detector that produced the result. It is set
// by the scanner after the run and is only read for reporting.
type Result struct {
	Outcome   Outcome
	Detail    string
	Heuristic Descriptor
}

// Triggered builds a triggered result carrying evidence.
func Triggered(detail string) Result {
	return Result{Outcome: OutcomeTriggered, Detail: detail}
}

// Passed builds a passed result.
func Passed() Result {
	return Result{Outcome: OutcomePassed}
}

// Skipped builds a skipped result with an optional reason.
func Skipped(reason string) Result {
	return Result{Outcome: OutcomeSkipped, Detail: reason}
}

// IsTriggered reports whether the heuristic fired.
func (r Result) IsTriggered() bool {
	return r.Outcome == OutcomeTriggered
}

// IsSkipped reports whether the heuristic opted out.
func (r Result) IsSkipped() bool {
	return r.Outcome == OutcomeSkipped
}

// WithHeuristic returns a copy of r tagged with its originating heuristic.
func (r Result) WithHeuristic(h Descriptor) Result {
	r.Heuristic = h
	return r
}

// HeuristicID returns the id of the originating heuristic, or "" when untagged.
func (r Result) HeuristicID() string {
	if r.Heuristic == nil {
		return ""
	}
	return r.Heuristic.ID()
}

// MarshalJSON flattens the heuristic reference into id, name and description.
func (r Result) MarshalJSON() ([]byte, error) {
	type heuristicRef struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	out := struct {
		Heuristic *heuristicRef `json:"heuristic,omitempty"`
		Outcome   Outcome       `json:"outcome"`
		Detail    string        `json:"detail,omitempty"`
	}{
		Outcome: r.Outcome,
		Detail:  r.Detail,
	}
	if r.Heuristic != nil {
		out.Heuristic = &heuristicRef{
			ID:          r.Heuristic.ID(),
			Name:        r.Heuristic.Name(),
			Description: r.Heuristic.Description(),
		}
	}
	return json.Marshal(out)
}
