package model

import "time"

// ScanReport is the outcome of one ghbuster run against one target.
type ScanReport struct {
	// ID identifies the run in logs and reports.
	ID string `json:"id"`

	// Target is the scanned user or repository.
	Target TargetSpec `json:"target"`

	// AuthenticatedAs is the login the token belongs to.
	AuthenticatedAs string `json:"authenticatedAs,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Precheck holds the legitimacy gate result for user targets. It is kept
	// apart from Results and never counted in the summary.
	Precheck *Result `json:"precheck,omitempty"`

	// EarlyExit is true when the gate triggered and the scan stopped there.
	EarlyExit bool `json:"earlyExit"`

	// Results holds one entry per executed heuristic in registry order.
	Results []Result `json:"results"`
}

// NewScanReport creates an empty report for target.
func NewScanReport(id string, target TargetSpec) *ScanReport {
	return &ScanReport{
		ID:        id,
		Target:    target,
		StartedAt: time.Now(),
		Results:   make([]Result, 0),
	}
}

// Triggered returns the triggered results in order.
func (r *ScanReport) Triggered() []Result {
	return r.filter(OutcomeTriggered)
}

// Passed returns the passed results in order.
func (r *ScanReport) Passed() []Result {
	return r.filter(OutcomePassed)
}

// Skipped returns the skipped results in order.
func (r *ScanReport) Skipped() []Result {
	return r.filter(OutcomeSkipped)
}

func (r *ScanReport) filter(o Outcome) []Result {
	out := make([]Result, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Outcome == o {
			out = append(out, res)
		}
	}
	return out
}

// Summary counts results by outcome.
type Summary struct {
	Total     int `json:"total"`
	Triggered int `json:"triggered"`
	Passed    int `json:"passed"`
	Skipped   int `json:"skipped"`
}

// Summary returns counts by outcome.
func (r *ScanReport) Summary() Summary {
	s := Summary{Total: len(r.Results)}
	for _, res := range r.Results {
		switch res.Outcome {
		case OutcomeTriggered:
			s.Triggered++
		case OutcomePassed:
			s.Passed++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}

// Duration returns how long the scan took.
func (r *ScanReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
