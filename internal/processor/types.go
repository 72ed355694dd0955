package processor

import (
	"go.uber.org/zap"

	"texshrink/pkg/imgutil"
)

// Constraints bounds the size of processed images.
type Constraints struct {
	// MaxDimension is the largest allowed width or height.
	MaxDimension int
	// MaxMegapixels caps width*height/1e6; zero disables it.
	MaxMegapixels float64
	// MinDimension refuses any resize that would take a side below it.
	MinDimension int
	// Quality is the JPEG encode quality.
	Quality int
}

type Options struct {
	InputRoot   string
	Policy      OutputPolicy
	Constraints Constraints
	DryRun      bool
	Workers     int
	Logger      *zap.Logger
}

type Job struct {
	Path    string
	RelPath string
	Err     error
}

// ImageInfo is what the header of a candidate reveals without decoding pixels.
type ImageInfo struct {
	Width       int
	Height      int
	Kind        imgutil.Kind
	Orientation int
	HasAlpha    bool
}

type Status int

const (
	StatusSkipped Status = iota
	StatusChanged
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusChanged:
		return "changed"
	case StatusErrored:
		return "errored"
	default:
		return "skipped"
	}
}

// Outcome is the result of processing a single file.
type Outcome struct {
	Status   Status
	Path     string
	Dest     string
	Info     ImageInfo
	Decision Decision
	Message  string
	Err      error
}

// RunOutcome aggregates the outcomes of one run.
type RunOutcome struct {
	Changed  int
	Skipped  int
	Errored  int
	Outcomes []Outcome
}

// Add folds one outcome into the totals.
func (r *RunOutcome) Add(o Outcome) {
	switch o.Status {
	case StatusChanged:
		r.Changed++
	case StatusErrored:
		r.Errored++
	default:
		r.Skipped++
	}
	r.Outcomes = append(r.Outcomes, o)
}

func (r RunOutcome) Total() int {
	return r.Changed + r.Skipped + r.Errored
}

type ProgressUpdate struct {
	TotalDelta   int
	ChangedDelta int
	SkippedDelta int
	ErrorDelta   int
}

func progressFor(o Outcome) ProgressUpdate {
	switch o.Status {
	case StatusChanged:
		return ProgressUpdate{ChangedDelta: 1}
	case StatusErrored:
		return ProgressUpdate{ErrorDelta: 1}
	default:
		return ProgressUpdate{SkippedDelta: 1}
	}
}
