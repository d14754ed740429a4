package packager

import (
	"errors"
	"fmt"
)

// StageName identifies a pipeline stage. The names double as progress labels.
type StageName string

// Pipeline stages, in execution order.
const (
	StageInferring  StageName = "inferring"
	StageCopying    StageName = "copying"
	StageIcons      StageName = "icons"
	StagePackaging  StageName = "packaging"
	StageFinalizing StageName = "finalizing"
)

var (
	// ErrInference marks invalid or contradictory user options.
	ErrInference = errors.New("options inference failed")
	// ErrStaging marks a failure to prepare the scratch copy of the app.
	ErrStaging = errors.New("staging failed")
	// ErrIcon marks a failure to place the icon; never fatal to the run.
	ErrIcon = errors.New("icon finalization failed")
	// ErrPackagingEngine marks a failure reported by the packaging engine.
	ErrPackagingEngine = errors.New("packaging engine failed")
	// ErrUnexpectedResultShape marks an engine result with more than one bundle.
	ErrUnexpectedResultShape = errors.New("packaging engine produced more than one bundle")
	// ErrCanceled marks a run stopped by its context between stages.
	ErrCanceled = errors.New("packaging canceled")
)

// StageError reports which stage failed and why.
type StageError struct {
	Stage StageName
	Err   error
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}
