package services

import (
	"errors"
	"fmt"

	"github.com/ekaya-inc/ekaya-askdb/pkg/logging"
)

// Stage is one step of the question-to-answer pipeline.
type Stage string

const (
	StageMetadata    Stage = "metadata"
	StageGeneration  Stage = "generation"
	StageExecution   Stage = "execution"
	StageExplanation Stage = "explanation"
)

// label is the user-facing name of the stage.
func (s Stage) label() string {
	switch s {
	case StageMetadata:
		return "metadata extraction"
	case StageGeneration:
		return "query generation"
	case StageExecution:
		return "query execution"
	case StageExplanation:
		return "explanation"
	}
	return string(s)
}

// FailureKind refines a generation failure.
type FailureKind string

const (
	// KindTransport is a model invocation error (timeout, auth, malformed response).
	KindTransport FailureKind = "transport"
	// KindNoSQL means the model answered but no statement could be extracted.
	KindNoSQL FailureKind = "no_sql"
	// KindPolicy means a statement was extracted but the statement policy rejected it.
	KindPolicy FailureKind = "policy"
)

// StageError is a failure at one pipeline stage.
type StageError struct {
	Stage Stage
	Kind  FailureKind // set for generation failures only
	Err   error
}

func newStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

func newGenerationError(kind FailureKind, err error) *StageError {
	return &StageError{Stage: StageGeneration, Kind: kind, Err: err}
}

func (e *StageError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Stage.label(), e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage.label(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// UserMessage names the stage and the underlying message with credentials redacted.
func (e *StageError) UserMessage() string {
	return fmt.Sprintf("%s failed: %s", e.Stage.label(), logging.SanitizeError(e.Err))
}

// AsStageError extracts a StageError from err.
func AsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
