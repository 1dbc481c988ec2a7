// Package metrics records request metrics for the interview services.
package metrics

import "time"

const (
	statusSuccess = "success"
	statusError   = "error"

	OpGenerateQuestions = "generate_questions"
	OpEvaluateAnswer    = "evaluate_answer"
	OpForceEnd          = "force_end"
)

// Recorder receives one observation per backend call.
type Recorder interface {
	ObserveRequest(operation string, success bool, errorKind string, duration time.Duration)
}

// NoopRecorder discards all observations.
type NoopRecorder struct{}

func Nop() Recorder {
	return NoopRecorder{}
}

func (NoopRecorder) ObserveRequest(_ string, _ bool, _ string, _ time.Duration) {}
