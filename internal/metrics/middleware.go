package metrics

import (
	"context"
	"time"

	"github.com/spigell/interview-coach/internal/interview"
)

type instrumented struct {
	next     interview.Backend
	recorder Recorder
	now      func() time.Time
}

// Instrument wraps backend so that every call is reported to recorder. Results and
// errors are passed through unchanged.
func Instrument(backend interview.Backend, recorder Recorder) interview.Backend {
	if recorder == nil {
		recorder = Nop()
	}

	return &instrumented{next: backend, recorder: recorder, now: time.Now}
}

func (i *instrumented) GenerateQuestions(ctx context.Context, jobRole string, resume *interview.Resume) (string, error) {
	start := i.now()
	questions, err := i.next.GenerateQuestions(ctx, jobRole, resume)
	i.observe(OpGenerateQuestions, start, err)
	return questions, err
}

func (i *instrumented) EvaluateAnswer(ctx context.Context, req *interview.EvaluationRequest) (*interview.Evaluation, error) {
	start := i.now()
	evaluation, err := i.next.EvaluateAnswer(ctx, req)
	i.observe(OpEvaluateAnswer, start, err)
	return evaluation, err
}

func (i *instrumented) ForceEnd(ctx context.Context, req *interview.SummaryRequest) (string, error) {
	start := i.now()
	summary, err := i.next.ForceEnd(ctx, req)
	i.observe(OpForceEnd, start, err)
	return summary, err
}

func (i *instrumented) observe(operation string, start time.Time, err error) {
	i.recorder.ObserveRequest(operation, err == nil, interview.ErrorKind(err), i.now().Sub(start))
}
