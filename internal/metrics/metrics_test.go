package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/spigell/interview-coach/internal/interview"
)

type stubBackend struct {
	err error
}

func (s stubBackend) GenerateQuestions(context.Context, string, *interview.Resume) (string, error) {
	return "1. Question one?", s.err
}

func (s stubBackend) EvaluateAnswer(context.Context, *interview.EvaluationRequest) (*interview.Evaluation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &interview.Evaluation{Text: "ok"}, nil
}

func (s stubBackend) ForceEnd(context.Context, *interview.SummaryRequest) (string, error) {
	return "bye", s.err
}

type observation struct {
	operation string
	success   bool
	errorKind string
	duration  time.Duration
}

type recordingRecorder struct {
	observations []observation
}

func (r *recordingRecorder) ObserveRequest(operation string, success bool, errorKind string, duration time.Duration) {
	r.observations = append(r.observations, observation{operation, success, errorKind, duration})
}

func TestInstrumentRecordsEveryOperation(t *testing.T) {
	rec := &recordingRecorder{}
	backend := Instrument(stubBackend{}, rec).(*instrumented)

	ticks := []time.Time{time.Unix(0, 0), time.Unix(2, 0)}
	backend.now = func() time.Time {
		tick := ticks[0]
		ticks = append(ticks[1:], tick)
		return tick
	}

	ctx := context.Background()
	if _, err := backend.GenerateQuestions(ctx, "QA", &interview.Resume{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := backend.EvaluateAnswer(ctx, &interview.EvaluationRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := backend.ForceEnd(ctx, &interview.SummaryRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{OpGenerateQuestions, OpEvaluateAnswer, OpForceEnd}
	if len(rec.observations) != len(want) {
		t.Fatalf("expected %d observations, got %d", len(want), len(rec.observations))
	}

	for i, op := range want {
		obs := rec.observations[i]
		if obs.operation != op || !obs.success || obs.errorKind != "" {
			t.Fatalf("unexpected observation %d: %+v", i, obs)
		}
		if obs.duration != 2*time.Second {
			t.Fatalf("unexpected duration: %s", obs.duration)
		}
	}
}

func TestInstrumentPassesErrorsThrough(t *testing.T) {
	rec := &recordingRecorder{}
	failure := &interview.RequestFailedError{StatusCode: 500}
	backend := Instrument(stubBackend{err: failure}, rec)

	_, err := backend.EvaluateAnswer(context.Background(), &interview.EvaluationRequest{})
	if !errors.Is(err, failure) {
		t.Fatalf("expected original error, got %v", err)
	}

	if obs := rec.observations[0]; obs.success || obs.errorKind != "request_failed" {
		t.Fatalf("unexpected observation: %+v", obs)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	rec := NewPrometheusRecorder()
	backend := Instrument(stubBackend{}, rec)
	failing := Instrument(stubBackend{err: interview.ErrTransport}, rec)

	ctx := context.Background()
	_, _ = backend.ForceEnd(ctx, &interview.SummaryRequest{})
	_, _ = backend.ForceEnd(ctx, &interview.SummaryRequest{})
	_, _ = failing.ForceEnd(ctx, &interview.SummaryRequest{})

	if got := testutil.ToFloat64(rec.requestsTotal.WithLabelValues(OpForceEnd, statusSuccess, "")); got != 2 {
		t.Fatalf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(rec.requestsTotal.WithLabelValues(OpForceEnd, statusError, "transport_failure")); got != 1 {
		t.Fatalf("expected 1 failed request, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.requestDuration); got != 1 {
		t.Fatalf("expected a single duration series, got %d", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	rec := NewPrometheusRecorder()
	rec.ObserveRequest(OpGenerateQuestions, true, "", time.Second)

	server := httptest.NewServer(rec.Handler())
	defer server.Close()

	resp, err := server.Client().Get(server.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"interview_backend_requests_total{", `operation="generate_questions"`, "interview_backend_request_duration_seconds_count"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %q in scrape output:\n%s", want, body)
		}
	}
}

func TestNopRecorder(t *testing.T) {
	backend := Instrument(stubBackend{}, nil)
	if _, err := backend.GenerateQuestions(context.Background(), "QA", &interview.Resume{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
