package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type phase string

func (p phase) String() string { return string(p) }

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestWithAIFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithAIFields(zap.New(core), "  gemini ", "gemini-2.5-flash").Info("generated")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}

	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("unexpected model field: %q", ctx[FieldModel])
	}

	if len(AIFields("", "")) != 0 {
		t.Fatalf("expected no fields for empty provider and model")
	}
}

func TestSessionFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	fields := SessionFields("abc", "Backend Engineer", phase("ongoing"), 2)
	zap.New(core).With(fields...).Debug("state transition")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldSessionID] != "abc" {
		t.Fatalf("unexpected session id: %v", ctx[FieldSessionID])
	}
	if ctx[FieldJobRole] != "Backend Engineer" {
		t.Fatalf("unexpected job role: %v", ctx[FieldJobRole])
	}
	if ctx[FieldPhase] != "ongoing" {
		t.Fatalf("unexpected phase: %v", ctx[FieldPhase])
	}
	if ctx[FieldQuestionIndex] != int64(2) {
		t.Fatalf("unexpected question index: %v (%T)", ctx[FieldQuestionIndex], ctx[FieldQuestionIndex])
	}

	fresh := SessionFields("", "", nil, 0)
	if len(fresh) != 1 || fresh[0].Key != FieldQuestionIndex {
		t.Fatalf("expected only the question index for an empty session, got %+v", fresh)
	}
}
