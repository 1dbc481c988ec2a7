package interview

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscriptAppendOrder(t *testing.T) {
	tr := NewTranscript()

	if _, ok := tr.Last(); ok {
		t.Fatalf("empty transcript must not have a last message")
	}

	tr.Append(Message{Role: RoleBot, Content: "first"})
	tr.Append(Message{Role: RoleUser, Content: "second"})

	if tr.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", tr.Len())
	}

	last, ok := tr.Last()
	if !ok || last.Content != "second" || last.Role != RoleUser {
		t.Fatalf("unexpected last message: %+v", last)
	}

	msgs := tr.Messages()
	if msgs[0].Content != "first" || msgs[1].Content != "second" {
		t.Fatalf("unexpected order: %+v", msgs)
	}
}

func TestTranscriptMessagesIsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(Message{Role: RoleBot, Content: "original"})

	msgs := tr.Messages()
	msgs[0].Content = "changed"

	if got := tr.Messages()[0].Content; got != "original" {
		t.Fatalf("stored message was modified: %q", got)
	}
}

func TestTranscriptWriteJSON(t *testing.T) {
	tr := NewTranscript()
	tr.Append(Message{Role: RoleBot, Content: "Are you ready?"})
	tr.Append(Message{Role: RoleUser, Content: "yes"})

	var buf bytes.Buffer
	if err := tr.WriteJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `"role": "bot"`) {
		t.Fatalf("expected indented bot role, got %s", buf.String())
	}

	var decoded []Message
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Role != RoleUser {
		t.Fatalf("unexpected decoded transcript: %+v", decoded)
	}
}

func TestTranscriptDumpToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "transcripts")

	tr := NewTranscript()
	tr.Append(Message{Role: RoleBot, Content: "Thank you for your time."})

	name, err := tr.DumpToFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Dir(name) != dir {
		t.Fatalf("expected file in %s, got %s", dir, name)
	}
	if base := filepath.Base(name); !strings.HasPrefix(base, "interview_") || !strings.HasSuffix(base, ".json") {
		t.Fatalf("unexpected file name: %s", base)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if !strings.Contains(string(data), "Thank you for your time.") {
		t.Fatalf("dump does not contain transcript: %s", data)
	}
}
