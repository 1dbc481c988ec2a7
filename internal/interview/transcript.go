package interview

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is a single transcript entry. It is never modified after being appended.
type Message struct {
	Role    Role   `json:"role" mapstructure:"role"`
	Content string `json:"content" mapstructure:"content"`
}

// Transcript is the append-only log of a session. The full log is resent to the
// services on every call, so the order of Messages is part of the protocol.
type Transcript struct {
	messages []Message
}

func NewTranscript() *Transcript {
	return &Transcript{messages: make([]Message, 0)}
}

func (t *Transcript) Append(m Message) {
	t.messages = append(t.messages, m)
}

// Messages returns a copy of the log; callers can not alter the stored entries.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	return len(t.messages)
}

func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

// WriteJSON writes the transcript as an indented JSON array.
func (t *Transcript) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Messages())
}

// DumpToFile stores the transcript in dir under a generated name and returns the file name.
func (t *Transcript) DumpToFile(dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	file, err := os.CreateTemp(dir, "interview_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := t.WriteJSON(file); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}

	return filepath.Clean(file.Name()), nil
}
