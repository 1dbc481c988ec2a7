package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
)

const (
	PromptRetry          = "Try again"
	PromptChangeRole     = "Change job role"
	PromptChangeResume   = "Change resume"
	PromptSaveTranscript = "Save transcript to file"
	PromptNewInterview   = "Start a new interview"
	PromptExit           = "Exit"
)

var errExit = errors.New("exit requested")

// terminal is the interactive surface of the chat.
type terminal interface {
	Ask(label string, validate func(string) error) (string, error)
	Choose(label string, items []string) (string, error)
}

type promptTerminal struct{}

func (promptTerminal) Ask(label string, validate func(string) error) (string, error) {
	p := promptui.Prompt{Label: label, Validate: validate}
	answer, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", errExit
	}
	return answer, err
}

func (promptTerminal) Choose(label string, items []string) (string, error) {
	p := promptui.Select{Label: label, Items: items}
	_, selected, err := p.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", errExit
	}
	return selected, err
}

type session struct {
	controller *interview.Controller
	term       terminal
	out        io.Writer
	logger     *zap.Logger

	jobRole       string
	resumePath    string
	transcriptDir string

	// printed is the number of transcript messages already shown.
	printed int
}

func (s *session) run(ctx context.Context) error {
	for {
		if err := s.start(ctx); err != nil {
			return err
		}

		if err := s.converse(ctx); err != nil {
			return err
		}

		again, err := s.finish()
		if err != nil || !again {
			return err
		}

		s.jobRole, s.resumePath = "", ""
	}
}

// start asks for whatever input is missing and loops until questions are generated.
func (s *session) start(ctx context.Context) error {
	for {
		if strings.TrimSpace(s.jobRole) == "" {
			role, err := s.term.Ask("Job role", notBlank)
			if err != nil {
				return err
			}
			s.jobRole = role
		}

		if strings.TrimSpace(s.resumePath) == "" {
			path, err := s.term.Ask("Path to resume PDF", readableFile)
			if err != nil {
				return err
			}
			s.resumePath = path
		}

		resume, err := loadResume(s.resumePath)
		if err != nil {
			s.logger.Warn("reading resume", zap.Error(err))
			fmt.Fprintf(s.out, "Could not read the resume: %v\n", err)
			s.resumePath = ""
			continue
		}

		s.printed = 0
		fmt.Fprintln(s.out, "Analyzing your resume...")

		err = s.controller.StartInterview(ctx, s.jobRole, resume)
		s.render()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, interview.ErrMissingInput):
			fmt.Fprintln(s.out, err.Error())
			s.resumePath = ""
			continue
		default:
			s.logger.Warn("starting interview", zap.Error(err), zap.String("kind", interview.ErrorKind(err)))
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err := s.retry(); err != nil {
			return err
		}
	}
}

// retry lets the candidate keep or replace the input after a failed start.
func (s *session) retry() error {
	action, err := s.term.Choose("Questions could not be prepared", []string{PromptRetry, PromptChangeRole, PromptChangeResume})
	if err != nil {
		return err
	}

	switch action {
	case PromptRetry:
	case PromptChangeRole:
		s.jobRole = ""
	case PromptChangeResume:
		s.resumePath = ""
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	return nil
}

func (s *session) converse(ctx context.Context) error {
	for s.controller.Snapshot().Phase != interview.PhaseFinished {
		answer, err := s.term.Ask("You", nil)
		if err != nil {
			return err
		}

		// Failures are already part of the transcript; the same question can be answered again.
		if err := s.controller.SubmitAnswer(ctx, answer); err != nil {
			s.logger.Warn("submitting answer", zap.Error(err), zap.String("kind", interview.ErrorKind(err)))
		}
		s.render()

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}

// finish shows the final menu. It reports whether a new interview was requested.
func (s *session) finish() (bool, error) {
	for {
		action, err := s.term.Choose("The interview is over", []string{PromptSaveTranscript, PromptNewInterview, PromptExit})
		if err != nil {
			return false, err
		}

		switch action {
		case PromptSaveTranscript:
			filename, err := s.controller.Transcript().DumpToFile(s.transcriptDir)
			if err != nil {
				return false, fmt.Errorf("dump transcript to file: %w", err)
			}
			s.logger.Info("dumping transcript to file", zap.String("filename", filename))
			fmt.Fprintf(s.out, "Transcript saved to %s\n", filename)
		case PromptNewInterview:
			return true, nil
		case PromptExit:
			return false, nil
		default:
			return false, fmt.Errorf("invalid action: %s", action)
		}
	}
}

// render prints bot messages appended since the last call. User replies are already
// on screen as typed.
func (s *session) render() {
	messages := s.controller.Snapshot().Transcript
	for _, msg := range messages[min(s.printed, len(messages)):] {
		if msg.Role == interview.RoleBot {
			fmt.Fprintf(s.out, "\nInterviewer: %s\n\n", msg.Content)
		}
	}
	s.printed = len(messages)
}

func loadResume(path string) (*interview.Resume, error) {
	path = strings.TrimSpace(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &interview.Resume{Name: filepath.Base(path), Data: data}, nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func readableFile(s string) error {
	if err := notBlank(s); err != nil {
		return err
	}

	info, err := os.Stat(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	return nil
}
