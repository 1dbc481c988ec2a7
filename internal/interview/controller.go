package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
)

// Resume is the uploaded resume. Data is attached to the generation request as is.
type Resume struct {
	Name string
	Data []byte
}

type EvaluationRequest struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	History  []Message `json:"history"`
	JobRole  string    `json:"job_role"`
}

type Evaluation struct {
	Text  string
	Ended bool
}

type SummaryRequest struct {
	History []Message `json:"history"`
	JobRole string    `json:"job_role"`
}

// Backend groups the three remote services. The services are stateless: every call
// carries the whole history it needs.
type Backend interface {
	GenerateQuestions(ctx context.Context, jobRole string, resume *Resume) (string, error)
	EvaluateAnswer(ctx context.Context, req *EvaluationRequest) (*Evaluation, error)
	ForceEnd(ctx context.Context, req *SummaryRequest) (string, error)
}

// Snapshot is a read-only copy of a session for renderers.
type Snapshot struct {
	SessionID    string
	Phase        Phase
	Questions    []string
	CurrentIndex int
	Transcript   []Message
	JobRole      string
	Busy         bool
}

// Controller drives a session. At most one request is in flight at a time; while it
// runs, StartInterview and SubmitAnswer return immediately.
type Controller struct {
	backend Backend
	logger  *zap.Logger

	mu        sync.Mutex
	busy      bool
	sessionID string
	jobRole   string
	machine   *Machine
}

func NewController(backend Backend, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{
		backend: backend,
		logger:  logger,
		machine: NewMachine(),
	}
}

// StartInterview begins a new session: the previous transcript is dropped and the
// question generator is called with the job role and the resume.
func (c *Controller) StartInterview(ctx context.Context, jobRole string, resume *Resume) error {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" || resume == nil || len(resume.Data) == 0 {
		return ErrMissingInput
	}

	if !c.acquire() {
		c.logger.Debug("ignoring start request", zap.String("reason", "request in flight"))
		return nil
	}
	defer c.release()

	c.mu.Lock()
	c.sessionID = uuid.NewString()
	c.jobRole = jobRole
	c.machine = NewMachine()
	_, err := c.machine.Apply(GenerationStarted{})
	logger := c.sessionLogger()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	logger.Info("requesting interview questions", zap.String("resume", resume.Name), zap.Int("resume_size", len(resume.Data)))

	questions, err := c.generate(ctx, jobRole, resume)
	if err != nil {
		logger.Warn("starting interview failed", zap.Error(err), zap.String("kind", ErrorKind(err)))
		if _, applyErr := c.apply(GenerationFailed{Reason: err.Error()}); applyErr != nil {
			return errors.Join(err, applyErr)
		}
		return err
	}

	if _, err := c.apply(QuestionsGenerated{Questions: questions}); err != nil {
		return err
	}

	logger.Info("interview is ready", zap.Int("questions", len(questions)))
	return nil
}

func (c *Controller) generate(ctx context.Context, jobRole string, resume *Resume) ([]string, error) {
	raw, err := c.backend.GenerateQuestions(ctx, jobRole, resume)
	if err != nil {
		return nil, err
	}

	return ExtractQuestions(raw)
}

// SubmitAnswer handles a chat reply. Blank replies and replies sent while a request is
// in flight are ignored. Service errors are recorded in the transcript and returned;
// the phase is not rolled back, so the same question can be answered again.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if !c.acquire() {
		c.logger.Debug("ignoring answer", zap.String("reason", "request in flight"))
		return nil
	}
	defer c.release()

	c.mu.Lock()
	question, _ := c.machine.CurrentQuestion()
	action, err := c.machine.Apply(UserReplied{Text: text})
	history := c.machine.Transcript().Messages()
	jobRole := c.jobRole
	logger := c.sessionLogger()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if action != ActionEvaluate {
		logger.Debug("reply handled locally")
		return nil
	}

	err = c.evaluate(ctx, logger, &EvaluationRequest{
		Question: question,
		Answer:   text,
		History:  history,
		JobRole:  jobRole,
	})
	if err != nil {
		logger.Warn("answer submission failed", zap.Error(err), zap.String("kind", ErrorKind(err)))
		if _, applyErr := c.apply(RequestFailed{Reason: err.Error()}); applyErr != nil {
			return errors.Join(err, applyErr)
		}
		return err
	}

	return nil
}

func (c *Controller) evaluate(ctx context.Context, logger *zap.Logger, req *EvaluationRequest) error {
	evaluation, err := c.backend.EvaluateAnswer(ctx, req)
	if err != nil {
		return err
	}

	if evaluation == nil || strings.TrimSpace(evaluation.Text) == "" {
		return fmt.Errorf("%w: evaluation is empty", ErrInvalidResponseShape)
	}

	action, err := c.apply(AnswerEvaluated{Evaluation: evaluation.Text, Ended: evaluation.Ended})
	if err != nil {
		return err
	}

	if action != ActionForceEnd {
		if evaluation.Ended {
			logger.Info("interview ended by evaluator")
		}
		return nil
	}

	logger.Info("questions exhausted, requesting summary")

	c.mu.Lock()
	summaryReq := &SummaryRequest{
		History: c.machine.Transcript().Messages(),
		JobRole: c.jobRole,
	}
	c.mu.Unlock()

	summary, err := c.backend.ForceEnd(ctx, summaryReq)
	if err != nil {
		return err
	}

	if strings.TrimSpace(summary) == "" {
		return fmt.Errorf("%w: summary is empty", ErrInvalidResponseShape)
	}

	if _, err := c.apply(SummaryReceived{Summary: summary}); err != nil {
		return err
	}

	logger.Info("interview finished")
	return nil
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		SessionID:    c.sessionID,
		Phase:        c.machine.Phase(),
		Questions:    c.machine.Questions(),
		CurrentIndex: c.machine.CurrentIndex(),
		Transcript:   c.machine.Transcript().Messages(),
		JobRole:      c.jobRole,
		Busy:         c.busy,
	}
}

// Transcript returns a detached copy of the transcript, e.g. for exporting a finished interview.
func (c *Controller) Transcript() *Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Transcript{messages: c.machine.Transcript().Messages()}
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) apply(ev Event) (Action, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	action, err := c.machine.Apply(ev)
	if err == nil {
		c.sessionLogger().Debug("state transition", zap.String("event", ev.eventName()))
	}
	return action, err
}

func (c *Controller) acquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return false
	}
	c.busy = true
	return true
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// sessionLogger must be called with c.mu held.
func (c *Controller) sessionLogger() *zap.Logger {
	return logger.WithFields(c.logger,
		logger.SessionFields(c.sessionID, c.jobRole, c.machine.Phase(), c.machine.CurrentIndex())...,
	)
}
