package interview

import (
	"fmt"
	"regexp"
)

type Phase int

const (
	PhaseInitial Phase = iota
	PhaseLoading
	PhaseReady
	PhaseOngoing
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInitial:
		return "initial"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseOngoing:
		return "ongoing"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	readyMessage       = "Great! I've analyzed your resume and prepared some questions.\n\nAre you ready to begin the interview?"
	notReadyMessage    = "No problem. Just let me know when you are ready to start."
	firstQuestionIntro = "Excellent! Let's start. Here is your first question:\n\n"
	requestFailedIntro = "Sorry, there was an error. Error: "
)

var affirmative = regexp.MustCompile(`(?i)\b(yes|yeah|ok|ready|sure|yep)`)

// IsAffirmative reports whether a free-text reply confirms readiness.
func IsAffirmative(reply string) bool {
	return affirmative.MatchString(reply)
}

// Action tells the controller which remote call has to follow a transition.
type Action int

const (
	ActionNone Action = iota
	ActionEvaluate
	ActionForceEnd
)

// Event is an input of the state machine.
type Event interface {
	eventName() string
}

type GenerationStarted struct{}

type QuestionsGenerated struct {
	Questions []string
}

type GenerationFailed struct {
	Reason string
}

// UserReplied carries a chat reply: a readiness confirmation or an answer.
type UserReplied struct {
	Text string
}

type AnswerEvaluated struct {
	Evaluation string
	Ended      bool
}

type SummaryReceived struct {
	Summary string
}

// RequestFailed records a failed call during the chat. The phase is kept as is.
type RequestFailed struct {
	Reason string
}

func (GenerationStarted) eventName() string  { return "generation_started" }
func (QuestionsGenerated) eventName() string { return "questions_generated" }
func (GenerationFailed) eventName() string   { return "generation_failed" }
func (UserReplied) eventName() string        { return "user_replied" }
func (AnswerEvaluated) eventName() string    { return "answer_evaluated" }
func (SummaryReceived) eventName() string    { return "summary_received" }
func (RequestFailed) eventName() string      { return "request_failed" }

// Machine is the conversation state of one session. All changes go through Apply.
type Machine struct {
	phase      Phase
	questions  []string
	index      int
	transcript *Transcript

	// summaryPending is set once the last answer was evaluated and a summary is due.
	summaryPending bool
}

func NewMachine() *Machine {
	return &Machine{
		phase:      PhaseInitial,
		transcript: NewTranscript(),
	}
}

func (m *Machine) Phase() Phase { return m.phase }

// Questions returns a copy of the generated questions.
func (m *Machine) Questions() []string {
	out := make([]string, len(m.questions))
	copy(out, m.questions)
	return out
}

// CurrentIndex is meaningful only in PhaseOngoing.
func (m *Machine) CurrentIndex() int { return m.index }

// CurrentQuestion returns the question in play. ok is false outside PhaseOngoing.
func (m *Machine) CurrentQuestion() (string, bool) {
	if m.phase != PhaseOngoing {
		return "", false
	}
	return m.questions[m.index], true
}

func (m *Machine) Transcript() *Transcript { return m.transcript }

// Apply is the only place where the session state changes. An event that is not
// accepted in the current phase returns a *TransitionError and changes nothing.
func (m *Machine) Apply(ev Event) (Action, error) {
	switch e := ev.(type) {
	case GenerationStarted:
		if m.phase != PhaseInitial {
			return ActionNone, m.reject(ev)
		}
		m.phase = PhaseLoading
		return ActionNone, nil

	case QuestionsGenerated:
		if m.phase != PhaseLoading || len(e.Questions) == 0 {
			return ActionNone, m.reject(ev)
		}
		m.questions = append([]string(nil), e.Questions...)
		m.index = 0
		m.bot(readyMessage)
		m.phase = PhaseReady
		return ActionNone, nil

	case GenerationFailed:
		if m.phase != PhaseLoading {
			return ActionNone, m.reject(ev)
		}
		m.bot(e.Reason)
		m.phase = PhaseInitial
		return ActionNone, nil

	case UserReplied:
		switch m.phase {
		case PhaseReady:
			m.user(e.Text)
			if !IsAffirmative(e.Text) {
				m.bot(notReadyMessage)
				return ActionNone, nil
			}
			m.index = 0
			m.bot(firstQuestionIntro + m.questions[0])
			m.phase = PhaseOngoing
			return ActionNone, nil
		case PhaseOngoing:
			m.user(e.Text)
			m.summaryPending = false
			return ActionEvaluate, nil
		default:
			return ActionNone, m.reject(ev)
		}

	case AnswerEvaluated:
		if m.phase != PhaseOngoing || m.summaryPending {
			return ActionNone, m.reject(ev)
		}
		m.bot(e.Evaluation)
		if e.Ended {
			m.phase = PhaseFinished
			return ActionNone, nil
		}
		if m.index+1 < len(m.questions) {
			m.index++
			return ActionNone, nil
		}
		m.summaryPending = true
		return ActionForceEnd, nil

	case SummaryReceived:
		if m.phase != PhaseOngoing || !m.summaryPending {
			return ActionNone, m.reject(ev)
		}
		m.bot(e.Summary)
		m.summaryPending = false
		m.phase = PhaseFinished
		return ActionNone, nil

	case RequestFailed:
		if m.phase != PhaseReady && m.phase != PhaseOngoing {
			return ActionNone, m.reject(ev)
		}
		m.bot(requestFailedIntro + e.Reason)
		return ActionNone, nil

	default:
		return ActionNone, m.reject(ev)
	}
}

func (m *Machine) reject(ev Event) error {
	name := "unknown"
	if ev != nil {
		name = ev.eventName()
	}
	return &TransitionError{Phase: m.phase, Event: name}
}

func (m *Machine) user(content string) {
	m.transcript.Append(Message{Role: RoleUser, Content: content})
}

func (m *Machine) bot(content string) {
	m.transcript.Append(Message{Role: RoleBot, Content: content})
}
